package processors

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/username/sellerledger/backend/src/models"
)

// AggregationChunkSize is how many transactions are folded between
// cancellation checks.
const AggregationChunkSize = 1000

type skuTotals struct {
	units  int
	amount decimal.Decimal
}

// Aggregate folds classified transactions into a summary. Money is summed as
// decimals and rounded to two places on output. The fold stops with ctx's
// error if the context ends mid-way.
func Aggregate(ctx context.Context, txs []models.Transaction, lookup CostPriceLookup) (*models.TransactionSummary, error) {
	var (
		totalSales    = decimal.Zero
		totalExpenses = decimal.Zero
		totalUnits    int
		byCategory    = map[string]decimal.Decimal{}
		bySKU         = map[string]*skuTotals{}
		skuOrder      []string
	)

	for i, tx := range txs {
		if i%AggregationChunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		switch Classify(tx) {
		case ClassSale:
			totalSales = totalSales.Add(decimal.NewFromFloat(SaleRevenue(tx)))
			totalExpenses = totalExpenses.Add(decimal.NewFromFloat(SaleFees(tx)))

			acc, ok := bySKU[tx.SKU]
			if !ok {
				acc = &skuTotals{amount: decimal.Zero}
				bySKU[tx.SKU] = acc
				skuOrder = append(skuOrder, tx.SKU)
			}
			acc.units += tx.Quantity
			acc.amount = acc.amount.Add(decimal.NewFromFloat(tx.Total))
			totalUnits += tx.Quantity

		case ClassExpense:
			magnitude := decimal.NewFromFloat(ExpenseMagnitude(tx))
			totalExpenses = totalExpenses.Add(magnitude)
			category := ExpenseCategory(tx)
			byCategory[category] = byCategory[category].Add(magnitude)
		}
	}

	resolved, sources := ResolveAll(lookup, skuOrder)

	totalCost := decimal.Zero
	salesByProduct := make(map[string]models.ProductSales, len(bySKU))
	for _, sku := range skuOrder {
		acc := bySKU[sku]
		res := resolved[sku]
		cost := decimal.NewFromFloat(res.CostPrice).Mul(decimal.NewFromInt(int64(acc.units)))
		totalCost = totalCost.Add(cost)
		profit := acc.amount.Sub(cost)

		perUnit := decimal.Zero
		if acc.units != 0 {
			perUnit = profit.Div(decimal.NewFromInt(int64(acc.units)))
		}

		salesByProduct[sku] = models.ProductSales{
			Units:           acc.units,
			Amount:          money(acc.amount),
			Profit:          money(profit),
			ProfitPerUnit:   money(perUnit),
			CostPrice:       res.CostPrice,
			CostPriceSource: res.Source,
		}
	}

	expensesByCategory := make(map[string]float64, len(byCategory))
	for category, amount := range byCategory {
		expensesByCategory[category] = money(amount)
	}

	profitBeforeCost := totalSales.Sub(totalExpenses)
	return &models.TransactionSummary{
		TotalSales:         money(totalSales),
		TotalExpenses:      money(totalExpenses),
		TotalUnits:         totalUnits,
		TotalCost:          money(totalCost),
		ProfitBeforeCost:   money(profitBeforeCost),
		TotalProfit:        money(profitBeforeCost.Sub(totalCost)),
		ExpensesByCategory: expensesByCategory,
		SalesByProduct:     salesByProduct,
		CostPriceSources:   sources,
		TransactionCount:   len(txs),
	}, nil
}

// SaleRevenue is what a sale adds to total sales: the net total, or for
// Flipkart the projected settlement when the export carries one.
func SaleRevenue(tx models.Transaction) float64 {
	if tx.Platform == models.PlatformFlipkart && tx.AccNetSales != 0 {
		return tx.AccNetSales
	}
	return tx.Total
}

// SaleFees are the platform fees charged on a sale.
func SaleFees(tx models.Transaction) float64 {
	switch tx.Platform {
	case models.PlatformAmazon:
		return tx.Expenses.MarketplaceFee + tx.Expenses.OtherFees
	case models.PlatformFlipkart:
		return tx.Expenses.OtherFees
	default:
		return 0
	}
}

// ExpenseMagnitude is the amount an expense transaction costs: |total|, or
// the sum of its fees when the row carries no total.
func ExpenseMagnitude(tx models.Transaction) float64 {
	if tx.Total != 0 {
		return math.Abs(tx.Total)
	}
	return tx.Expenses.Total()
}

// WithCostPrices returns copies of txs with Product.CostPrice filled from
// lookup. Stored rows are not touched.
func WithCostPrices(txs []models.Transaction, lookup CostPriceLookup) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	cache := make(map[string]float64)
	for i, tx := range txs {
		price, ok := cache[tx.SKU]
		if !ok {
			price = lookup.Resolve(tx.SKU).CostPrice
			cache[tx.SKU] = price
		}
		tx.Product.CostPrice = price
		out[i] = tx
	}
	return out
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
