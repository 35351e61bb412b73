package flipkart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/utils"
)

const (
	// OrdersSheetName holds the order-level profit-and-loss ledger. Required.
	OrdersSheetName = "Orders P&L"
	// PriceSheetName holds the SKU-level price list. Optional.
	PriceSheetName = "SKU-level P&L"
)

// Order sheet columns.
const (
	colOrderID      = "Order ID"
	colOrderDate    = "Order Date"
	colSKUName      = "SKU Name"
	colGrossUnits   = "Gross Units"
	colSellingPrice = "Final Selling Price (incl. seller opted in default offers)"
	colOrderStatus  = "Order Status"
	colNetEarnings  = "Net Earnings (INR)"
	colAccNetSales  = "Accounted Net Sales (INR)"
	colSettlement   = "Bank Settlement [Projected] (INR)"
	colExpenses     = "Total Expenses (INR)"
)

// Price sheet columns.
const (
	colSKUID       = "SKU ID"
	colProductName = "Product Name"
	colBasePrice   = "Base Price"
	colCostPrice   = "Cost Price"
)

type FlipkartParser struct{}

func NewParser() *FlipkartParser {
	return &FlipkartParser{}
}

func (p *FlipkartParser) Platform() models.Platform { return models.PlatformFlipkart }

// Parse reads a settlement workbook. The orders sheet must exist; the price
// sheet is read when present.
func (p *FlipkartParser) Parse(file io.Reader) (*models.ParseResult, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("flipkart parser: failed to open workbook: %w", err))
	}
	defer wb.Close()

	ordersSheet, ok := findSheet(wb.GetSheetList(), OrdersSheetName)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrRequiredSheetMissing,
			fmt.Sprintf("Required sheet %q not found", OrdersSheetName))
	}

	orderRows, err := wb.GetRows(ordersSheet)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("flipkart parser: failed to read sheet %q: %w", ordersSheet, err))
	}

	result := &models.ParseResult{Platform: models.PlatformFlipkart}
	txs, skipped, err := ParseOrderRows(orderRows)
	if err != nil {
		return nil, err
	}
	result.Transactions = txs
	result.SkippedRows = skipped

	if priceSheet, ok := findSheet(wb.GetSheetList(), PriceSheetName); ok {
		priceRows, err := wb.GetRows(priceSheet)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrUnreadableFile, fmt.Errorf("flipkart parser: failed to read sheet %q: %w", priceSheet, err))
		}
		result.PriceList = ParsePriceRows(priceRows)
	} else {
		logger.L.Debug("Flipkart parser: price sheet not present", "sheet", PriceSheetName)
	}

	return result, nil
}

// ParseOrderRows maps the orders sheet. Rows above the header (report
// banners) are ignored, rows without order id, SKU or status are skipped.
func ParseOrderRows(rows [][]string) ([]models.Transaction, int, error) {
	cols, start, ok := locateHeader(rows, colOrderID)
	if !ok {
		return nil, 0, apperrors.WithMessage(apperrors.ErrUnreadableFile,
			fmt.Sprintf("Sheet %q has no %q header row", OrdersSheetName, colOrderID))
	}

	var txs []models.Transaction
	skipped := 0
	for _, row := range rows[start:] {
		if isBlank(row) {
			continue
		}
		orderID := cols.value(row, colOrderID)
		sku := NormalizeSKU(cols.value(row, colSKUName))
		status := strings.ToLower(cols.value(row, colOrderStatus))
		if orderID == "" || sku == "" || status == "" {
			skipped++
			continue
		}

		txs = append(txs, models.Transaction{
			TransactionID: orderID,
			Platform:      models.PlatformFlipkart,
			OrderDate:     utils.NormalizeReportDate(cols.value(row, colOrderDate)),
			SKU:           sku,
			Quantity:      utils.AbsInt(int(math.Round(utils.ParseCurrency(cols.value(row, colGrossUnits))))),
			SellingPrice:  utils.ParseCurrency(cols.value(row, colSellingPrice)),
			Total:         utils.ParseCurrency(cols.value(row, colNetEarnings)),
			AccNetSales:   accNetSales(cols, row),
			Type:          status,
			OrderStatus:   status,
			Expenses: models.Expenses{
				OtherFees: math.Abs(utils.ParseCurrency(cols.value(row, colExpenses))),
			},
			Product: models.ProductRef{SKU: sku},
		})
	}
	return txs, skipped, nil
}

// accNetSales reads the projected bank settlement, falling back to the
// accounted net sales column on older exports that lack it.
func accNetSales(cols columns, row []string) float64 {
	if v := cols.value(row, colSettlement); v != "" {
		return utils.ParseCurrency(v)
	}
	return utils.ParseCurrency(cols.value(row, colAccNetSales))
}

// ParsePriceRows maps the price sheet; rows without a SKU are dropped.
func ParsePriceRows(rows [][]string) []models.ProductPrice {
	cols, start, ok := locateHeader(rows, colSKUID)
	if !ok {
		return nil
	}
	var prices []models.ProductPrice
	for _, row := range rows[start:] {
		sku := NormalizeSKU(cols.value(row, colSKUID))
		if sku == "" {
			continue
		}
		prices = append(prices, models.ProductPrice{
			SKU:         sku,
			Description: validation.CleanCell(cols.value(row, colProductName)),
			BasePrice:   utils.ParseCurrency(cols.value(row, colBasePrice)),
			CostPrice:   utils.ParseCurrency(cols.value(row, colCostPrice)),
		})
	}
	return prices
}

// NormalizeSKU trims the value and removes the quoting artifacts Flipkart
// wraps around SKUs (`"""SKU:ABC-1"""`).
func NormalizeSKU(raw string) string {
	s := validation.CleanCell(raw)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "SKU:") {
		s = strings.TrimSpace(s[4:])
	}
	return strings.Trim(s, `"'`)
}

type columns map[string]int

// value returns the trimmed cell under header, tolerating short rows.
func (c columns) value(row []string, header string) string {
	idx, ok := c[header]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// locateHeader finds the first row containing marker and indexes its cells.
// Headers are matched exactly and, for long headers like the selling price
// one, by the part before the first parenthesis.
func locateHeader(rows [][]string, marker string) (columns, int, bool) {
	for i, row := range rows {
		found := false
		for _, cell := range row {
			if strings.TrimSpace(cell) == marker {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		cols := make(columns, len(row))
		for j, cell := range row {
			name := strings.TrimSpace(cell)
			if name == "" {
				continue
			}
			if _, dup := cols[name]; !dup {
				cols[name] = j
			}
		}
		aliasByPrefix(cols, colSellingPrice)
		return cols, i + 1, true
	}
	return nil, 0, false
}

func aliasByPrefix(cols columns, header string) {
	if _, ok := cols[header]; ok {
		return
	}
	prefix := header
	if i := strings.Index(header, "("); i > 0 {
		prefix = strings.TrimSpace(header[:i])
	}
	for name, idx := range cols {
		if strings.HasPrefix(name, prefix) {
			cols[header] = idx
			return
		}
	}
}

func findSheet(sheets []string, want string) (string, bool) {
	for _, s := range sheets {
		if s == want {
			return s, true
		}
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return s, true
		}
	}
	return "", false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
