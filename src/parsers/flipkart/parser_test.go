package flipkart_test

import (
	"bytes"
	"testing"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/parsers/flipkart"
	"github.com/username/sellerledger/backend/src/testutil"
)

func TestParse(t *testing.T) {
	t.Run("maps_orders_and_price_list", func(t *testing.T) {
		content := testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{
			OrdersSheet: flipkart.OrdersSheetName,
			Banner:      []string{"Settlement report for April 2024"},
			Orders: []testutil.FlipkartOrder{
				{
					OrderID: "OD1", OrderDate: "2024-04-03", SKU: `"""SKU:TEE-RED"""`, Units: "2",
					SellingPrice: "₹1,198.00", Status: "Delivered", NetEarnings: "₹900.00",
					AccNetSales: "₹1,000.00", Settlement: "₹950.00", Expenses: "-₹248.00",
				},
				{OrderID: "OD2", SKU: "TEE-BLUE", Units: "1", Status: "Returned", NetEarnings: "-₹80.00", Expenses: "-₹80.00"},
				{OrderID: "", SKU: "TEE-BLUE", Units: "1", Status: "Delivered"},
				{OrderID: "OD4", SKU: "TEE-BLUE", Units: "1", Status: ""},
			},
			PriceSheet: flipkart.PriceSheetName,
			Prices: [][]interface{}{
				{"SKU:TEE-RED", "Red tee", "₹599.00", "₹250.00"},
				{"", "no sku", "1", "1"},
				{"TEE-BLUE", "Blue tee", "₹599.00", ""},
			},
		})

		result, err := flipkart.NewParser().Parse(bytes.NewReader(content))
		testutil.AssertNoError(t, err)

		if len(result.Transactions) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(result.Transactions))
		}
		if result.SkippedRows != 2 {
			t.Errorf("expected 2 skipped rows, got %d", result.SkippedRows)
		}

		sale := result.Transactions[0]
		if sale.SKU != "TEE-RED" {
			t.Errorf("expected normalized SKU TEE-RED, got %q", sale.SKU)
		}
		if sale.OrderStatus != "delivered" || sale.Type != "delivered" {
			t.Errorf("expected lower-cased status, got %q/%q", sale.OrderStatus, sale.Type)
		}
		if sale.Quantity != 2 {
			t.Errorf("expected 2 units, got %d", sale.Quantity)
		}
		testutil.AssertMoney(t, "sellingPrice", sale.SellingPrice, 1198)
		testutil.AssertMoney(t, "total", sale.Total, 900)
		testutil.AssertMoney(t, "accNetSales", sale.AccNetSales, 950)
		testutil.AssertMoney(t, "otherFees", sale.Expenses.OtherFees, 248)

		returned := result.Transactions[1]
		testutil.AssertMoney(t, "accNetSales fallback", returned.AccNetSales, 0)
		testutil.AssertMoney(t, "returned total", returned.Total, -80)

		if len(result.PriceList) != 2 {
			t.Fatalf("expected 2 price rows, got %d", len(result.PriceList))
		}
		if p := result.PriceList[0]; p.SKU != "TEE-RED" || p.CostPrice != 250 || p.BasePrice != 599 || p.Description != "Red tee" {
			t.Errorf("unexpected price row %+v", p)
		}
		if p := result.PriceList[1]; p.CostPrice != 0 {
			t.Errorf("expected empty cost price to parse as 0, got %v", p.CostPrice)
		}
	})

	t.Run("price_sheet_is_optional", func(t *testing.T) {
		content := testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{
			OrdersSheet: flipkart.OrdersSheetName,
			Orders:      []testutil.FlipkartOrder{{OrderID: "OD1", SKU: "A", Units: "1", Status: "Shipped", NetEarnings: "10"}},
		})

		result, err := flipkart.NewParser().Parse(bytes.NewReader(content))
		testutil.AssertNoError(t, err)
		if len(result.Transactions) != 1 {
			t.Errorf("expected 1 transaction, got %d", len(result.Transactions))
		}
		if len(result.PriceList) != 0 {
			t.Errorf("expected empty price list, got %d rows", len(result.PriceList))
		}
	})

	t.Run("missing_required_sheet", func(t *testing.T) {
		content := testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{
			PriceSheet: flipkart.PriceSheetName,
			Prices:     [][]interface{}{{"A", "a", "1", "1"}},
		})

		result, err := flipkart.NewParser().Parse(bytes.NewReader(content))
		testutil.AssertAppError(t, err, apperrors.ErrRequiredSheetMissing)
		if result != nil {
			t.Errorf("expected no partial result, got %+v", result)
		}
	})

	t.Run("sheet_name_match_ignores_case", func(t *testing.T) {
		content := testutil.FlipkartXLSX(t, testutil.FlipkartWorkbook{
			OrdersSheet: "orders p&l",
			Orders:      []testutil.FlipkartOrder{{OrderID: "OD1", SKU: "A", Units: "1", Status: "Delivered"}},
		})

		result, err := flipkart.NewParser().Parse(bytes.NewReader(content))
		testutil.AssertNoError(t, err)
		if len(result.Transactions) != 1 {
			t.Errorf("expected 1 transaction, got %d", len(result.Transactions))
		}
	})

	t.Run("not_a_workbook", func(t *testing.T) {
		_, err := flipkart.NewParser().Parse(bytes.NewReader([]byte("PK\x03\x04garbage")))
		testutil.AssertAppError(t, err, apperrors.ErrUnreadableFile)
	})
}

func TestNormalizeSKU(t *testing.T) {
	tests := map[string]string{
		`"""SKU:ABC-1"""`: "ABC-1",
		"  sku: ABC-2 ":   "ABC-2",
		"'ABC-3'":         "ABC-3",
		"ABC-4":           "ABC-4",
		"":                "",
	}
	for raw, want := range tests {
		if got := flipkart.NormalizeSKU(raw); got != want {
			t.Errorf("NormalizeSKU(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseOrderRowsWithoutHeader(t *testing.T) {
	_, _, err := flipkart.ParseOrderRows([][]string{{"nothing", "here"}})
	testutil.AssertAppError(t, err, apperrors.ErrUnreadableFile)
}
