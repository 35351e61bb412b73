package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/sellerledger/backend/src/models"
)

// AmazonHeader is the column row of an Amazon date-range payment report.
var AmazonHeader = []string{
	"date/time", "settlement id", "type", "order id", "sku", "description", "quantity",
	"marketplace", "product sales", "selling fees", "fba fees", "other transaction fees", "other", "total",
}

// AmazonRow is one data row of an Amazon report fixture.
type AmazonRow struct {
	Date, Type, OrderID, SKU, Description, Quantity string
	ProductSales, SellingFees, FBAFees, OtherFees, Total string
}

func (r AmazonRow) fields() []string {
	return []string{
		r.Date, "12345678", r.Type, r.OrderID, r.SKU, r.Description, r.Quantity,
		"amazon.in", r.ProductSales, r.SellingFees, r.FBAFees, r.OtherFees, "0", r.Total,
	}
}

// AmazonCSV renders a report with the usual 11-line preamble.
func AmazonCSV(rows ...AmazonRow) []byte {
	return AmazonCSVWithPreamble(11, rows...)
}

func AmazonCSVWithPreamble(preamble int, rows ...AmazonRow) []byte {
	var b strings.Builder
	for i := 0; i < preamble; i++ {
		fmt.Fprintf(&b, "\"Includes Amazon Marketplace, Fulfillment by Amazon (FBA), and Amazon Webstore transactions (line %d)\"\n", i+1)
	}
	b.WriteString(csvLine(AmazonHeader))
	for _, r := range rows {
		b.WriteString(csvLine(r.fields()))
	}
	return []byte(b.String())
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}

// FlipkartOrderHeader is the header row of the "Orders P&L" sheet.
var FlipkartOrderHeader = []interface{}{
	"Order ID", "Order Date", "SKU Name", "Gross Units",
	"Final Selling Price (incl. seller opted in default offers)", "Order Status",
	"Net Earnings (INR)", "Accounted Net Sales (INR)", "Bank Settlement [Projected] (INR)", "Total Expenses (INR)",
}

// FlipkartOrder is one data row of the orders sheet.
type FlipkartOrder struct {
	OrderID, OrderDate, SKU, Units, SellingPrice, Status string
	NetEarnings, AccNetSales, Settlement, Expenses       string
}

func (o FlipkartOrder) cells() []interface{} {
	return []interface{}{
		o.OrderID, o.OrderDate, o.SKU, o.Units, o.SellingPrice, o.Status,
		o.NetEarnings, o.AccNetSales, o.Settlement, o.Expenses,
	}
}

// FlipkartPriceHeader is the header row of the "SKU-level P&L" sheet.
var FlipkartPriceHeader = []interface{}{"SKU ID", "Product Name", "Base Price", "Cost Price"}

// FlipkartWorkbook describes a settlement workbook fixture. An empty
// OrdersSheet name leaves the required sheet out.
type FlipkartWorkbook struct {
	OrdersSheet string
	Banner      []string
	Orders      []FlipkartOrder
	PriceSheet  string
	Prices      [][]interface{}
}

// FlipkartXLSX renders wb as xlsx bytes.
func FlipkartXLSX(t *testing.T, wb FlipkartWorkbook) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := "Summary"
	if err := f.SetSheetName("Sheet1", first); err != nil {
		t.Fatalf("renaming sheet: %v", err)
	}

	if wb.OrdersSheet != "" {
		if _, err := f.NewSheet(wb.OrdersSheet); err != nil {
			t.Fatalf("creating sheet %q: %v", wb.OrdersSheet, err)
		}
		row := 1
		for _, line := range wb.Banner {
			setRow(t, f, wb.OrdersSheet, row, []interface{}{line})
			row++
		}
		setRow(t, f, wb.OrdersSheet, row, FlipkartOrderHeader)
		for _, o := range wb.Orders {
			row++
			setRow(t, f, wb.OrdersSheet, row, o.cells())
		}
	}

	if wb.PriceSheet != "" {
		if _, err := f.NewSheet(wb.PriceSheet); err != nil {
			t.Fatalf("creating sheet %q: %v", wb.PriceSheet, err)
		}
		setRow(t, f, wb.PriceSheet, 1, FlipkartPriceHeader)
		for i, p := range wb.Prices {
			setRow(t, f, wb.PriceSheet, i+2, p)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return buf.Bytes()
}

func setRow(t *testing.T, f *excelize.File, sheet string, row int, cells []interface{}) {
	t.Helper()

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		t.Fatalf("writing row %d of %q: %v", row, sheet, err)
	}
}

// NewTransaction builds a normalized transaction for aggregation tests.
func NewTransaction(platform models.Platform, id, sku, label string, qty int, total float64) models.Transaction {
	stamp := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return models.Transaction{
		TransactionID: id,
		Platform:      platform,
		OrderDate:     "2024-04-01T00:00:00Z",
		SKU:           sku,
		Quantity:      qty,
		Total:         total,
		Type:          label,
		OrderStatus:   label,
		Product:       models.ProductRef{SKU: sku},
		Metadata:      models.Metadata{CreatedAt: stamp, UpdatedAt: stamp},
	}
}

func Float(v float64) *float64 { return &v }

func String(v string) *string { return &v }
