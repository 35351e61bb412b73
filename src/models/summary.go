package models

// CostPriceSource names the tier of the resolution hierarchy that supplied a price.
type CostPriceSource string

const (
	CostSourceProduct  CostPriceSource = "product"
	CostSourceCategory CostPriceSource = "category"
	CostSourceDefault  CostPriceSource = "default"
)

// ProductSales is the per-SKU slice of a TransactionSummary.
type ProductSales struct {
	Units           int             `json:"units"`
	Amount          float64         `json:"amount"`
	Profit          float64         `json:"profit"`
	ProfitPerUnit   float64         `json:"profit_per_unit"`
	CostPrice       float64         `json:"cost_price"`
	CostPriceSource CostPriceSource `json:"cost_price_source"`
}

// CostPriceSources counts how many SKUs were priced by each tier.
type CostPriceSources struct {
	Product  int `json:"product"`
	Category int `json:"category"`
	Default  int `json:"default"`
}

// TransactionSummary is derived on every analysis run and never persisted.
type TransactionSummary struct {
	TotalSales         float64                 `json:"total_sales"`
	TotalExpenses      float64                 `json:"total_expenses"`
	TotalUnits         int                     `json:"total_units"`
	TotalCost          float64                 `json:"total_cost"`
	ProfitBeforeCost   float64                 `json:"profit_before_cost"`
	TotalProfit        float64                 `json:"total_profit"`
	ExpensesByCategory map[string]float64      `json:"expenses_by_category"`
	SalesByProduct     map[string]ProductSales `json:"sales_by_product"`
	CostPriceSources   CostPriceSources        `json:"cost_price_sources"`
	TransactionCount   int                     `json:"transaction_count"`
}
