package models

import "time"

// Platform identifies the marketplace a report was exported from.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
)

// Expenses holds fee magnitudes. Values are never negative; whether a fee
// reduces profit is decided by classification, not by sign.
type Expenses struct {
	ShippingFee    float64 `json:"shipping_fee"`
	MarketplaceFee float64 `json:"marketplace_fee"`
	OtherFees      float64 `json:"other_fees"`
}

// Total returns the sum of all fee magnitudes.
func (e Expenses) Total() float64 {
	return e.ShippingFee + e.MarketplaceFee + e.OtherFees
}

// ProductRef is the denormalized product carried by a transaction.
// CostPrice is 0 at parse time and only filled in at analysis time.
type ProductRef struct {
	SKU         string  `json:"sku"`
	CostPrice   float64 `json:"cost_price"`
	Description string  `json:"description"`
}

type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is the canonical record every marketplace parser produces.
type Transaction struct {
	// --- Fields populated by the parser ---
	TransactionID string     `json:"transaction_id"`
	Platform      Platform   `json:"platform"`
	OrderDate     string     `json:"order_date"`
	SKU           string     `json:"sku"`
	Description   string     `json:"description"`
	Quantity      int        `json:"quantity"`
	SellingPrice  float64    `json:"selling_price"`
	Total         float64    `json:"total"`
	AccNetSales   float64    `json:"acc_net_sales"` // Flipkart only
	Type          string     `json:"type"`          // e.g. "order", "refund" (Amazon); mirrors OrderStatus for Flipkart
	OrderStatus   string     `json:"order_status"`  // e.g. "delivered", "returned" (Flipkart); mirrors Type for Amazon
	Expenses      Expenses   `json:"expenses"`
	Product       ProductRef `json:"product"`

	// --- Fields filled by the normalizer ---
	Metadata Metadata `json:"metadata"`
	Hash     string   `json:"hash"`
	ImportID string   `json:"import_id,omitempty"`
}

// Label returns the lifecycle label used for hashing and classification.
func (t Transaction) Label() string {
	if t.Type != "" {
		return t.Type
	}
	return t.OrderStatus
}
