package models

import "time"

// ProductPrice is one row of an uploaded price list (Flipkart "SKU-level" sheet)
// or of the static default price table.
type ProductPrice struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	CostPrice   float64 `json:"cost_price"`
	BasePrice   float64 `json:"base_price"`
}

// Product is a catalogue entry as kept by the product store.
// CustomCostPrice is nil when the seller never set one.
type Product struct {
	SKU             string    `db:"sku" json:"sku"`
	Description     string    `db:"description" json:"description"`
	CategoryID      *string   `db:"category_id" json:"category_id"` // Nullable
	CustomCostPrice *float64  `db:"custom_cost_price" json:"custom_cost_price"`
	BasePrice       float64   `db:"base_price" json:"base_price"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Category groups products and can carry an average cost price applied to
// every member without its own price.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CostPrice *float64  `db:"cost_price" json:"cost_price"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
