package models

// ParseResult is what a marketplace parser hands to the rest of the pipeline.
type ParseResult struct {
	Platform     Platform       `json:"platform"`
	Transactions []Transaction  `json:"transactions"`
	PriceList    []ProductPrice `json:"price_list"`
	SkippedRows  int            `json:"skipped_rows"`
}
