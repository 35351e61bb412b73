package models

import "time"

// ImportRecord logs one upload so its rows can be rolled back later.
type ImportRecord struct {
	ID                string    `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Platform          Platform  `db:"platform" json:"platform"`
	Filename          string    `db:"filename" json:"filename"`
	RowsParsed        int       `db:"rows_parsed" json:"rows_parsed"`
	RowsInserted      int       `db:"rows_inserted" json:"rows_inserted"`
	DuplicatesSkipped int       `db:"duplicates_skipped" json:"duplicates_skipped"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
