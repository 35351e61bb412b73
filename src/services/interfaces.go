package services

import (
	"context"

	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers"
)

// UploadResult describes what one upload did to the user's ledger.
type UploadResult struct {
	ImportID          string          `json:"import_id,omitempty"`
	Platform          models.Platform `json:"platform"`
	RowsParsed        int             `json:"rows_parsed"`
	RowsSkipped       int             `json:"rows_skipped"`
	DuplicatesSkipped int             `json:"duplicates_skipped"`
	RowsInserted      int             `json:"rows_inserted"`
	PriceListRows     int             `json:"price_list_rows"`
	// NoRowsMatched is set when the file was accepted but no row passed the
	// platform's row filter.
	NoRowsMatched bool `json:"no_rows_matched"`
}

// UploadService imports marketplace reports and undoes imports.
type UploadService interface {
	ProcessUpload(ctx context.Context, userID int64, upload *parsers.Upload) (*UploadResult, error)
	RollbackImport(ctx context.Context, userID int64, importID string) (int, error)
	DeleteAllTransactions(ctx context.Context, userID int64) (int, error)
	ListImports(ctx context.Context, userID int64) ([]models.ImportRecord, error)
	GetImport(ctx context.Context, userID int64, importID string) (*models.ImportRecord, error)
}

// SummaryService derives the reconciliation summary and manages the cost
// prices it depends on.
type SummaryService interface {
	GetSummary(ctx context.Context, userID int64) (*models.TransactionSummary, error)
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	SetProductCostPrice(ctx context.Context, userID int64, sku string, price *float64) error
	SetCategoryCostPrice(ctx context.Context, userID int64, categoryID, name string, price *float64) error
	AssignCategory(ctx context.Context, userID int64, sku string, categoryID *string) error
}

// TransactionRepository is the persistence the services need for transactions.
type TransactionRepository interface {
	ExistingHashes(ctx context.Context, userID int64, hashes []string) ([]string, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
	DeleteAll(ctx context.Context, userID int64) (int, error)
}

type ImportRepository interface {
	StoreImport(ctx context.Context, rec models.ImportRecord, txs []models.Transaction) (int, error)
	ListImports(ctx context.Context, userID int64) ([]models.ImportRecord, error)
	GetImport(ctx context.Context, userID int64, importID string) (*models.ImportRecord, error)
	DeleteImport(ctx context.Context, userID int64, importID string) (int, error)
}

type ProductRepository interface {
	GetProducts(ctx context.Context, userID int64) ([]models.Product, error)
	GetCategories(ctx context.Context, userID int64) ([]models.Category, error)
	UpsertPriceList(ctx context.Context, userID int64, prices []models.ProductPrice) (int, error)
	SetProductCostPrice(ctx context.Context, userID int64, sku string, price *float64) error
	SetCategoryCostPrice(ctx context.Context, userID int64, categoryID, name string, price *float64) error
	AssignCategory(ctx context.Context, userID int64, sku string, categoryID *string) error
}
