package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/processors"
)

type uploadServiceImpl struct {
	factory              *parsers.Factory
	transactionProcessor *processors.TransactionProcessor
	deduplicator         *processors.Deduplicator
	transactions         TransactionRepository
	imports              ImportRepository
	products             ProductRepository
	reportCache          *ReportCache
	now                  func() time.Time
}

func NewUploadService(
	factory *parsers.Factory,
	transactionProcessor *processors.TransactionProcessor,
	deduplicator *processors.Deduplicator,
	transactions TransactionRepository,
	imports ImportRepository,
	products ProductRepository,
	reportCache *ReportCache,
) UploadService {
	return &uploadServiceImpl{
		factory:              factory,
		transactionProcessor: transactionProcessor,
		deduplicator:         deduplicator,
		transactions:         transactions,
		imports:              imports,
		products:             products,
		reportCache:          reportCache,
		now:                  time.Now,
	}
}

// ProcessUpload detects the report format, parses it and stores the rows not
// seen before. A rejected file comes back as an *apperrors.AppError; storage
// failures are returned as they are.
func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, userID int64, upload *parsers.Upload) (*UploadResult, error) {
	startTime := time.Now()

	selection, err := s.factory.Select(upload)
	if err != nil {
		return nil, err
	}
	log := logger.L.With("userID", userID, "platform", selection.Platform, "filename", upload.Filename)
	log.Info("ProcessUpload START", "bytes", len(upload.Content))

	parsed, err := selection.Parse(upload)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.Wrap(apperrors.ErrUnreadableFile, err)
		}
		log.Warn("Report rejected", "error", err)
		return nil, err
	}

	result := &UploadResult{
		Platform:      selection.Platform,
		RowsParsed:    len(parsed.Transactions),
		RowsSkipped:   parsed.SkippedRows,
		NoRowsMatched: len(parsed.Transactions) == 0,
	}

	importID := uuid.NewString()
	normalized := s.transactionProcessor.Process(parsed.Transactions, importID)

	lookup := processors.HashLookupFunc(func(ctx context.Context, hashes []string) ([]string, error) {
		return s.transactions.ExistingHashes(ctx, userID, hashes)
	})
	fresh, duplicates, err := s.deduplicator.FilterNew(ctx, normalized, lookup)
	if err != nil {
		return nil, err
	}

	rec := models.ImportRecord{
		ID:                importID,
		UserID:            userID,
		Platform:          selection.Platform,
		Filename:          upload.Filename,
		RowsParsed:        result.RowsParsed,
		DuplicatesSkipped: duplicates,
		CreatedAt:         s.now().UTC(),
	}
	inserted, err := s.imports.StoreImport(ctx, rec, fresh)
	if err != nil {
		return nil, err
	}
	// Rows a concurrent import stored first are duplicates too.
	result.DuplicatesSkipped = duplicates + len(fresh) - inserted
	result.RowsInserted = inserted
	if inserted > 0 {
		result.ImportID = importID
	}

	if len(parsed.PriceList) > 0 {
		n, err := s.products.UpsertPriceList(ctx, userID, parsed.PriceList)
		if err != nil {
			return nil, err
		}
		result.PriceListRows = n
	}

	if result.RowsInserted > 0 || result.PriceListRows > 0 {
		s.reportCache.InvalidateUser(userID)
	}

	log.Info("ProcessUpload END",
		"rowsParsed", result.RowsParsed,
		"rowsSkipped", result.RowsSkipped,
		"duplicates", result.DuplicatesSkipped,
		"inserted", result.RowsInserted,
		"priceListRows", result.PriceListRows,
		"duration", time.Since(startTime))
	return result, nil
}

// RollbackImport removes the rows inserted by one import.
func (s *uploadServiceImpl) RollbackImport(ctx context.Context, userID int64, importID string) (int, error) {
	if importID == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "import id is required")
	}
	removed, err := s.imports.DeleteImport(ctx, userID, importID)
	if err != nil {
		return 0, err
	}
	s.reportCache.InvalidateUser(userID)
	logger.L.Info("Import rolled back", "userID", userID, "importID", importID, "rowsRemoved", removed)
	return removed, nil
}

func (s *uploadServiceImpl) DeleteAllTransactions(ctx context.Context, userID int64) (int, error) {
	removed, err := s.transactions.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.reportCache.InvalidateUser(userID)
	logger.L.Info("All transactions deleted", "userID", userID, "rowsRemoved", removed)
	return removed, nil
}

func (s *uploadServiceImpl) ListImports(ctx context.Context, userID int64) ([]models.ImportRecord, error) {
	return s.imports.ListImports(ctx, userID)
}

func (s *uploadServiceImpl) GetImport(ctx context.Context, userID int64, importID string) (*models.ImportRecord, error) {
	if importID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "import id is required")
	}
	return s.imports.GetImport(ctx, userID, importID)
}
