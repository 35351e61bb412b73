package services

import (
	"context"
	"time"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/processors"
)

type summaryServiceImpl struct {
	transactions TransactionRepository
	products     ProductRepository
	defaults     processors.DefaultPriceTable
	reportCache  *ReportCache
}

func NewSummaryService(
	transactions TransactionRepository,
	products ProductRepository,
	defaults processors.DefaultPriceTable,
	reportCache *ReportCache,
) SummaryService {
	return &summaryServiceImpl{
		transactions: transactions,
		products:     products,
		defaults:     defaults,
		reportCache:  reportCache,
	}
}

func (s *summaryServiceImpl) GetSummary(ctx context.Context, userID int64) (*models.TransactionSummary, error) {
	if cached, found := s.reportCache.Summary(userID); found {
		logger.L.Debug("Cache hit for GetSummary", "userID", userID)
		return cached, nil
	}
	logger.L.Info("Cache miss for GetSummary, computing...", "userID", userID)
	startTime := time.Now()
	gen := s.reportCache.Generation(userID)

	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := processors.Aggregate(ctx, txs, resolver)
	if err != nil {
		return nil, err
	}

	if !s.reportCache.SetSummary(userID, gen, summary) {
		logger.L.Debug("Summary not cached, data changed while computing", "userID", userID)
	}
	logger.L.Info("Summary computed", "userID", userID, "transactions", len(txs), "duration", time.Since(startTime))
	return summary, nil
}

// ListTransactions returns the stored transactions with their effective cost
// price filled in.
func (s *summaryServiceImpl) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver(ctx, userID)
	if err != nil {
		return nil, err
	}
	return processors.WithCostPrices(txs, resolver), nil
}

func (s *summaryServiceImpl) SetProductCostPrice(ctx context.Context, userID int64, sku string, price *float64) error {
	if err := s.products.SetProductCostPrice(ctx, userID, sku, price); err != nil {
		return err
	}
	s.reportCache.InvalidateUser(userID)
	return nil
}

func (s *summaryServiceImpl) SetCategoryCostPrice(ctx context.Context, userID int64, categoryID, name string, price *float64) error {
	if err := s.products.SetCategoryCostPrice(ctx, userID, categoryID, name, price); err != nil {
		return err
	}
	s.reportCache.InvalidateUser(userID)
	return nil
}

func (s *summaryServiceImpl) AssignCategory(ctx context.Context, userID int64, sku string, categoryID *string) error {
	if err := s.products.AssignCategory(ctx, userID, sku, categoryID); err != nil {
		return err
	}
	s.reportCache.InvalidateUser(userID)
	return nil
}

// resolver snapshots the user's catalogue for one analysis run.
func (s *summaryServiceImpl) resolver(ctx context.Context, userID int64) (*processors.CostPriceResolver, error) {
	products, err := s.products.GetProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.products.GetCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return processors.NewCostPriceResolver(products, categories, s.defaults), nil
}
