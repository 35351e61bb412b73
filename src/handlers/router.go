package handlers

import (
	"net/http"
	"strings"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/security"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type RouterConfig struct {
	AuthService    *security.AuthService
	UploadService  services.UploadService
	SummaryService services.SummaryService
	MaxUploadBytes int64
}

// NewRouter registers every API route behind AuthMiddleware. Global
// middleware (CORS, rate limiting) is applied by the caller.
func NewRouter(cfg RouterConfig) http.Handler {
	uploadHandler := NewUploadHandler(cfg.UploadService, cfg.MaxUploadBytes)
	summaryHandler := NewSummaryHandler(cfg.SummaryService)
	txHandler := NewTransactionHandler(cfg.SummaryService, cfg.UploadService)
	importHandler := NewImportHandler(cfg.UploadService)
	priceHandler := NewPriceHandler(cfg.SummaryService)

	auth := AuthMiddleware(cfg.AuthService)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	apiRouter := http.NewServeMux()
	apiRouter.Handle("POST /api/upload", protect(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/summary", protect(summaryHandler.HandleGetSummary))
	apiRouter.Handle("GET /api/transactions", protect(txHandler.HandleGetTransactions))
	apiRouter.Handle("DELETE /api/transactions/all", protect(txHandler.HandleDeleteAllTransactions))
	apiRouter.Handle("GET /api/imports", protect(importHandler.HandleListImports))
	apiRouter.Handle("GET /api/imports/{id}", protect(importHandler.HandleGetImport))
	apiRouter.Handle("DELETE /api/imports/{id}", protect(importHandler.HandleRollbackImport))
	apiRouter.Handle("PUT /api/products/{sku}/cost-price", protect(priceHandler.HandleSetProductCostPrice))
	apiRouter.Handle("PUT /api/categories/{id}/cost-price", protect(priceHandler.HandleSetCategoryCostPrice))
	apiRouter.Handle("PUT /api/products/{sku}/category", protect(priceHandler.HandleAssignCategory))

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", apiRouter)
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			utils.SendJSON(w, map[string]string{"message": "Seller ledger backend is running"}, http.StatusOK)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
		}
		http.NotFound(w, r)
	})
	return rootMux
}
