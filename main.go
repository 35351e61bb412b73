package main

import (
	stdlog "log"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/sellerledger/backend/src/config"
	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/handlers"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/processors"
	"github.com/username/sellerledger/backend/src/security"
	"github.com/username/sellerledger/backend/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Seller ledger backend starting...")

	logger.L.Info("Initializing data loaders...")
	defaultPrices, err := processors.LoadDefaultPriceTable(config.Cfg.DefaultPricesPath)
	if err != nil {
		logger.L.Error("Failed to load default cost prices, continuing with an empty table", "error", err)
		defaultPrices = processors.DefaultPriceTable{}
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	db, err := database.InitDB(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.L.Info("Database initialized successfully.")

	transactionStore := database.NewTransactionStore(db)
	importStore := database.NewImportStore(db)
	productStore := database.NewProductStore(db)

	reportCache := services.NewReportCache(config.Cfg.SummaryCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	uploadService := services.NewUploadService(
		parsers.NewFactory(config.Cfg.AmazonPreambleLines),
		processors.NewTransactionProcessor(),
		processors.NewDeduplicator(),
		transactionStore, importStore, productStore,
		reportCache,
	)
	summaryService := services.NewSummaryService(transactionStore, productStore, defaultPrices, reportCache)

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService:    security.NewAuthService(config.Cfg.JWTSecret),
		UploadService:  uploadService,
		SummaryService: summaryService,
		MaxUploadBytes: config.Cfg.MaxUploadSizeBytes,
	})

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)
	finalHandler := handlers.CORSMiddleware(config.Cfg.AllowedOrigins)(handlers.RateLimitMiddleware(limiter)(router))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
