package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/resale-ops/internal/api"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/data/mongo"
	"github.com/resale-ops/internal/data/postgres"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/logger"
	"github.com/resale-ops/internal/platform/ai"
	"github.com/resale-ops/internal/platform/lock"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/platform/persistence"
	"github.com/resale-ops/internal/platform/storage"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	locker, closeLocker, err := lock.NewLockerFromConfig(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Async imports need a bucket the worker can read uploads back from.
	var store storage.ObjectStore = storage.NewMemoryStore()
	var importProducer producers.MessagePublisher
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSStore(appCtx, log, &cfg.Storage)
		if err != nil {
			log.Error("Failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		store = gcs

		kafkaProducer, err := producers.NewImportRequestProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize import Kafka producer", "error", err)
			os.Exit(1)
		}
		importProducer = kafkaProducer
	} else {
		log.Warn("No storage bucket configured, asynchronous imports are disabled")
	}

	// Initialize repositories
	productRepo := postgres.NewProductRepository(log, postgresDB)
	buyingListRepo := postgres.NewBuyingListRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	supplierRepo := postgres.NewSupplierRepository(log, postgresDB)
	supplierItemRepo := postgres.NewSupplierItemRepository(log, postgresDB)
	sourcingRepo := postgres.NewSourcingRepository(log, postgresDB)
	jobRepo := postgres.NewJobRepository(log, postgresDB)
	activityRepo := postgres.NewActivityRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	feedRepo := mongo.NewActivityFeedRepository(log, mongoDB.Database())
	pricingRepo := mongo.NewPricingRepository(log, mongoDB.Database())

	recorder := audit.NewRecorder(activityRepo, outboxRepo, log)
	aiRouter := ai.NewRouterFromConfig(&cfg.AI, log)
	tracker := middleware.NewErrorTracker()

	pipeline := importer.NewPipeline(supplierRepo, supplierItemRepo, jobRepo, recorder, postgresDB, locker,
		importer.Config{
			LockTTL:             cfg.Redis.LockTTL,
			DefaultExchangeRate: cfg.Import.DefaultExchangeRate,
		}, log)

	// Initialize services
	services := api.Services{
		Products:   service.NewProductService(log, cfg.Inventory, productRepo, transactionRepo, recorder, postgresDB),
		BuyingList: service.NewBuyingListService(log, cfg.Inventory, buyingListRepo, productRepo, transactionRepo, recorder, postgresDB),
		Suppliers:  service.NewSupplierService(log, cfg, supplierRepo, supplierItemRepo, jobRepo, pipeline, store, importProducer),
		Sourcing:   service.NewSourcingService(log, cfg.Inventory.DefaultOrganisationID, sourcingRepo, recorder, postgresDB),
		Jobs:       service.NewJobService(log, cfg.Inventory.DefaultOrganisationID, cfg.Jobs.MaxRetries, jobRepo, recorder, postgresDB, importProducer),
		Dashboard: service.NewDashboardService(log, cfg.Inventory, service.DashboardDeps{
			Products:     productRepo,
			BuyingList:   buyingListRepo,
			Transactions: transactionRepo,
			Sourcing:     sourcingRepo,
			Jobs:         jobRepo,
			Outbox:       outboxRepo,
			Activity:     activityRepo,
			Feed:         feedRepo,
			Postgres:     postgresDB,
			Mongo:        mongoDB,
			AI:           aiRouter,
			Errors:       tracker,
		}),
		Pricing: service.NewPricingService(log, cfg.Inventory.DefaultOrganisationID, aiRouter, pricingRepo),
		Health:  postgresDB,
	}

	server := api.NewServer(log, cfg, services, tracker)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before closing what they depend on
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if importProducer != nil {
		if err := importProducer.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
			shutdownErr = err
		}
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing object storage", "error", err)
		shutdownErr = err
	}

	if err := closeLocker(); err != nil {
		log.Error("Error closing Redis client", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
