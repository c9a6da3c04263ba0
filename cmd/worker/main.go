package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/data/mongo"
	"github.com/resale-ops/internal/data/postgres"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/logger"
	"github.com/resale-ops/internal/platform/lock"
	"github.com/resale-ops/internal/platform/messaging/consumers"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/platform/persistence"
	"github.com/resale-ops/internal/platform/storage"
	"github.com/resale-ops/internal/worker"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	supplierRepo := postgres.NewSupplierRepository(log, postgresDB)
	supplierItemRepo := postgres.NewSupplierItemRepository(log, postgresDB)
	jobRepo := postgres.NewJobRepository(log, postgresDB)
	activityRepo := postgres.NewActivityRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	feedRepo := mongo.NewActivityFeedRepository(log, mongoDB.Database())

	deps := worker.Deps{
		Runner: importer.NewPipeline(supplierRepo, supplierItemRepo, jobRepo,
			audit.NewRecorder(activityRepo, outboxRepo, log), postgresDB, locker,
			importer.Config{
				LockTTL:             cfg.Redis.LockTTL,
				DefaultExchangeRate: cfg.Import.DefaultExchangeRate,
			}, log),
		Jobs:   jobRepo,
		Outbox: outboxRepo,
		Feed:   feedRepo,
	}

	// Without a bucket the API never queues imports, so only the outbox relay runs.
	var dlqProducer *producers.DLQProducer
	var store storage.ObjectStore
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSStore(appCtx, log, &cfg.Storage)
		if err != nil {
			log.Error("Failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		store = gcs
		deps.Store = gcs

		dlqProducer, err = producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize DLQ Kafka producer", "error", err)
			os.Exit(1)
		}
		if dlqProducer != nil {
			deps.DLQ = dlqProducer
		}
		deps.Consumer = consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	} else {
		log.Warn("No storage bucket configured, import consumer is disabled")
	}

	w, err := worker.New(log, cfg, deps)
	if err != nil {
		log.Error("Failed to initialize worker", "error", err)
		os.Exit(1)
	}

	errChan := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(appCtx); err != nil {
			errChan <- err
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	var shutdownErr error
	if err := w.Shutdown(); err != nil {
		log.Error("Error stopping worker", "error", err)
		shutdownErr = err
	}

	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
			shutdownErr = err
		}
	}

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Error closing object storage", "error", err)
			shutdownErr = err
		}
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

	if serviceErr != nil {
		log.Error("Worker shutdown with errors", "error", serviceErr)
	}
	if shutdownErr != nil {
		log.Error("Worker shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Worker shutdown completed successfully")
}
