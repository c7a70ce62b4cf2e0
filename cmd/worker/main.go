package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alloia/internal/alloia"
	"alloia/internal/catalog"
	"alloia/internal/config"
	"alloia/internal/database"
	"alloia/internal/export"
	"alloia/internal/kvstore"
	"alloia/internal/logger"
	"alloia/internal/queue"
	"alloia/internal/robots"
	"alloia/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Shared infrastructure
	kv := kvstore.NewGorm(db.DB)
	store := catalog.NewGormStore(db.DB)
	meta := catalog.NewGormMetaStore(db.DB)
	client := alloia.NewClient(cfg.AlloiaBaseURL, cfg.AlloiaAPIKey, cfg.SiteURL, logger)
	scheduler := queue.NewKafkaScheduler(cfg.KafkaBrokers, logger)

	// Pipeline
	ledger := export.NewLedger(kv, client, cfg.ExportBatchSize, logger)
	extractor := export.NewExtractor(store, logger)
	transformer := export.NewTransformer(cfg.SiteURL, cfg.Currency, cfg.WeightUnit, cfg.DimensionUnit)
	submitter := export.NewSubmitter(client, meta, ledger, logger)
	runs := export.NewRunStore(kv)
	exporter := export.NewExporter(client, extractor, transformer, submitter, runs, scheduler, logger)

	// Initialize worker
	processor := worker.NewProcessor(exporter, client, store, logger)
	w := worker.New(cfg, logger, processor)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Refresh the robots audit and AI-ready score every hour.
	auditor := robots.NewAuditor(cfg.SiteURL, cfg.AISubdomain, kv, logger)
	auditTicker := time.NewTicker(time.Hour)
	go func() {
		for range auditTicker.C {
			if _, _, err := auditor.Refresh(context.Background()); err != nil {
				logger.Error("Hourly audit failed: %v", err)
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	auditTicker.Stop()
	w.Stop()
}
