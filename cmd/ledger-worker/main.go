package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/4rinababan/chatfinance/internal/amqp"
	"github.com/4rinababan/chatfinance/internal/backend"
	"github.com/4rinababan/chatfinance/internal/config"
	"github.com/4rinababan/chatfinance/internal/ledger/sheets"
	applog "github.com/4rinababan/chatfinance/internal/log"
	"github.com/4rinababan/chatfinance/internal/storage"
	"github.com/4rinababan/chatfinance/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	logger.Info("Starting ledger-worker", applog.FieldOperation, applog.OpStartup)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err)
		os.Exit(1)
	}
	if !cfg.SheetsConfigured() {
		logger.Error("Google Sheets is not configured; nothing to mirror to",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.OpenWithRetry(ctx, cfg.SQLiteDBPath, storage.RetryPolicy{
		Attempts: cfg.MigrationAttempts,
		Backoff:  cfg.MigrationBackoff,
	})
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			applog.FieldError, err,
			"path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	target, err := sheets.New(ctx, backendCfg.SheetsConfig())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(repo, target, cfg.SyncBatchSize,
		logger.WithComponent(applog.ComponentWorker).Slog())

	logger.Info("Performing startup sync check...")
	if err := mirror.StartupSyncCheck(ctx); err != nil {
		// Don't exit - the periodic pass retries
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			return client.ConsumeTransactionRecorded(gctx, mirror.HandleRecorded)
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic sync only")
	}

	g.Go(func() error {
		return mirror.RunPending(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
