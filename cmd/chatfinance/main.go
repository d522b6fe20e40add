package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sony/gobreaker"

	"github.com/4rinababan/chatfinance/internal/backend"
	"github.com/4rinababan/chatfinance/internal/cache"
	"github.com/4rinababan/chatfinance/internal/classifier"
	"github.com/4rinababan/chatfinance/internal/config"
	"github.com/4rinababan/chatfinance/internal/fallback"
	apphttp "github.com/4rinababan/chatfinance/internal/http"
	"github.com/4rinababan/chatfinance/internal/ledger"
	applog "github.com/4rinababan/chatfinance/internal/log"
	"github.com/4rinababan/chatfinance/internal/metrics"
	"github.com/4rinababan/chatfinance/internal/router"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			"backend", cfg.DataBackend,
			applog.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPrometheusCollector("chatfinance")
	if err := collector.Register(registry); err != nil {
		logger.Error("Failed to register metrics", applog.FieldError, err)
		os.Exit(1)
	}

	model, err := classifier.NewDefault()
	if err != nil {
		logger.Error("Failed to train intent classifier", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Intent classifier ready", "labels", model.Labels())

	var predictor router.Classifier = model
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog())
	if cfg.ClassifierCacheSize > 0 {
		cached := classifier.NewCached(model, cfg.ClassifierCacheSize, cfg.ClassifierCacheTTL)
		cacheManager.Register(cached.Cache())
		cacheManager.StartCleanup(time.Minute)
		defer cacheManager.Stop()
		if err := collector.RegisterCache(registry, "classifier", cached.Cache().Stats); err != nil {
			logger.Error("Failed to register cache metrics", applog.FieldError, err)
			os.Exit(1)
		}
		predictor = cached
	}

	generator := newGenerator(ctx, cfg, logger)
	guarded := fallback.NewGuarded(generator,
		fallback.Settings{Timeout: cfg.FallbackTimeout},
		logger.WithComponent(applog.ComponentFallback).Slog(),
		func(_, to gobreaker.State) {
			collector.RecordCircuitState("fallback", circuitState(to))
		})

	chat := router.New(predictor, result.Store, guarded, router.Config{
		Threshold: cfg.ConfidenceThreshold,
		Currency:  cfg.CurrencySymbol,
		Logger:    logger.WithComponent(applog.ComponentRouter).Slog(),
		Metrics:   collector,
	})

	opts := apphttp.Options{
		Logger:             logger,
		Gatherer:           registry,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if pinger, ok := result.Store.(ledger.Pinger); ok {
		opts.Pinger = pinger
	}
	srv := apphttp.NewServer(":"+cfg.Port, chat, opts)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting chatfinance server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"threshold", cfg.ConfidenceThreshold)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

func newGenerator(ctx context.Context, cfg *config.Config, logger *applog.Logger) fallback.Generator {
	if cfg.GeminiAPIKey == "" {
		logger.Info("Fallback responder disabled - no GEMINI_API_KEY provided")
		return fallback.Disabled{}
	}
	gen, err := fallback.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("Failed to initialize Gemini client, fallback disabled", applog.FieldError, err)
		return fallback.Disabled{}
	}
	logger.Info("Fallback responder ready", "model", gen.Model())
	return gen
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}
