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
	"golang.org/x/sync/errgroup"

	"github.com/Pixalesce/simple-expense-tracker/internal/amqp"
	"github.com/Pixalesce/simple-expense-tracker/internal/backend"
	"github.com/Pixalesce/simple-expense-tracker/internal/config"
	"github.com/Pixalesce/simple-expense-tracker/internal/core"
	"github.com/Pixalesce/simple-expense-tracker/internal/exchange"
	apphttp "github.com/Pixalesce/simple-expense-tracker/internal/http"
	"github.com/Pixalesce/simple-expense-tracker/internal/ledger"
	applog "github.com/Pixalesce/simple-expense-tracker/internal/log"
	"github.com/Pixalesce/simple-expense-tracker/internal/services"
)

func main() {
	// Optional .env for local development; real deployments set env vars directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateSnapshot(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize snapshot backend", applog.FieldError, err, applog.FieldBackend, backendCfg.Type.String())
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Snapshot backend cleanup failed", applog.FieldError, err)
		}
	}()

	rates := exchange.NewClient(cfg.ExchangeAPIURL, cfg.ExchangeAPIKey, cfg.ExchangeTimeout)
	normalizer := core.NewNormalizer(cfg.BaseCurrency, rates)
	store := ledger.NewStore(result.Snapshot)

	// AMQP is optional: without a URL the service simply skips event publishing.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without ledger events", applog.FieldError, err)
			events = nil
		} else {
			logger.Info("AMQP ledger events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(store, normalizer, events)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close failed", applog.FieldError, err)
		}
	}()

	items, err := svc.Load(ctx)
	if err != nil {
		logger.Error("Failed to load ledger", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger loaded",
		applog.FieldLedgerSize, len(items),
		applog.FieldBaseCurrency, svc.BaseCurrency(),
		applog.FieldBackend, backendCfg.Type.String())

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting tracker server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
