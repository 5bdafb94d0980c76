package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/ledger"
	"ledger/internal/operator"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	writes := operator.NewOperatorDelegator(repo, cfg.WriterWorkers)
	writes.Start()

	categories := ledger.NewCategories(repo, writes)
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := categories.Seed(seedCtx); err != nil {
		logger.Error("Failed to seed default categories", "error", err)
		seedCancel()
		writes.Stop()
		os.Exit(1)
	}
	seedCancel()

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		publisher = amqpClient
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     services.NewLedgerService(writes, publisher, logger),
		Aggregator: ledger.NewAggregator(repo),
		Feed:       ledger.NewFeed(repo),
		Categories: categories,
		Store:      repo,
		Logger:     logger,
	}, apphttp.Options{
		CurrencySymbol:     cfg.CurrencySymbol,
		RecentLimit:        cfg.RecentLimit,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheSize:    cfg.ReportCacheSize,
		ReportCacheTTL:     cfg.ReportCacheTTL,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		writes.Stop()
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		writes.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Starting ledger server", "port", cfg.Port, "db", cfg.SQLiteDBPath, "writers", cfg.WriterWorkers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
