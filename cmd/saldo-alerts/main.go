package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"saldo/internal/amqp"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/storage"
	"saldo/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	results := services.NewResultCache(cfg.CacheSize, cfg.CacheTTL)
	forecasts := services.NewForecastService(repo, results, cfg.HorizonMonths)
	alerts := services.NewAlertService(repo, forecasts, client, cfg.AlertHorizonMonths)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alertWorker := worker.NewAlertWorker(alerts, cfg.AlertSchedule)
	if err := alertWorker.Start(ctx); err != nil {
		logger.Error("failed to start alert worker", "error", err)
		os.Exit(1)
	}

	logger.Info("alert worker running",
		"schedule", cfg.AlertSchedule,
		"horizon_months", cfg.AlertHorizonMonths,
		"queue", cfg.AMQPQueue)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	alertWorker.Stop()
	logger.Info("alert worker shutdown complete")
}
