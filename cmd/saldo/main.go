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
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saldo/internal/cache"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/storage"
)

func main() {
	// .env is for local development; missing files are fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	// Amounts serialize as JSON numbers, matching the API clients expect.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	account, err := services.EnsureDefaultAccount(ctx, repo)
	if err != nil {
		logger.Error("failed to ensure default account", "error", err)
		os.Exit(1)
	}

	cacheManager := cache.NewManager()
	results := services.NewResultCache(cfg.CacheSize, cfg.CacheTTL)
	cacheManager.Register(results)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	forecasts := services.NewForecastService(repo, results, cfg.HorizonMonths)
	srv := apphttp.NewServer(":"+cfg.Port, repo, forecasts)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			"port", cfg.Port,
			"db", cfg.SQLiteDBPath,
			"default_account", account.ID,
			"horizon_months", cfg.HorizonMonths)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
