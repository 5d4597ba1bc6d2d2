// Package services ties the forecast core to storage, caching and
// messaging.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/forecast"
)

// Store is the read surface the forecast service needs.
type Store interface {
	GetAccount(ctx context.Context, id string) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListEvents(ctx context.Context, accountID string) ([]core.CashFlowEvent, error)
	ListSnapshots(ctx context.Context, accountID string) ([]core.BalanceSnapshot, error)
}

// ForecastOptions selects the projection window. Zero values fall back
// to the service defaults (configured horizon, latest mode, current
// day).
type ForecastOptions struct {
	Months int
	Mode   forecast.Mode
	Today  core.Date
}

type forecastResult struct {
	Timeline []forecast.DailyPoint
	Summary  forecast.Summary
}

// ForecastService computes timelines and analytics for accounts,
// memoizing results keyed by a content hash of everything that feeds the
// computation. Any change to the inputs produces a different key, so
// stale entries are never served; they simply age out of the cache.
type ForecastService struct {
	store         Store
	generator     *forecast.Generator
	cache         *cache.LRUCache[forecastResult]
	defaultMonths int
}

func NewForecastService(store Store, results *cache.LRUCache[forecastResult], defaultMonths int) *ForecastService {
	return &ForecastService{
		store:         store,
		generator:     forecast.NewGenerator(),
		cache:         results,
		defaultMonths: defaultMonths,
	}
}

// NewResultCache builds the cache a ForecastService memoizes into.
func NewResultCache(size int, ttl time.Duration) *cache.LRUCache[forecastResult] {
	return cache.NewLRUCache[forecastResult](size, ttl)
}

// Timeline returns the daily balance projection for the account.
func (s *ForecastService) Timeline(ctx context.Context, accountID string, opts ForecastOptions) ([]forecast.DailyPoint, error) {
	result, err := s.compute(ctx, accountID, opts)
	if err != nil {
		return nil, err
	}
	return result.Timeline, nil
}

// Analytics returns the summary view over the account's projection.
func (s *ForecastService) Analytics(ctx context.Context, accountID string, opts ForecastOptions) (forecast.Summary, error) {
	result, err := s.compute(ctx, accountID, opts)
	if err != nil {
		return forecast.Summary{}, err
	}
	return result.Summary, nil
}

func (s *ForecastService) compute(ctx context.Context, accountID string, opts ForecastOptions) (forecastResult, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return forecastResult{}, fmt.Errorf("load account: %w", err)
	}
	events, err := s.store.ListEvents(ctx, accountID)
	if err != nil {
		return forecastResult{}, fmt.Errorf("load events: %w", err)
	}
	snapshots, err := s.store.ListSnapshots(ctx, accountID)
	if err != nil {
		return forecastResult{}, fmt.Errorf("load snapshots: %w", err)
	}

	if opts.Months <= 0 {
		opts.Months = s.defaultMonths
	}
	if opts.Mode == "" {
		opts.Mode = forecast.ModeLatest
	}
	if opts.Today.IsEmpty() {
		opts.Today = core.Today()
	}

	key, err := resultKey(events, snapshots, opts, account.WarningThreshold)
	if err != nil {
		return forecastResult{}, fmt.Errorf("build cache key: %w", err)
	}
	if cached, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "forecast served from cache", "account_id", accountID, "cache_hit", true)
		return cached, nil
	}

	timeline := s.generator.Generate(events, snapshots, opts.Months, opts.Mode, opts.Today)
	result := forecastResult{
		Timeline: timeline,
		Summary:  forecast.Summarize(timeline, account.WarningThreshold),
	}
	s.cache.Set(key, result)

	slog.DebugContext(ctx, "forecast computed",
		"account_id", accountID,
		"months", opts.Months,
		"mode", string(opts.Mode),
		"days", len(timeline),
		"cache_hit", false)
	return result, nil
}

// resultKey hashes every input of the projection. JSON gives a stable
// canonical form: struct fields marshal in declaration order and the
// slices arrive pre-sorted from storage.
func resultKey(events []core.CashFlowEvent, snapshots []core.BalanceSnapshot, opts ForecastOptions, threshold decimal.Decimal) (string, error) {
	payload, err := json.Marshal(struct {
		Events    []core.CashFlowEvent
		Snapshots []core.BalanceSnapshot
		Months    int
		Mode      forecast.Mode
		Today     core.Date
		Threshold decimal.Decimal
	}{events, snapshots, opts.Months, opts.Mode, opts.Today, threshold})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
