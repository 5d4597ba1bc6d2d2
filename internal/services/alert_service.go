package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/forecast"
)

// AlertPublisher sends low-balance alerts somewhere a notifier can pick
// them up.
type AlertPublisher interface {
	PublishLowBalanceAlert(ctx context.Context, alert *amqp.LowBalanceAlert) error
}

// AlertService sweeps all accounts and publishes an alert for each one
// whose projected balance dips below its warning threshold within the
// horizon.
type AlertService struct {
	store     Store
	forecasts *ForecastService
	publisher AlertPublisher
	months    int
}

func NewAlertService(store Store, forecasts *ForecastService, publisher AlertPublisher, months int) *AlertService {
	return &AlertService{
		store:     store,
		forecasts: forecasts,
		publisher: publisher,
		months:    months,
	}
}

// Sweep checks every account once. A failing account is logged and
// skipped so one broken account never blocks the rest; the first error
// is still reported to the caller.
func (s *AlertService) Sweep(ctx context.Context, today core.Date) (int, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	published := 0
	var firstErr error
	for _, account := range accounts {
		summary, err := s.forecasts.Analytics(ctx, account.ID, ForecastOptions{
			Months: s.months,
			Mode:   forecast.ModeLatest,
			Today:  today,
		})
		if err != nil {
			slog.ErrorContext(ctx, "alert sweep: forecast failed",
				"account_id", account.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(summary.WarningDates) == 0 {
			continue
		}

		alert := amqp.NewLowBalanceAlert(account.ID, account.Name, account.WarningThreshold, summary.WarningDates)
		if err := s.publisher.PublishLowBalanceAlert(ctx, alert); err != nil {
			slog.ErrorContext(ctx, "alert sweep: publish failed",
				"account_id", account.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "alert sweep completed",
		"accounts", len(accounts), "alerts", published)
	return published, firstErr
}
