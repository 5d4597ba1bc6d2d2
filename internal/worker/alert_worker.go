// Package worker schedules periodic low-balance sweeps.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"saldo/internal/core"
	"saldo/internal/services"
)

// AlertWorker runs the alert sweep on a cron schedule. An initial sweep
// runs at startup so a restart never skips a day's check.
type AlertWorker struct {
	alerts   *services.AlertService
	schedule string
	cron     *cron.Cron
}

func NewAlertWorker(alerts *services.AlertService, schedule string) *AlertWorker {
	return &AlertWorker{
		alerts:   alerts,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start runs one sweep immediately, then sweeps on the schedule until
// Stop is called. The context bounds each sweep, not the scheduler.
func (w *AlertWorker) Start(ctx context.Context) error {
	if _, err := w.alerts.Sweep(ctx, core.Today()); err != nil {
		slog.ErrorContext(ctx, "startup sweep failed", "error", err)
	}

	_, err := w.cron.AddFunc(w.schedule, func() {
		if _, err := w.alerts.Sweep(ctx, core.Today()); err != nil {
			slog.ErrorContext(ctx, "scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule alert sweep: %w", err)
	}

	w.cron.Start()
	slog.InfoContext(ctx, "alert worker started", "schedule", w.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *AlertWorker) Stop() {
	<-w.cron.Stop().Done()
	slog.Info("alert worker stopped")
}
