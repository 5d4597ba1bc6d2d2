package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/core"
)

// StateVersion is bumped when the export format changes shape.
const StateVersion = 1

// State is the full persisted dataset.
type State struct {
	Version   int                    `json:"version"`
	Accounts  []core.Account         `json:"accounts"`
	Events    []core.CashFlowEvent   `json:"events"`
	Snapshots []core.BalanceSnapshot `json:"snapshots"`
}

// Envelope wraps a State for export files.
type Envelope struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	State     State     `json:"state"`
}

// ExportState reads the entire database into an envelope.
func (r *Repository) ExportState(ctx context.Context) (Envelope, error) {
	accounts, err := r.ListAccounts(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("export accounts: %w", err)
	}

	state := State{
		Version:   StateVersion,
		Accounts:  accounts,
		Events:    []core.CashFlowEvent{},
		Snapshots: []core.BalanceSnapshot{},
	}
	for _, a := range accounts {
		events, err := r.ListEvents(ctx, a.ID)
		if err != nil {
			return Envelope{}, fmt.Errorf("export events: %w", err)
		}
		state.Events = append(state.Events, events...)

		snapshots, err := r.ListSnapshots(ctx, a.ID)
		if err != nil {
			return Envelope{}, fmt.Errorf("export snapshots: %w", err)
		}
		state.Snapshots = append(state.Snapshots, snapshots...)
	}

	return Envelope{
		Version:   StateVersion,
		Timestamp: time.Now().UTC(),
		State:     state,
	}, nil
}

// ImportState replaces the entire database with the envelope's state in
// one transaction. On any error the previous data is left untouched.
func (r *Repository) ImportState(ctx context.Context, env Envelope) error {
	if env.State.Version > StateVersion {
		return fmt.Errorf("unsupported state version %d", env.State.Version)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"snapshots", "events", "accounts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, a := range env.State.Accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, name, type_label, currency, warning_threshold, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.TypeLabel, a.Currency, a.WarningThreshold.String(),
			fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt))
		if err != nil {
			return fmt.Errorf("import account %s: %w", a.ID, err)
		}
	}

	for _, e := range env.State.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, account_id, name, amount, category, recurrence,
				start_date, end_date, once_date, monthly_day, yearly_month, yearly_day,
				notes, color, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.AccountID, e.Name, e.Amount.String(), string(e.Category), string(e.Type),
			e.StartDate.String(), nullDate(e.EndDate), nullDate(e.OnceDate),
			nullInt(e.MonthlyDay), nullInt(e.YearlyMonth), nullInt(e.YearlyDay),
			e.Notes, e.Color, e.Enabled, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
		if err != nil {
			return fmt.Errorf("import event %s: %w", e.ID, err)
		}
	}

	for _, s := range env.State.Snapshots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (id, account_id, date, balance, note, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.AccountID, s.Date.String(), s.Balance.String(), s.Note, string(s.Source), fmtTime(s.CreatedAt))
		if err != nil {
			return fmt.Errorf("import snapshot %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "state imported",
		"accounts", len(env.State.Accounts),
		"events", len(env.State.Events),
		"snapshots", len(env.State.Snapshots))
	return nil
}
