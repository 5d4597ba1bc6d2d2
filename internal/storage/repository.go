// Package storage persists accounts, cash-flow events and balance
// snapshots in SQLite. Decimals and dates are stored as TEXT so values
// round-trip without floating point drift.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath
// and runs pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// The pragma rides on the DSN so every pooled connection enforces
	// foreign keys, not just the first one.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- accounts ---

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type_label, currency, warning_threshold, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.TypeLabel, a.Currency, a.WarningThreshold.String(),
		fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "account created", "account_id", a.ID, "name", a.Name)
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type_label, currency, warning_threshold, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type_label, currency, warning_threshold, created_at, updated_at
		FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type_label = ?, currency = ?, warning_threshold = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.TypeLabel, a.Currency, a.WarningThreshold.String(), fmtTime(a.UpdatedAt), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, a.ID)
}

func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, id)
}

// --- events ---

func (r *Repository) CreateEvent(ctx context.Context, e core.CashFlowEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, account_id, name, amount, category, recurrence,
			start_date, end_date, once_date, monthly_day, yearly_month, yearly_day,
			notes, color, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AccountID, e.Name, e.Amount.String(), string(e.Category), string(e.Type),
		e.StartDate.String(), nullDate(e.EndDate), nullDate(e.OnceDate),
		nullInt(e.MonthlyDay), nullInt(e.YearlyMonth), nullInt(e.YearlyDay),
		e.Notes, e.Color, e.Enabled, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	slog.InfoContext(ctx, "event created",
		"event_id", e.ID, "account_id", e.AccountID, "name", e.Name, "recurrence", e.Type)
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, id string) (core.CashFlowEvent, error) {
	row := r.db.QueryRowContext(ctx, selectEvents+` WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CashFlowEvent{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.CashFlowEvent{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListEvents returns the account's events ordered by start date, so
// callers never depend on insertion order.
func (r *Repository) ListEvents(ctx context.Context, accountID string) ([]core.CashFlowEvent, error) {
	rows, err := r.db.QueryContext(ctx, selectEvents+`
		WHERE account_id = ? ORDER BY start_date, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []core.CashFlowEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) UpdateEvent(ctx context.Context, e core.CashFlowEvent) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET name = ?, amount = ?, category = ?, recurrence = ?,
			start_date = ?, end_date = ?, once_date = ?, monthly_day = ?, yearly_month = ?, yearly_day = ?,
			notes = ?, color = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.Amount.String(), string(e.Category), string(e.Type),
		e.StartDate.String(), nullDate(e.EndDate), nullDate(e.OnceDate),
		nullInt(e.MonthlyDay), nullInt(e.YearlyMonth), nullInt(e.YearlyDay),
		e.Notes, e.Color, e.Enabled, fmtTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireRow(res, e.ID)
}

func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRow(res, id)
}

// --- snapshots ---

// UpsertSnapshot inserts a snapshot, replacing any existing one for the
// same (account, date). The replacement takes the new row's id, balance,
// note and source wholesale.
func (r *Repository) UpsertSnapshot(ctx context.Context, s core.BalanceSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, account_id, date, balance, note, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, date) DO UPDATE SET
			id = excluded.id,
			balance = excluded.balance,
			note = excluded.note,
			source = excluded.source,
			created_at = excluded.created_at`,
		s.ID, s.AccountID, s.Date.String(), s.Balance.String(), s.Note, string(s.Source), fmtTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "snapshot saved",
		"snapshot_id", s.ID, "account_id", s.AccountID, "date", s.Date.String())
	return nil
}

// ListSnapshots returns the account's snapshots ordered by date.
func (r *Repository) ListSnapshots(ctx context.Context, accountID string) ([]core.BalanceSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, date, balance, note, source, created_at
		FROM snapshots WHERE account_id = ? ORDER BY date`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []core.BalanceSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *Repository) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return requireRow(res, id)
}

// --- row helpers ---

const selectEvents = `
	SELECT id, account_id, name, amount, category, recurrence,
		start_date, end_date, once_date, monthly_day, yearly_month, yearly_day,
		notes, color, enabled, created_at, updated_at
	FROM events`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (core.Account, error) {
	var (
		a                    core.Account
		threshold            string
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.TypeLabel, &a.Currency, &threshold, &createdAt, &updatedAt); err != nil {
		return core.Account{}, err
	}

	var err error
	if a.WarningThreshold, err = decimal.NewFromString(threshold); err != nil {
		return core.Account{}, fmt.Errorf("parse warning threshold: %w", err)
	}
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}

func scanEvent(row scanner) (core.CashFlowEvent, error) {
	var (
		e                       core.CashFlowEvent
		amount, startDate       string
		endDate, onceDate       sql.NullString
		monthlyDay, yearlyMonth sql.NullInt64
		yearlyDay               sql.NullInt64
		category, recurrence    string
		createdAt, updatedAt    string
	)
	err := row.Scan(&e.ID, &e.AccountID, &e.Name, &amount, &category, &recurrence,
		&startDate, &endDate, &onceDate, &monthlyDay, &yearlyMonth, &yearlyDay,
		&e.Notes, &e.Color, &e.Enabled, &createdAt, &updatedAt)
	if err != nil {
		return core.CashFlowEvent{}, err
	}

	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.CashFlowEvent{}, fmt.Errorf("parse amount: %w", err)
	}
	e.Category = core.Category(category)
	e.Type = core.RecurrenceType(recurrence)
	if e.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.CashFlowEvent{}, fmt.Errorf("parse start date: %w", err)
	}
	if e.EndDate, err = parseNullDate(endDate); err != nil {
		return core.CashFlowEvent{}, fmt.Errorf("parse end date: %w", err)
	}
	if e.OnceDate, err = parseNullDate(onceDate); err != nil {
		return core.CashFlowEvent{}, fmt.Errorf("parse once date: %w", err)
	}
	e.MonthlyDay = int(monthlyDay.Int64)
	e.YearlyMonth = int(yearlyMonth.Int64)
	e.YearlyDay = int(yearlyDay.Int64)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func scanSnapshot(row scanner) (core.BalanceSnapshot, error) {
	var (
		s                 core.BalanceSnapshot
		date, balance     string
		source, createdAt string
	)
	if err := row.Scan(&s.ID, &s.AccountID, &date, &balance, &s.Note, &source, &createdAt); err != nil {
		return core.BalanceSnapshot{}, err
	}

	var err error
	if s.Date, err = core.ParseDate(date); err != nil {
		return core.BalanceSnapshot{}, fmt.Errorf("parse snapshot date: %w", err)
	}
	if s.Balance, err = decimal.NewFromString(balance); err != nil {
		return core.BalanceSnapshot{}, fmt.Errorf("parse balance: %w", err)
	}
	s.Source = core.SnapshotSource(source)
	s.CreatedAt = parseTime(createdAt)
	return s, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func nullDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.String()
}

func parseNullDate(v sql.NullString) (core.Date, error) {
	if !v.Valid || v.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(v.String)
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
