package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// MutableStore extends Store with the write operations seeding needs.
type MutableStore interface {
	Store
	CreateAccount(ctx context.Context, a core.Account) error
	CreateEvent(ctx context.Context, e core.CashFlowEvent) error
	UpsertSnapshot(ctx context.Context, s core.BalanceSnapshot) error
}

// EnsureDefaultAccount creates a starter account when the database is
// empty, so a fresh install has something to forecast against. Returns
// the account that exists afterwards.
func EnsureDefaultAccount(ctx context.Context, store MutableStore) (core.Account, error) {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return core.Account{}, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) > 0 {
		return accounts[0], nil
	}

	now := time.Now().UTC()
	account := core.Account{
		ID:               uuid.NewString(),
		Name:             "Main account",
		Currency:         "EUR",
		WarningThreshold: decimal.NewFromInt(1000),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		return core.Account{}, fmt.Errorf("create default account: %w", err)
	}

	snapshot := core.BalanceSnapshot{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Date:      core.Today(),
		Balance:   decimal.NewFromInt(10000),
		Note:      "starting balance",
		Source:    core.SourceInitial,
		CreatedAt: now,
	}
	if err := store.UpsertSnapshot(ctx, snapshot); err != nil {
		return core.Account{}, fmt.Errorf("create initial snapshot: %w", err)
	}

	slog.InfoContext(ctx, "default account created", "account_id", account.ID)
	return account, nil
}

// SeedSampleData fills an account with a representative set of events
// and an opening snapshot: a salary, two monthly bills, a yearly bonus,
// a yearly insurance premium and a one-off purchase next month.
func SeedSampleData(ctx context.Context, store MutableStore, accountID string) error {
	now := time.Now().UTC()
	today := core.Today()
	nextMonth := today.AddMonths(1)

	insuranceMonth := today.Month() + 2
	if insuranceMonth > 12 {
		insuranceMonth -= 12
	}

	events := []core.CashFlowEvent{
		{
			Name:       "Salary",
			Amount:     decimal.NewFromInt(20000),
			Category:   core.Income,
			Type:       core.Monthly,
			MonthlyDay: 10,
			Notes:      "net income",
		},
		{
			Name:       "Credit card payment",
			Amount:     decimal.NewFromInt(6000),
			Category:   core.Expense,
			Type:       core.Monthly,
			MonthlyDay: 11,
			Notes:      "last month's spending",
		},
		{
			Name:       "Mortgage",
			Amount:     decimal.NewFromInt(8000),
			Category:   core.Expense,
			Type:       core.Monthly,
			MonthlyDay: 20,
		},
		{
			Name:        "Annual bonus",
			Amount:      decimal.NewFromInt(40000),
			Category:    core.Income,
			Type:        core.Yearly,
			YearlyMonth: today.Month(),
			YearlyDay:   today.Day(),
			Notes:       "paid out once a year",
		},
		{
			Name:        "Car insurance",
			Amount:      decimal.NewFromInt(6000),
			Category:    core.Expense,
			Type:        core.Yearly,
			YearlyMonth: insuranceMonth,
			YearlyDay:   15,
		},
		{
			Name:     "Appliance upgrade",
			Amount:   decimal.NewFromInt(12000),
			Category: core.Expense,
			Type:     core.Once,
			OnceDate: nextMonth,
			Notes:    "one-off purchase",
		},
	}

	for i := range events {
		e := &events[i]
		e.ID = uuid.NewString()
		e.AccountID = accountID
		if e.StartDate.IsEmpty() {
			e.StartDate = today
		}
		if e.Type == core.Once && !e.OnceDate.IsEmpty() {
			e.StartDate = e.OnceDate
		}
		e.Enabled = true
		e.CreatedAt = now
		e.UpdatedAt = now

		if err := e.Validate(); err != nil {
			return fmt.Errorf("sample event %s: %w", e.Name, err)
		}
		if err := store.CreateEvent(ctx, *e); err != nil {
			return fmt.Errorf("create sample event %s: %w", e.Name, err)
		}
	}

	snapshot := core.BalanceSnapshot{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Date:      today,
		Balance:   decimal.NewFromInt(16000),
		Note:      "sample opening balance",
		Source:    core.SourceManual,
		CreatedAt: now,
	}
	if err := store.UpsertSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("create sample snapshot: %w", err)
	}

	slog.InfoContext(ctx, "sample data seeded", "account_id", accountID, "events", len(events))
	return nil
}
