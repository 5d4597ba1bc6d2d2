package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Category = "income"
	Expense Category = "expense"
)

const (
	Once    RecurrenceType = "once"
	Monthly RecurrenceType = "monthly"
	Yearly  RecurrenceType = "yearly"
)

const (
	SourceInitial SnapshotSource = "initial"
	SourceManual  SnapshotSource = "manual"
	SourceImport  SnapshotSource = "import"
)

type (
	Category       string
	RecurrenceType string
	SnapshotSource string

	// Account owns a set of cash-flow events and balance snapshots and
	// carries the warning threshold its forecasts are checked against.
	Account struct {
		ID               string          `json:"id"`
		Name             string          `json:"name"`
		TypeLabel        string          `json:"typeLabel,omitempty"`
		Currency         string          `json:"currency"`
		WarningThreshold decimal.Decimal `json:"warningThreshold"`
		CreatedAt        time.Time       `json:"createdAt"`
		UpdatedAt        time.Time       `json:"updatedAt"`
	}

	// CashFlowEvent is a recurrence rule for a projected income or expense.
	// Kind-specific fields are meaningful only for the matching Type:
	// OnceDate for once (falls back to StartDate when unset), MonthlyDay
	// for monthly, YearlyMonth+YearlyDay for yearly.
	CashFlowEvent struct {
		ID          string          `json:"id"`
		AccountID   string          `json:"accountId"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		Category    Category        `json:"category"`
		Type        RecurrenceType  `json:"type"`
		StartDate   Date            `json:"startDate"`
		EndDate     Date            `json:"endDate"`
		OnceDate    Date            `json:"onceDate"`
		MonthlyDay  int             `json:"monthlyDay,omitempty"`
		YearlyMonth int             `json:"yearlyMonth,omitempty"`
		YearlyDay   int             `json:"yearlyDay,omitempty"`
		Notes       string          `json:"notes,omitempty"`
		Color       string          `json:"color,omitempty"`
		Enabled     bool            `json:"enabled"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// BalanceSnapshot is an anchor: the balance is known to be correct as
	// of the date. At most one snapshot per (account, date) is retained.
	BalanceSnapshot struct {
		ID        string          `json:"id"`
		AccountID string          `json:"accountId"`
		Date      Date            `json:"date"`
		Balance   decimal.Decimal `json:"balance"`
		Note      string          `json:"note,omitempty"`
		Source    SnapshotSource  `json:"source"`
		CreatedAt time.Time       `json:"createdAt"`
	}
)

var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidCategory   = errors.New("category must be income or expense")
	ErrInvalidRecurrence = errors.New("invalid recurrence type")
	ErrInvalidStartDate  = errors.New("start date is required")
	ErrEndBeforeStart    = errors.New("end date must not precede start date")
	ErrInvalidMonthlyDay = errors.New("monthly events need a day in 1-31")
	ErrInvalidYearlyRule = errors.New("yearly events need a month in 1-12 and a day in 1-31")
	ErrInvalidSnapshot   = errors.New("snapshot needs a date and a source")
)

// Validate checks an event before it is persisted. The forecast core
// assumes validated input and does not repeat these checks.
func (e CashFlowEvent) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Category != Income && e.Category != Expense {
		return ErrInvalidCategory
	}
	if e.StartDate.IsEmpty() {
		return ErrInvalidStartDate
	}
	if !e.EndDate.IsEmpty() && e.EndDate.Before(e.StartDate) {
		return ErrEndBeforeStart
	}

	switch e.Type {
	case Once:
		// OnceDate is optional; it falls back to StartDate.
	case Monthly:
		if e.MonthlyDay < 1 || e.MonthlyDay > 31 {
			return ErrInvalidMonthlyDay
		}
	case Yearly:
		if e.YearlyMonth < 1 || e.YearlyMonth > 12 || e.YearlyDay < 1 || e.YearlyDay > 31 {
			return ErrInvalidYearlyRule
		}
	default:
		return ErrInvalidRecurrence
	}

	return nil
}

// Validate checks a snapshot before it is persisted.
func (s BalanceSnapshot) Validate() error {
	if s.Date.IsEmpty() {
		return ErrInvalidSnapshot
	}
	switch s.Source {
	case SourceInitial, SourceManual, SourceImport:
		return nil
	default:
		return ErrInvalidSnapshot
	}
}

// Validate checks an account before it is persisted.
func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}
