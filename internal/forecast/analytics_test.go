package forecast

import (
	"testing"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

func TestSummarizeWarningDates(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{
		incomeEvent("salary", 2000, 10),
		{
			ID:        "tv",
			Name:      "Television",
			Amount:    decimal.NewFromInt(15000),
			Category:  core.Expense,
			Type:      core.Once,
			StartDate: core.NewDate(2025, 1, 15),
			Enabled:   true,
		},
	}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 1000)}
	series := g.Generate(events, snaps, 2, ModeLatest, core.NewDate(2025, 1, 1))

	summary := Summarize(series, decimal.NewFromInt(500))

	if !summary.TotalExpense.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("totalExpense = %s, want 15000", summary.TotalExpense)
	}
	if !summary.TotalIncome.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("totalIncome = %s, want 4000", summary.TotalIncome)
	}
	if len(summary.WarningDates) == 0 {
		t.Fatal("expected warning dates when the balance dives below the threshold")
	}
	// 1000 + 2000 - 15000 on Jan 15 pushes the balance to -12000.
	if !summary.WarningDates[0].Equal(core.NewDate(2025, 1, 15)) {
		t.Errorf("first warning = %s, want 2025-01-15", summary.WarningDates[0])
	}
	if !summary.Extremes.MinBalance.Equal(decimal.NewFromInt(-12000)) {
		t.Errorf("minBalance = %s, want -12000", summary.Extremes.MinBalance)
	}
}

func TestSummarizeEmptySeries(t *testing.T) {
	summary := Summarize(nil, decimal.NewFromInt(100))

	if summary.Months == nil || len(summary.Months) != 0 {
		t.Errorf("months = %v, want empty slice", summary.Months)
	}
	if summary.WarningDates == nil || len(summary.WarningDates) != 0 {
		t.Errorf("warningDates = %v, want empty slice", summary.WarningDates)
	}
	if !summary.TotalIncome.IsZero() || !summary.TotalExpense.IsZero() || !summary.EndingBalance.IsZero() {
		t.Error("totals should be zero for an empty series")
	}
	if !summary.Extremes.MinDate.IsEmpty() || !summary.Extremes.MaxDate.IsEmpty() {
		t.Error("extremes should be zero for an empty series")
	}
}

func TestSummarizeExtremesFirstWins(t *testing.T) {
	flat := decimal.NewFromInt(700)
	series := []DailyPoint{
		{Date: core.NewDate(2025, 1, 1), Balance: flat, Events: []EventOccurrence{}},
		{Date: core.NewDate(2025, 1, 2), Balance: flat, Events: []EventOccurrence{}},
		{Date: core.NewDate(2025, 1, 3), Balance: flat, Events: []EventOccurrence{}},
	}

	summary := Summarize(series, decimal.Zero)
	if !summary.Extremes.MinDate.Equal(core.NewDate(2025, 1, 1)) {
		t.Errorf("minDate = %s, want the earliest tied day", summary.Extremes.MinDate)
	}
	if !summary.Extremes.MaxDate.Equal(core.NewDate(2025, 1, 1)) {
		t.Errorf("maxDate = %s, want the earliest tied day", summary.Extremes.MaxDate)
	}
	if !summary.Extremes.MinBalance.Equal(flat) || !summary.Extremes.MaxBalance.Equal(flat) {
		t.Error("flat series: min and max should both equal the balance")
	}
}

func TestSummarizeThresholdIsExclusive(t *testing.T) {
	threshold := decimal.NewFromInt(500)
	series := []DailyPoint{
		{Date: core.NewDate(2025, 1, 1), Balance: decimal.NewFromInt(500), Events: []EventOccurrence{}},
		{Date: core.NewDate(2025, 1, 2), Balance: decimal.NewFromFloat(499.99), Events: []EventOccurrence{}},
	}

	summary := Summarize(series, threshold)
	if len(summary.WarningDates) != 1 {
		t.Fatalf("warningDates = %v, want exactly the strictly-below day", summary.WarningDates)
	}
	if !summary.WarningDates[0].Equal(core.NewDate(2025, 1, 2)) {
		t.Errorf("warning = %s, want 2025-01-02", summary.WarningDates[0])
	}
}

func TestSummarizeMonthsSortedAndLabeled(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{incomeEvent("salary", 1000, 5)}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2024, 11, 15), 2000)}
	series := g.Generate(events, snaps, 3, ModeLatest, core.NewDate(2024, 11, 15))

	summary := Summarize(series, decimal.Zero)
	wantLabels := []string{"2024 Nov", "2024 Dec", "2025 Jan", "2025 Feb"}
	if len(summary.Months) != len(wantLabels) {
		t.Fatalf("months = %d buckets, want %d", len(summary.Months), len(wantLabels))
	}
	for i, want := range wantLabels {
		if summary.Months[i].MonthLabel != want {
			t.Errorf("month %d label = %q, want %q", i, summary.Months[i].MonthLabel, want)
		}
	}

	// The events start in 2025, so the 2024 buckets carry no flow.
	if !summary.Months[0].Income.IsZero() || !summary.Months[0].Net.IsZero() {
		t.Error("2024 Nov should have no projected flow")
	}
	jan := summary.Months[2]
	if !jan.Income.Equal(decimal.NewFromInt(1000)) || !jan.Net.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("2025 Jan income = %s net = %s, want 1000", jan.Income, jan.Net)
	}
}
