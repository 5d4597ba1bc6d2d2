package forecast

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

func snapshot(id string, d core.Date, balance int64) core.BalanceSnapshot {
	return core.BalanceSnapshot{
		ID:      id,
		Date:    d,
		Balance: decimal.NewFromInt(balance),
		Source:  core.SourceManual,
	}
}

func incomeEvent(id string, amount int64, day int) core.CashFlowEvent {
	return core.CashFlowEvent{
		ID:         id,
		Name:       "Income " + id,
		Amount:     decimal.NewFromInt(amount),
		Category:   core.Income,
		Type:       core.Monthly,
		StartDate:  core.NewDate(2025, 1, 1),
		MonthlyDay: day,
		Enabled:    true,
	}
}

func expenseEvent(id string, amount int64, day int) core.CashFlowEvent {
	e := incomeEvent(id, amount, day)
	e.Name = "Expense " + id
	e.Category = core.Expense
	return e
}

func occurrencesOf(series []DailyPoint, eventID string) []EventOccurrence {
	var out []EventOccurrence
	for _, p := range series {
		for _, occ := range p.Events {
			if occ.EventID == eventID {
				out = append(out, occ)
			}
		}
	}
	return out
}

func TestGenerateTwoMonthHorizon(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{
		incomeEvent("salary", 2000, 10),
		expenseEvent("rent", 3000, 20),
	}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 10000)}
	today := core.NewDate(2025, 1, 1)

	series := g.Generate(events, snaps, 2, ModeLatest, today)
	if len(series) == 0 {
		t.Fatal("expected a non-empty timeline")
	}

	if !series[0].Date.Equal(core.NewDate(2025, 1, 1)) {
		t.Errorf("first day = %s, want 2025-01-01", series[0].Date)
	}
	if !series[0].Balance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("anchor balance = %s, want 10000", series[0].Balance)
	}
	for _, p := range series {
		if p.SnapshotID != "s1" {
			t.Fatalf("%s: snapshotId = %q, want s1 on every point of the segment", p.Date, p.SnapshotID)
		}
	}
	last := series[len(series)-1]
	if !last.Date.Equal(core.NewDate(2025, 3, 1)) {
		t.Errorf("last day = %s, want inclusive horizon end 2025-03-01", last.Date)
	}

	salaries := occurrencesOf(series, "salary")
	if len(salaries) != 2 {
		t.Fatalf("salary occurrences = %d, want 2", len(salaries))
	}
	if !salaries[0].Date.Equal(core.NewDate(2025, 1, 10)) {
		t.Errorf("first salary = %s, want 2025-01-10", salaries[0].Date)
	}
	if salaries[0].ID != "salary-2025-01-10" {
		t.Errorf("occurrence id = %q", salaries[0].ID)
	}

	// 10000 + 2*2000 - 2*3000
	if !last.Balance.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("ending balance = %s, want 8000", last.Balance)
	}
}

func TestGenerateClampsMonthlyDay31(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{expenseEvent("card", 500, 31)}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 1000)}

	series := g.Generate(events, snaps, 2, ModeLatest, core.NewDate(2025, 1, 1))
	got := occurrencesOf(series, "card")
	if len(got) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(got))
	}
	if !got[0].Date.Equal(core.NewDate(2025, 1, 31)) || !got[1].Date.Equal(core.NewDate(2025, 2, 28)) {
		t.Errorf("occurrences on %s and %s, want 2025-01-31 and 2025-02-28", got[0].Date, got[1].Date)
	}
}

func TestGenerateEmptySnapshots(t *testing.T) {
	g := NewGenerator()
	series := g.Generate([]core.CashFlowEvent{incomeEvent("x", 100, 1)}, nil, 3, ModeLatest, core.NewDate(2025, 1, 1))
	if len(series) != 0 {
		t.Fatalf("expected an empty timeline without snapshots, got %d days", len(series))
	}
}

func TestGenerateAnchorsOnLatestSnapshot(t *testing.T) {
	g := NewGenerator()
	// Out of chronological order on purpose.
	snaps := []core.BalanceSnapshot{
		snapshot("s2", core.NewDate(2025, 2, 1), 5000),
		snapshot("s1", core.NewDate(2025, 1, 1), 10000),
	}

	series := g.Generate(nil, snaps, 1, ModeLatest, core.NewDate(2025, 2, 1))
	if len(series) == 0 {
		t.Fatal("expected a non-empty timeline")
	}
	if !series[0].Date.Equal(core.NewDate(2025, 2, 1)) {
		t.Errorf("latest mode anchored at %s, want 2025-02-01", series[0].Date)
	}
	if !series[0].Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("anchor balance = %s, want 5000", series[0].Balance)
	}
}

func TestGenerateSegmentsMode(t *testing.T) {
	g := NewGenerator()
	snaps := []core.BalanceSnapshot{
		snapshot("s1", core.NewDate(2025, 1, 1), 10000),
		snapshot("s2", core.NewDate(2025, 2, 1), 7000),
	}
	events := []core.CashFlowEvent{incomeEvent("salary", 2000, 10)}

	series := g.Generate(events, snaps, 2, ModeSegments, core.NewDate(2025, 1, 1))
	if len(series) == 0 {
		t.Fatal("expected a non-empty timeline")
	}

	// Segment 1 runs Jan 1 .. Jan 31 (cut by the next snapshot), segment 2
	// runs Feb 1 .. Apr 1. Days must be contiguous and non-overlapping.
	for i := 1; i < len(series); i++ {
		if !series[i].Date.Equal(series[i-1].Date.AddDays(1)) {
			t.Fatalf("gap or overlap at %s -> %s", series[i-1].Date, series[i].Date)
		}
	}
	if !series[0].Date.Equal(core.NewDate(2025, 1, 1)) {
		t.Errorf("first day = %s", series[0].Date)
	}
	last := series[len(series)-1]
	if !last.Date.Equal(core.NewDate(2025, 4, 1)) {
		t.Errorf("last day = %s, want 2025-04-01", last.Date)
	}

	// Every point carries the id of the snapshot that anchors its
	// segment: s1 through Jan 31, s2 from Feb 1 on.
	var feb1 DailyPoint
	for _, p := range series {
		want := "s1"
		if !p.Date.Before(core.NewDate(2025, 2, 1)) {
			want = "s2"
		}
		if p.SnapshotID != want {
			t.Fatalf("%s: snapshotId = %q, want %q", p.Date, p.SnapshotID, want)
		}
		if p.Date.Equal(core.NewDate(2025, 2, 1)) {
			feb1 = p
		}
	}

	// The second segment restarts from its own snapshot, not from the
	// first segment's running balance.
	if !feb1.Balance.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("Feb 1 balance = %s, want 7000", feb1.Balance)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{
		incomeEvent("salary", 2000, 10),
		expenseEvent("rent", 800, 1),
	}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 4000)}
	today := core.NewDate(2025, 1, 15)

	first := g.Generate(events, snaps, 3, ModeLatest, today)
	second := g.Generate(events, snaps, 3, ModeLatest, today)
	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs should produce identical timelines")
	}
}

func TestGenerateBalanceContinuity(t *testing.T) {
	g := NewGenerator()
	events := []core.CashFlowEvent{
		incomeEvent("salary", 2000, 10),
		expenseEvent("rent", 800, 1),
	}
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 4000)}

	series := g.Generate(events, snaps, 2, ModeLatest, core.NewDate(2025, 1, 1))
	prev := snaps[0].Balance
	for i, p := range series {
		want := core.RoundCurrency(prev.Add(p.Change))
		if !p.Balance.Equal(want) {
			t.Fatalf("day %d (%s): balance %s, want %s", i, p.Date, p.Balance, want)
		}
		prev = p.Balance
	}
}

func TestGenerateTodayFlags(t *testing.T) {
	g := NewGenerator()
	snaps := []core.BalanceSnapshot{snapshot("s1", core.NewDate(2025, 1, 1), 1000)}
	today := core.NewDate(2025, 1, 3)

	series := g.Generate(nil, snaps, 1, ModeLatest, today)
	for _, p := range series {
		wantToday := p.Date.Equal(today)
		wantPast := p.Date.Before(today)
		if p.IsToday != wantToday || p.IsPast != wantPast {
			t.Errorf("%s: isToday=%v isPast=%v", p.Date, p.IsToday, p.IsPast)
		}
	}
}
