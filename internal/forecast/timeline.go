package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Mode selects how balance snapshots anchor the projection.
type Mode string

const (
	// ModeLatest projects a single horizon from the most recent snapshot.
	ModeLatest Mode = "latest"
	// ModeSegments projects one horizon per snapshot, each cut short where
	// the next snapshot takes over.
	ModeSegments Mode = "segments"
)

// EventOccurrence is one firing of a cash-flow event on a concrete day.
type EventOccurrence struct {
	ID       string          `json:"id"`
	EventID  string          `json:"eventId"`
	Name     string          `json:"name"`
	Category core.Category   `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     core.Date       `json:"date"`
}

// DailyPoint is one day of the projected timeline: the running balance
// after that day's events, the day's net change, and the occurrences
// that produced it.
type DailyPoint struct {
	Date       core.Date         `json:"date"`
	Balance    decimal.Decimal   `json:"balance"`
	Change     decimal.Decimal   `json:"change"`
	Events     []EventOccurrence `json:"events"`
	IsWeekend  bool              `json:"isWeekend"`
	IsToday    bool              `json:"isToday"`
	IsPast     bool              `json:"isPast"`
	SnapshotID string            `json:"snapshotId"`
}

// Generator expands events and snapshots into a daily balance series.
// The zero value is usable; NewGenerator exists for symmetry with the
// service constructors.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// segment is one projection run: a snapshot anchor and the horizon it
// covers. In segments mode endBefore is the next snapshot's date, which
// truncates the run; in latest mode it is empty.
type segment struct {
	snapshot  core.BalanceSnapshot
	start     core.Date
	endBefore core.Date
}

// Generate expands the events into a daily balance series over months
// calendar months. Snapshots may arrive in any order; they are sorted by
// date first. With no snapshots there is nothing to anchor on and the
// result is nil. A zero today defaults to the current day.
func (g *Generator) Generate(events []core.CashFlowEvent, snapshots []core.BalanceSnapshot, months int, mode Mode, today core.Date) []DailyPoint {
	if len(snapshots) == 0 {
		return nil
	}
	if today.IsEmpty() {
		today = core.Today()
	}

	sorted := make([]core.BalanceSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var segments []segment
	if mode == ModeSegments {
		for i, snap := range sorted {
			seg := segment{snapshot: snap, start: snap.Date}
			if i+1 < len(sorted) {
				seg.endBefore = sorted[i+1].Date
			}
			segments = append(segments, seg)
		}
	} else {
		latest := sorted[len(sorted)-1]
		segments = []segment{{snapshot: latest, start: latest.Date}}
	}

	var series []DailyPoint
	for _, seg := range segments {
		series = append(series, g.expandSegment(seg, events, months, today)...)
	}
	return series
}

// expandSegment walks a segment day by day. The balance carries across
// days within the segment only; each segment restarts from its own
// snapshot. The horizon end is inclusive unless the next snapshot's date
// cuts it short.
func (g *Generator) expandSegment(seg segment, events []core.CashFlowEvent, months int, today core.Date) []DailyPoint {
	end := seg.start.AddMonths(months)
	if !seg.endBefore.IsEmpty() && seg.endBefore.Before(end) {
		end = seg.endBefore.AddDays(-1)
	}
	if end.Before(seg.start) {
		return nil
	}

	balance := seg.snapshot.Balance
	var series []DailyPoint
	for day := seg.start; !day.After(end); day = day.AddDays(1) {
		occ := []EventOccurrence{}
		change := decimal.Zero
		for _, e := range events {
			if !OccursOn(e, day) {
				continue
			}
			occ = append(occ, EventOccurrence{
				ID:       e.ID + "-" + day.String(),
				EventID:  e.ID,
				Name:     e.Name,
				Category: e.Category,
				Amount:   e.Amount,
				Date:     day,
			})
			change = change.Add(core.Signed(e.Amount, e.Category))
		}
		balance = core.RoundCurrency(balance.Add(change))

		series = append(series, DailyPoint{
			Date:       day,
			Balance:    balance,
			Change:     change,
			Events:     occ,
			IsWeekend:  day.IsWeekend(),
			IsToday:    day.Equal(today),
			IsPast:     day.Before(today),
			SnapshotID: seg.snapshot.ID,
		})
	}
	return series
}
