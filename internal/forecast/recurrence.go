// Package forecast projects an account's daily balance forward from its
// cash-flow events, anchored on balance snapshots, and summarizes the
// projection into monthly buckets, balance extremes and threshold
// warnings. Every function here is a pure computation over its inputs:
// no I/O, no shared state, safe to call concurrently as long as callers
// do not mutate the inputs mid-call.
package forecast

import (
	"fmt"

	"saldo/internal/core"
)

// OccurrenceRule is the strategy interface deciding whether an event
// fires on a given calendar day. Each recurrence type has its own rule.
type OccurrenceRule interface {
	// Matches reports whether the event fires on day. It may assume the
	// activity window and enabled flag were already checked.
	Matches(e core.CashFlowEvent, day core.Date) bool
}

// OnceRule fires on the event's once date, falling back to its start
// date when no explicit once date is set.
type OnceRule struct{}

func (OnceRule) Matches(e core.CashFlowEvent, day core.Date) bool {
	target := e.OnceDate
	if target.IsEmpty() {
		target = e.StartDate
	}
	return day.Equal(target)
}

// MonthlyRule fires once per calendar month on the configured day,
// clamped to the month's length: rule day 31 fires on Apr 30 and on
// Feb 28 (29 in leap years). The clamped day, not the literal rule day,
// is compared.
type MonthlyRule struct{}

func (MonthlyRule) Matches(e core.CashFlowEvent, day core.Date) bool {
	if e.MonthlyDay < 1 || e.MonthlyDay > 31 {
		// Malformed events degrade to "never fires" rather than failing.
		return false
	}
	if day.BeforeCalendarMonth(e.StartDate) {
		return false
	}
	target := e.MonthlyDay
	if last := day.DaysInMonth(); target > last {
		target = last
	}
	return day.Day() == target
}

// YearlyRule fires once per year on the configured (month, day). A
// Feb 29 rule is normalized against the evaluated year, so it fires on
// Feb 28 in non-leap years and Feb 29 in leap years.
type YearlyRule struct{}

func (YearlyRule) Matches(e core.CashFlowEvent, day core.Date) bool {
	month, dom := e.YearlyMonth, e.YearlyDay
	if month < 1 || month > 12 || dom < 1 || dom > 31 {
		return false
	}
	if month == 2 && dom == 29 && !day.IsLeapYear() {
		dom = 28
	}
	return day.Month() == month && day.Day() == dom
}

// occurrenceRules maps recurrence types to their rules. The registry
// gives O(1) lookup and lets new recurrence kinds plug in without
// touching the expander.
var occurrenceRules = map[core.RecurrenceType]OccurrenceRule{
	core.Once:    OnceRule{},
	core.Monthly: MonthlyRule{},
	core.Yearly:  YearlyRule{},
}

// RuleFor returns the occurrence rule for a recurrence type.
func RuleFor(kind core.RecurrenceType) (OccurrenceRule, error) {
	rule, ok := occurrenceRules[kind]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type: %s", kind)
	}
	return rule, nil
}

// RegisterOccurrenceRule registers a rule for a custom recurrence type.
func RegisterOccurrenceRule(kind core.RecurrenceType, rule OccurrenceRule) {
	occurrenceRules[kind] = rule
}

// OccursOn reports whether the event fires on day. Disabled events and
// days outside the [StartDate, EndDate] activity window never match,
// regardless of recurrence type; an unknown type never matches.
func OccursOn(e core.CashFlowEvent, day core.Date) bool {
	if !e.Enabled {
		return false
	}
	if day.Before(e.StartDate) {
		return false
	}
	if !e.EndDate.IsEmpty() && day.After(e.EndDate) {
		return false
	}
	rule, ok := occurrenceRules[e.Type]
	if !ok {
		return false
	}
	return rule.Matches(e, day)
}
