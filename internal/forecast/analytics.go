package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// MonthlyBucket aggregates a calendar month's projected cash flow.
type MonthlyBucket struct {
	MonthLabel string          `json:"monthLabel"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
}

// BalanceExtremes marks the lowest and highest projected balances. Ties
// keep the earliest day.
type BalanceExtremes struct {
	MinBalance decimal.Decimal `json:"minBalance"`
	MinDate    core.Date       `json:"minDate"`
	MaxBalance decimal.Decimal `json:"maxBalance"`
	MaxDate    core.Date       `json:"maxDate"`
}

// Summary is the analytics view over a projected timeline.
type Summary struct {
	Months        []MonthlyBucket `json:"months"`
	Extremes      BalanceExtremes `json:"extremes"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpense  decimal.Decimal `json:"totalExpense"`
	EndingBalance decimal.Decimal `json:"endingBalance"`
	WarningDates  []core.Date     `json:"warningDates"`
}

// Summarize reduces a timeline to monthly buckets, balance extremes,
// flow totals and the days where the balance falls strictly below the
// warning threshold. An empty series yields a zeroed summary with empty
// (not nil) slices, so JSON consumers always see arrays.
func Summarize(series []DailyPoint, warningThreshold decimal.Decimal) Summary {
	summary := Summary{
		Months:       []MonthlyBucket{},
		WarningDates: []core.Date{},
	}
	if len(series) == 0 {
		return summary
	}

	buckets := make(map[string]*MonthlyBucket)
	var keys []string
	var haveMin, haveMax bool

	for _, point := range series {
		key := point.Date.MonthKey()
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthlyBucket{MonthLabel: point.Date.MonthLabel()}
			buckets[key] = bucket
			keys = append(keys, key)
		}
		for _, occ := range point.Events {
			if occ.Category == core.Income {
				bucket.Income = bucket.Income.Add(occ.Amount)
				summary.TotalIncome = summary.TotalIncome.Add(occ.Amount)
			} else {
				bucket.Expense = bucket.Expense.Add(occ.Amount)
				summary.TotalExpense = summary.TotalExpense.Add(occ.Amount)
			}
		}

		if !haveMin || point.Balance.LessThan(summary.Extremes.MinBalance) {
			summary.Extremes.MinBalance = point.Balance
			summary.Extremes.MinDate = point.Date
			haveMin = true
		}
		if !haveMax || point.Balance.GreaterThan(summary.Extremes.MaxBalance) {
			summary.Extremes.MaxBalance = point.Balance
			summary.Extremes.MaxDate = point.Date
			haveMax = true
		}

		if point.Balance.LessThan(warningThreshold) {
			summary.WarningDates = append(summary.WarningDates, point.Date)
		}
	}

	sort.Strings(keys)
	for _, key := range keys {
		bucket := buckets[key]
		bucket.Net = bucket.Income.Sub(bucket.Expense)
		summary.Months = append(summary.Months, *bucket)
	}
	summary.EndingBalance = series[len(series)-1].Balance
	return summary
}
