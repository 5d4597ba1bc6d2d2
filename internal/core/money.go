// Package core holds the domain model shared by the forecast engines and
// the surrounding application: calendar dates, accounts, cash-flow events
// and balance snapshots.
//
// This file contains money helpers. Amounts are decimal values in a
// single opaque unit; the core never converts currencies.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundCurrency rounds a balance to 2 decimal places (half away from
// zero). The segment expander applies it once per projected day so that
// rounding error never accumulates beyond single-day precision.
func RoundCurrency(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Signed returns the amount's contribution to a daily net change:
// positive for income, negative for expense.
func Signed(amount decimal.Decimal, category Category) decimal.Decimal {
	if category == Expense {
		return amount.Neg()
	}
	return amount
}

// ParseAmount parses a user-entered positive amount. It accepts both dot
// (12.34) and comma (12,34) decimal separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !v.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return v, nil
}
