package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ISODate is the wire and storage format for calendar days.
const ISODate = "2006-01-02"

// Date is a calendar day with no time-of-day component, held at
// midnight UTC. The zero value means "no date" and serializes as JSON
// null.
type Date struct {
	time.Time
}

func NewDate(year, month, day int) Date {
	return Date{time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(ISODate, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{t}, nil
}

// Today returns the current calendar day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(ISODate)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsEmpty reports whether the date is unset.
func (d Date) IsEmpty() bool {
	return d.Time.IsZero()
}

func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// AddMonths moves n calendar months, clamping the day to the target
// month's length: Jan 31 plus one month is Feb 28 (29 in leap years).
// time.Time's AddDate would normalize the overflow into March instead.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year(), d.Time.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	target := Date{first}
	day := d.Day()
	if last := target.DaysInMonth(); day > last {
		day = last
	}
	return NewDate(target.Year(), target.Month(), day)
}

// DaysInMonth returns the length of the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsLeapYear reports whether the date's year is a leap year.
func (d Date) IsLeapYear() bool {
	y := d.Year()
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// BeforeCalendarMonth reports whether d falls in a calendar month
// strictly before other's, ignoring the day of month.
func (d Date) BeforeCalendarMonth(other Date) bool {
	if d.Year() != other.Year() {
		return d.Year() < other.Year()
	}
	return d.Month() < other.Month()
}

// MonthKey returns the sortable YYYY-MM bucket key.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// MonthLabel returns the human-readable bucket label, e.g. "2025 Jan".
func (d Date) MonthLabel() string {
	return d.Format("2006 Jan")
}
