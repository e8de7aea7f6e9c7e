package engine

import (
	"time"
)

// =============================================================================
// DATE - Calendar-day value type
// =============================================================================

// Date is a calendar day with no time-of-day component. Pay-period ranges,
// day buckets, and week alignment all work in Dates; only punches carry
// full instants.
type Date struct {
	t time.Time // normalized to midnight UTC
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of an instant, evaluated in the
// instant's own location. Two punches at the same absolute time in
// different zones can land on different Dates; that is intentional.
func DateOf(ts time.Time) Date {
	return NewDate(ts.Year(), ts.Month(), ts.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// Time returns the date as midnight UTC, for callers that need an instant
// (e.g. building a query range for the punch store).
func (d Date) Time() time.Time { return d.t }

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween returns the signed day count from one date to another.
func DaysBetween(from, to Date) int { return int(to.t.Sub(from.t).Hours() / 24) }

// StartOfMonth returns the first day of the month containing d.
func StartOfMonth(d Date) Date { return NewDate(d.Year(), d.Month(), 1) }

// EndOfMonth returns the last day of the month containing d, correct for
// variable month lengths and leap years.
func EndOfMonth(d Date) Date {
	return Date{t: time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// RollBackToWeekday returns the most recent date on or before d whose
// weekday equals wd (0 days back if d is already aligned).
func RollBackToWeekday(d Date, wd time.Weekday) Date {
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDays(-offset)
}
