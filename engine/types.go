/*
Package engine implements the timecard aggregation and pay-period engine.

PURPOSE:
  This package turns a raw, unordered stream of clock-in/clock-out events
  into daily work sessions, classifies hours into regular/overtime/
  doubletime buckets under configurable rules, and computes pay-period
  date ranges a caller can step through.

KEY CONCEPTS IN THIS FILE (types.go):
  - PunchEvent: A single clock action, owned by the external punch store
  - Session: A derived IN/OUT pairing within one calendar day
  - DayBucket: All sessions and classified hours for one employee-day
  - WeekBucket: Aligned-week rollup used by weekly overtime rules
  - Hours: A decimal hour quantity carried at 2-decimal precision

DESIGN PRINCIPLES:
  1. Purity: Every operation is a pure function of its inputs. The engine
     fetches nothing, persists nothing, and holds no state between calls.
  2. Precision: Uses decimal.Decimal for hour math to avoid floating-point
     drift across long chains of additions (payroll dollars depend on it).
  3. Reproducibility: The same punches and config always produce the same
     buckets, regardless of input order.
  4. Anomaly tolerance: Malformed punch sequences never abort a
     calculation; they surface as exception flags on sessions.

USAGE:
  tc, err := engine.BuildTimecard(punches, cfg)
  if err != nil {
      // configuration error - no partial result
  }
  for _, day := range tc.Days {
      fmt.Println(day.Date, day.RegularHours, day.OvertimeHours)
  }

SEE ALSO:
  - config.go: RuleConfig and validation
  - period.go: Pay-period range calculation
  - sessions.go: Punch pairing algorithm
  - classify.go: Regular/overtime/doubletime split
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Decimal hour quantity
// =============================================================================

// Hours is a quantity of worked time in hours.
// Session hours are rounded to 2 decimal places at the point they are
// computed; totals are exact sums of those components and are never
// re-rounded.
type Hours = decimal.Decimal

// NewHours builds an Hours value from a float.
func NewHours(v float64) Hours { return decimal.NewFromFloat(v) }

// ZeroHours is the zero hour quantity.
func ZeroHours() Hours { return decimal.Zero }

// hoursBetween computes the elapsed wall-clock hours between two instants,
// rounded to 2 decimal places. Negative spans (clock skew in source data)
// clamp to zero rather than propagating as negative hours.
func hoursBetween(in, out time.Time) Hours {
	seconds := out.Sub(in).Seconds()
	if seconds < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(seconds / 3600).Round(2)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PunchID string
type EmployeeID string
type LocationID string

// =============================================================================
// PUNCH EVENT - One clock action (owned by the external punch store)
// =============================================================================

type PunchType string

const (
	PunchIn  PunchType = "IN"
	PunchOut PunchType = "OUT"
)

// PunchEvent is a single clock action. The engine treats punches as
// immutable snapshots; PunchID is the only datum that round-trips back to
// the external store (to support edit/delete of an exact punch).
//
// Timestamp carries its own location. The calendar day a punch belongs to
// is derived in that location, not from any global day boundary.
type PunchEvent struct {
	ID         PunchID
	EmployeeID EmployeeID
	LocationID LocationID
	Type       PunchType
	Timestamp  time.Time
}

// =============================================================================
// SESSION - Derived IN/OUT pairing within one day
// =============================================================================

// ExceptionTag marks a session that did not form a clean IN/OUT pair.
type ExceptionTag string

const (
	ExceptionNone      ExceptionTag = "NONE"
	ExceptionOpenIn    ExceptionTag = "OPEN_IN"    // IN with no matching OUT
	ExceptionOrphanOut ExceptionTag = "ORPHAN_OUT" // OUT with no preceding IN
)

// Session is an engine-owned pairing of at most one IN and one OUT punch.
// Sessions are recomputed from scratch on every aggregation call; they have
// no identity beyond their source punch ids.
type Session struct {
	Date       Date
	InID       PunchID // empty for ORPHAN_OUT
	OutID      PunchID // empty for OPEN_IN
	EmployeeID EmployeeID
	LocationID LocationID
	In         time.Time // zero for ORPHAN_OUT
	Out        time.Time // zero for OPEN_IN
	Hours      Hours     // zero for incomplete sessions
	Exception  ExceptionTag
}

// Complete reports whether the session is a clean IN/OUT pair.
func (s Session) Complete() bool { return s.Exception == ExceptionNone }

// =============================================================================
// DAY BUCKET - One employee-day
// =============================================================================

// DayBucket holds all sessions for one calendar day plus the classified
// hour split. Invariant: RegularHours + OvertimeHours + DoubletimeHours
// equals TotalHours exactly (decimal arithmetic makes the tolerance moot).
type DayBucket struct {
	Date            Date
	Sessions        []Session
	TotalHours      Hours
	RegularHours    Hours
	OvertimeHours   Hours
	DoubletimeHours Hours
	HasException    bool
}

// =============================================================================
// WEEK BUCKET - Aligned-week rollup
// =============================================================================

// WeekBucket aggregates the day buckets whose dates fall in one aligned
// week. Alignment comes from RuleConfig.WeekStartDay. Only produced when a
// weekly threshold participates in classification, but always populated in
// Summary for display.
type WeekBucket struct {
	Start           Date // the WeekStartDay-aligned first day
	End             Date // Start + 6
	Days            []Date
	TotalHours      Hours
	RegularHours    Hours
	OvertimeHours   Hours
	DoubletimeHours Hours
}

// =============================================================================
// PAY PERIOD RANGE
// =============================================================================

// PayPeriodRange is an inclusive calendar-date pair delimiting exactly one
// configured period. End is never before Start.
type PayPeriodRange struct {
	Start Date
	End   Date
}

// Contains reports whether d falls within the range [Start, End].
func (r PayPeriodRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns the number of calendar days in the range, inclusive.
func (r PayPeriodRange) Days() int { return DaysBetween(r.Start, r.End) + 1 }

func (r PayPeriodRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
