/*
period.go - Pay-period range calculation

PURPOSE:
  Computes the pay-period range enclosing a reference date and steps
  forward/backward through adjacent periods of the same configured length
  and alignment. This is the boundary math payroll summaries hang off:
  the caller computes a range here, fetches punches for it, and feeds
  them to the session builder.

PERIOD TYPES:
  WEEKLY       7 days, start rolled back to the configured week start day
  BIWEEKLY     14 days on a fixed grid measured from an anchor date
  SEMIMONTHLY  day 1..cut and cut+1..end-of-month, two halves per month
  MONTHLY      whole calendar month

FAILURE SEMANTICS:
  ComputeRange validates the whole config before deriving any boundary,
  so an inconsistent config (unknown period type, missing anchor, cut day
  out of range) is a ConfigError with no result. There is deliberately no
  fallback window: a silently substituted period length shifts payroll
  boundaries without anyone noticing.

SEE ALSO:
  - config.go: PeriodType, anchors, validation
  - date.go: Calendar arithmetic these computations rest on
*/
package engine

import "time"

// =============================================================================
// RANGE COMPUTATION
// =============================================================================

// ComputeRange returns the pay period enclosing ref under cfg.
func ComputeRange(ref Date, cfg RuleConfig) (PayPeriodRange, error) {
	if err := cfg.Validate(); err != nil {
		return PayPeriodRange{}, err
	}

	switch cfg.PeriodType {
	case PeriodWeekly:
		start := RollBackToWeekday(ref, time.Weekday(cfg.WeekStartDay))
		return PayPeriodRange{Start: start, End: start.AddDays(6)}, nil

	case PeriodBiweekly:
		// Validate guarantees the anchor is present.
		start := biweeklyStart(ref, *cfg.BiweeklyAnchorDate)
		return PayPeriodRange{Start: start, End: start.AddDays(13)}, nil

	case PeriodSemimonthly:
		return semimonthlyRange(ref, cfg.semiMonthCut()), nil

	case PeriodMonthly:
		return PayPeriodRange{Start: StartOfMonth(ref), End: EndOfMonth(ref)}, nil

	default:
		return PayPeriodRange{}, configErr("periodType", ErrUnknownPeriodType)
	}
}

// Shift moves a range to the previous or next period of the same
// configured length and alignment. ShiftCurrent recomputes the period
// containing today.
func Shift(r PayPeriodRange, dir ShiftDirection, cfg RuleConfig) (PayPeriodRange, error) {
	switch dir {
	case ShiftCurrent:
		return ComputeRange(Today(), cfg)
	case ShiftPrevious:
		// One day before the start always lands in the prior period.
		return ComputeRange(r.Start.AddDays(-1), cfg)
	case ShiftNext:
		return ComputeRange(r.End.AddDays(1), cfg)
	default:
		return PayPeriodRange{}, configErr("direction", ErrUnknownDirection)
	}
}

// =============================================================================
// PERIOD-TYPE SPECIFICS
// =============================================================================

// biweeklyStart finds the grid-aligned start on or before ref. The grid is
// every 14th day from the anchor, so the start is anchor plus the floored
// multiple of 14 - correct for refs before the anchor too (floor division,
// not truncation).
func biweeklyStart(ref, anchor Date) Date {
	days := DaysBetween(anchor, ref)
	periods := days / 14
	if days < 0 && days%14 != 0 {
		periods--
	}
	return anchor.AddDays(periods * 14)
}

// semimonthlyRange returns the half-month containing ref: day 1 through
// cut, or cut+1 through the last calendar day.
func semimonthlyRange(ref Date, cut int) PayPeriodRange {
	if ref.Day() <= cut {
		return PayPeriodRange{
			Start: StartOfMonth(ref),
			End:   NewDate(ref.Year(), ref.Month(), cut),
		}
	}
	return PayPeriodRange{
		Start: NewDate(ref.Year(), ref.Month(), cut+1),
		End:   EndOfMonth(ref),
	}
}
