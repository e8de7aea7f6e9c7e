/*
config.go - Overtime and pay-period rule configuration

PURPOSE:
  RuleConfig is the complete overtime/doubletime policy for a location:
  classification thresholds, the week alignment they apply against, and
  how pay-period boundaries are derived. A config is supplied explicitly
  on every engine call - never read from ambient state - and validated
  before any calculation runs.

THRESHOLD SEMANTICS:
  The rule enum says which threshold families participate; the thresholds
  say where the lines are. A threshold required by the rule enum must be
  set - RuleDaily with a nil daily threshold fails validation rather than
  silently classifying nothing. Only the doubletime threshold is truly
  optional: nil disables the doubletime split under any rule.

  RuleDaily:  per-day split only (e.g. California-style 8h OT / 12h DT)
  RuleWeekly: per-aligned-week split only (e.g. federal 40h)
  RuleBoth:   daily split first, then the weekly cap on remaining regular
  RuleNone:   everything is regular time

VALIDATION:
  Validate fails fast on inconsistent config (missing biweekly anchor,
  doubletime threshold at or below daily, unknown enums). The engine
  never guesses or defaults a period length - a silently substituted
  boundary corrupts payroll.

SEE ALSO:
  - period.go: Consumes PeriodType and anchors
  - classify.go: Consumes rule and thresholds
  - factory/ruleset.go: Builds RuleConfig from stored JSON
*/
package engine

// =============================================================================
// ENUMS
// =============================================================================

// OvertimeRule selects which threshold families participate in
// classification.
type OvertimeRule string

const (
	RuleNone   OvertimeRule = "NONE"
	RuleDaily  OvertimeRule = "DAILY"
	RuleWeekly OvertimeRule = "WEEKLY"
	RuleBoth   OvertimeRule = "BOTH"
)

// PeriodType selects how pay-period boundaries are derived.
type PeriodType string

const (
	PeriodWeekly      PeriodType = "WEEKLY"
	PeriodBiweekly    PeriodType = "BIWEEKLY"
	PeriodSemimonthly PeriodType = "SEMIMONTHLY"
	PeriodMonthly     PeriodType = "MONTHLY"
)

// ShiftDirection steps a pay-period range backward or forward.
type ShiftDirection string

const (
	ShiftPrevious ShiftDirection = "previous"
	ShiftNext     ShiftDirection = "next"
	ShiftCurrent  ShiftDirection = "current"
)

// =============================================================================
// RULE CONFIG
// =============================================================================

// DefaultShiftHours is the assumed shift length used for missing-punch
// repair suggestions when the config does not override it.
const DefaultShiftHours = 8

// DefaultSemiMonthCut is the conventional mid-month boundary.
const DefaultSemiMonthCut = 15

// RuleConfig is the overtime and pay-period policy for one location.
type RuleConfig struct {
	// Classification thresholds. Nil disables the corresponding split.
	DailyThresholdHours           *Hours
	WeeklyThresholdHours          *Hours
	DoubletimeDailyThresholdHours *Hours

	Rule OvertimeRule

	// WeekStartDay aligns weekly buckets: 0=Sunday .. 6=Saturday.
	WeekStartDay int

	PeriodType PeriodType

	// BiweeklyAnchorDate fixes the 14-day grid for PeriodBiweekly. Any
	// date on the grid works; period starts are whole multiples of 14
	// days from it.
	BiweeklyAnchorDate *Date

	// SemiMonthCut1 is the last day of the first half-month (default 15).
	// SemiMonthCut2 is carried for config-file compatibility: the second
	// half always ends on the real last day of the month, so it must be
	// unset (0) or 31 (the original's month-end convention).
	SemiMonthCut1 int
	SemiMonthCut2 int

	// MonthlyCutDay is carried for config-file compatibility with the
	// original settings schema; monthly periods are whole calendar
	// months, so any value other than 0 or 1 is rejected.
	MonthlyCutDay int

	// DefaultShiftHours overrides the assumed shift length for repair
	// suggestions. Zero means DefaultShiftHours (8).
	DefaultShiftHours int
}

// Threshold wraps an hour value for use as a nullable threshold.
func Threshold(hours float64) *Hours {
	h := NewHours(hours)
	return &h
}

// shiftLength returns the effective repair shift length in hours.
func (c RuleConfig) shiftLength() int {
	if c.DefaultShiftHours > 0 {
		return c.DefaultShiftHours
	}
	return DefaultShiftHours
}

// semiMonthCut returns the effective mid-month cut day.
func (c RuleConfig) semiMonthCut() int {
	if c.SemiMonthCut1 > 0 {
		return c.SemiMonthCut1
	}
	return DefaultSemiMonthCut
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the config for internal consistency. Every engine entry
// point that takes a RuleConfig validates it first and fails hard on any
// inconsistency; no partial results follow a config error.
func (c RuleConfig) Validate() error {
	if c.WeekStartDay < 0 || c.WeekStartDay > 6 {
		return configErr("weekStartDay", ErrInvalidWeekStart)
	}

	switch c.Rule {
	case RuleNone:
	case RuleDaily:
		if c.DailyThresholdHours == nil {
			return configErr("dailyThresholdHours", ErrMissingThreshold)
		}
	case RuleWeekly:
		if c.WeeklyThresholdHours == nil {
			return configErr("weeklyThresholdHours", ErrMissingThreshold)
		}
	case RuleBoth:
		if c.DailyThresholdHours == nil {
			return configErr("dailyThresholdHours", ErrMissingThreshold)
		}
		if c.WeeklyThresholdHours == nil {
			return configErr("weeklyThresholdHours", ErrMissingThreshold)
		}
	default:
		return configErr("rule", ErrUnknownOvertimeRule)
	}

	if c.DailyThresholdHours != nil && !c.DailyThresholdHours.IsPositive() {
		return configErr("dailyThresholdHours", ErrInvalidThreshold)
	}
	if c.WeeklyThresholdHours != nil && !c.WeeklyThresholdHours.IsPositive() {
		return configErr("weeklyThresholdHours", ErrInvalidThreshold)
	}
	if c.DoubletimeDailyThresholdHours != nil {
		if !c.DoubletimeDailyThresholdHours.IsPositive() {
			return configErr("doubletimeDailyThresholdHours", ErrInvalidThreshold)
		}
		// Doubletime below the daily overtime line is contradictory.
		if c.DailyThresholdHours != nil &&
			c.DoubletimeDailyThresholdHours.LessThanOrEqual(*c.DailyThresholdHours) {
			return configErr("doubletimeDailyThresholdHours", ErrInvalidThreshold)
		}
	}

	switch c.PeriodType {
	case PeriodWeekly:
	case PeriodBiweekly:
		if c.BiweeklyAnchorDate == nil || c.BiweeklyAnchorDate.IsZero() {
			return configErr("biweeklyAnchorDate", ErrMissingAnchor)
		}
	case PeriodSemimonthly:
		if cut := c.semiMonthCut(); cut < 1 || cut > 27 {
			return configErr("semiMonthCut1", ErrInvalidSemiMonthCut)
		}
		if c.SemiMonthCut2 != 0 && c.SemiMonthCut2 != 31 {
			return configErr("semiMonthCut2", ErrInvalidSemiMonthCut)
		}
	case PeriodMonthly:
		if c.MonthlyCutDay != 0 && c.MonthlyCutDay != 1 {
			return configErr("monthlyCutDay", ErrInvalidMonthlyCut)
		}
	default:
		return configErr("periodType", ErrUnknownPeriodType)
	}

	return nil
}
