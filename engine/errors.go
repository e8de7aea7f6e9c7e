/*
errors.go - Centralized error types for the timecard engine

PURPOSE:
  All engine error types in one place. Callers (API handlers, stores)
  distinguish configuration errors from everything else with errors.Is
  and the IsConfigError helper.

ERROR CATEGORIES:
  1. Configuration errors - RuleConfig is internally inconsistent.
     These fail the call immediately with no partial result: silently
     defaulting a pay-period rule would corrupt payroll boundaries.
  2. Data anomalies - malformed punch sequences (open IN, orphan OUT).
     These are NOT errors. They surface as exception flags on sessions
     so a caller can render warnings while still showing totals.
  3. Store errors - sentinels shared by every PunchStore implementation
     (duplicate id on append, unknown id on update/delete).

USAGE:
  if _, err := engine.ComputeRange(ref, cfg); engine.IsConfigError(err) {
      // 400, not 500
  }

SEE ALSO:
  - config.go: RuleConfig.Validate produces these
  - period.go: ComputeRange/Shift produce these
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownPeriodType is returned for a period type not in the
	// supported set (weekly, biweekly, semimonthly, monthly).
	ErrUnknownPeriodType = errors.New("unknown period type")

	// ErrUnknownOvertimeRule is returned for an overtime rule not in the
	// supported set (none, daily, weekly, both).
	ErrUnknownOvertimeRule = errors.New("unknown overtime rule")

	// ErrUnknownDirection is returned for a shift direction other than
	// previous, next, or current.
	ErrUnknownDirection = errors.New("unknown shift direction")

	// ErrMissingAnchor is returned when a biweekly config has no anchor
	// date. Biweekly boundaries are meaningless without one.
	ErrMissingAnchor = errors.New("biweekly period requires an anchor date")

	// ErrMissingThreshold is returned when the overtime rule requires a
	// threshold that is not set.
	ErrMissingThreshold = errors.New("overtime rule requires a threshold")

	// ErrInvalidThreshold is returned for non-positive thresholds or a
	// doubletime threshold at or below the daily threshold.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidWeekStart is returned for a week start day outside 0-6.
	ErrInvalidWeekStart = errors.New("week start day must be 0 (Sunday) through 6 (Saturday)")

	// ErrInvalidSemiMonthCut is returned for a semimonthly cut day that
	// cannot exist in every month.
	ErrInvalidSemiMonthCut = errors.New("semimonthly cut day must be between 1 and 27")

	// ErrInvalidMonthlyCut is returned when a monthly config carries a
	// cut day other than the 1st. Monthly periods are whole calendar
	// months.
	ErrInvalidMonthlyCut = errors.New("monthly periods start on the 1st")

	// ErrDuplicatePunchID is returned by punch stores when an appended
	// punch reuses an existing id. Ids must round-trip exactly to support
	// edit/delete of a specific punch.
	ErrDuplicatePunchID = errors.New("duplicate punch id")

	// ErrPunchNotFound is returned by punch stores for edits or deletes
	// addressing an id that does not exist.
	ErrPunchNotFound = errors.New("punch not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError reports an internally inconsistent RuleConfig. It always
// wraps one of the sentinel errors above.
type ConfigError struct {
	Field  string
	Reason error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rule config: %s: %v", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Reason }

func configErr(field string, reason error) error {
	return &ConfigError{Field: field, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError reports whether err is a configuration error. Config
// errors are client errors: the input policy is wrong, not the engine.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
