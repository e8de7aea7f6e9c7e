/*
timecard.go - Aggregation orchestration

PURPOSE:
  The one-call entry point the hosting service uses per employee per
  period: validate the rule config, pair punches into sessions, classify
  hours, and attach repair suggestions for anything flagged.

CONTROL FLOW (the caller owns the I/O on either side):
  ComputeRange -> caller fetches punches for the range -> BuildTimecard

CONCURRENCY:
  Everything here is a pure function over fully-materialized inputs. No
  shared state, no suspension points - safe to call concurrently for
  different employees or periods. The caller must hand in an immutable
  snapshot of punches for the duration of one call.

ERROR SEMANTICS:
  ConfigError is a hard failure with no partial result. Punch anomalies
  never block: a timecard with a missing OUT still reports every other
  hour, flagged, so the UI can show "87.5 regular hours, 1 missing punch"
  rather than nothing.
*/
package engine

// Timecard is the complete aggregation result for one employee over one
// span of punches.
type Timecard struct {
	Days    []DayBucket
	Weeks   []WeekBucket
	Totals  PeriodTotals
	Repairs []Repair
}

// ExceptionCount returns the number of flagged sessions across all days.
func (t *Timecard) ExceptionCount() int {
	n := 0
	for _, d := range t.Days {
		for _, s := range d.Sessions {
			if s.Exception != ExceptionNone {
				n++
			}
		}
	}
	return n
}

// BuildTimecard aggregates one employee's punches under cfg. The punch
// list may arrive in any order and is not modified.
func BuildTimecard(punches []PunchEvent, cfg RuleConfig) (*Timecard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	days := BuildSessions(punches)
	summary, err := Classify(days, cfg)
	if err != nil {
		return nil, err
	}

	return &Timecard{
		Days:    summary.Days,
		Weeks:   summary.Weeks,
		Totals:  summary.Totals,
		Repairs: SuggestRepairs(summary.Days, cfg),
	}, nil
}
