/*
repair.go - Suggested fixes for inconsistent punch data

PURPOSE:
  For every exception session the builder flags, suggest the single punch
  mutation that would repair it: a synthetic OUT one shift-length after an
  unmatched IN, or a synthetic IN one shift-length before an orphan OUT.

  Suggestions are advisory data only. Applying one is an external write
  against the punch store, shaped so the caller can do it with a single
  request; the engine itself never mutates punches.

SEE ALSO:
  - sessions.go: Flags the exceptions repaired here
  - api/handlers.go: Applies accepted suggestions via the store
*/
package engine

import "time"

// =============================================================================
// PUNCH MUTATIONS - Payloads for the external punch store
// =============================================================================

type MutationType string

const (
	MutationAddIn  MutationType = "ADD_IN"
	MutationAddOut MutationType = "ADD_OUT"
	MutationDelete MutationType = "DELETE"
)

// PunchMutation is a single punch-store write request. ADD_* mutations
// carry employee, location, and timestamp; DELETE carries the punch id.
type PunchMutation struct {
	Type       MutationType
	EmployeeID EmployeeID
	LocationID LocationID
	Timestamp  time.Time
	PunchID    PunchID
}

// Repair ties a suggested mutation to the session it would fix, so the UI
// can render the suggestion next to the flagged row.
type Repair struct {
	Date      Date
	Exception ExceptionTag
	SourceID  PunchID // the unmatched punch
	Suggested PunchMutation
}

// =============================================================================
// SUGGESTION
// =============================================================================

// SuggestRepairs scans classified or unclassified day buckets and returns
// one suggested repair per exception session. The synthetic timestamp
// assumes the configured default shift length (8 hours unless overridden).
func SuggestRepairs(days []DayBucket, cfg RuleConfig) []Repair {
	shift := time.Duration(cfg.shiftLength()) * time.Hour

	var repairs []Repair
	for _, day := range days {
		if !day.HasException {
			continue
		}
		for _, s := range day.Sessions {
			switch s.Exception {
			case ExceptionOpenIn:
				repairs = append(repairs, Repair{
					Date:      day.Date,
					Exception: ExceptionOpenIn,
					SourceID:  s.InID,
					Suggested: PunchMutation{
						Type:       MutationAddOut,
						EmployeeID: s.EmployeeID,
						LocationID: s.LocationID,
						Timestamp:  s.In.Add(shift),
					},
				})
			case ExceptionOrphanOut:
				repairs = append(repairs, Repair{
					Date:      day.Date,
					Exception: ExceptionOrphanOut,
					SourceID:  s.OutID,
					Suggested: PunchMutation{
						Type:       MutationAddIn,
						EmployeeID: s.EmployeeID,
						LocationID: s.LocationID,
						Timestamp:  s.Out.Add(-shift),
					},
				})
			}
		}
	}
	return repairs
}

// DeleteMutation shapes a delete request for an exact punch, for callers
// that resolve an exception by removing the stray punch instead of
// completing the pair.
func DeleteMutation(id PunchID) PunchMutation {
	return PunchMutation{Type: MutationDelete, PunchID: id}
}
