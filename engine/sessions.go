/*
sessions.go - Punch pairing and day bucket construction

PURPOSE:
  Turns a raw punch list into per-day ordered IN/OUT sessions. This is the
  single source of truth for punch pairing: every consumer (summary
  tables, exporters, payroll) sees the same sessions, instead of each
  screen re-deriving pairs its own way.

ALGORITHM:
  1. Sort punches by timestamp (ties broken by id, for determinism).
  2. Group by the punch's own local calendar date.
  3. Walk each day holding a "pending IN":
     - IN with no pending IN:  hold it
     - IN with a pending IN:   close the pending one as OPEN_IN (0h),
                               hold the new one
     - OUT with a pending IN:  close a completed session
     - OUT with no pending IN: emit ORPHAN_OUT (0h)
     A pending IN left at end of day closes as a trailing OPEN_IN.

  Kiosks lose network and employees double-punch, so none of these shapes
  abort the build - anomalies become exception flags the UI can render
  next to the totals.

NUMERIC SEMANTICS:
  Session hours are wall-clock elapsed time rounded to 2 decimal places.
  Negative spans (clock skew in source data) clamp to 0.

SEE ALSO:
  - classify.go: Consumes the day buckets built here
  - repair.go: Suggests fixes for the exceptions flagged here
*/
package engine

import (
	"sort"
)

// =============================================================================
// SESSION BUILDER
// =============================================================================

// BuildSessions groups punches into per-day sessions and returns day
// buckets ordered by date. It is a pure function of its input: the punch
// list may arrive in any order, and the input slice is not modified.
//
// The returned buckets carry TotalHours only; regular/overtime/doubletime
// stay zero until Classify runs.
func BuildSessions(punches []PunchEvent) []DayBucket {
	sorted := make([]PunchEvent, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// Group by the punch's local calendar day, preserving sort order
	// within each day.
	byDay := make(map[Date][]PunchEvent)
	var order []Date
	for _, p := range sorted {
		day := DateOf(p.Timestamp)
		if _, seen := byDay[day]; !seen {
			order = append(order, day)
		}
		byDay[day] = append(byDay[day], p)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	buckets := make([]DayBucket, 0, len(order))
	for _, day := range order {
		buckets = append(buckets, buildDay(day, byDay[day]))
	}
	return buckets
}

// buildDay pairs one day's sorted punches into sessions.
func buildDay(day Date, punches []PunchEvent) DayBucket {
	bucket := DayBucket{Date: day}

	var pending *PunchEvent
	for i := range punches {
		p := punches[i]
		switch p.Type {
		case PunchIn:
			if pending != nil {
				// Two INs in a row: the earlier one never closed.
				bucket.Sessions = append(bucket.Sessions, openInSession(day, *pending))
			}
			pending = &punches[i]

		case PunchOut:
			if pending == nil {
				bucket.Sessions = append(bucket.Sessions, Session{
					Date:       day,
					OutID:      p.ID,
					EmployeeID: p.EmployeeID,
					LocationID: p.LocationID,
					Out:        p.Timestamp,
					Hours:      ZeroHours(),
					Exception:  ExceptionOrphanOut,
				})
				continue
			}
			bucket.Sessions = append(bucket.Sessions, Session{
				Date:       day,
				InID:       pending.ID,
				OutID:      p.ID,
				EmployeeID: p.EmployeeID,
				LocationID: p.LocationID,
				In:         pending.Timestamp,
				Out:        p.Timestamp,
				Hours:      hoursBetween(pending.Timestamp, p.Timestamp),
				Exception:  ExceptionNone,
			})
			pending = nil
		}
	}
	if pending != nil {
		bucket.Sessions = append(bucket.Sessions, openInSession(day, *pending))
	}

	total := ZeroHours()
	for _, s := range bucket.Sessions {
		total = total.Add(s.Hours)
		if s.Exception != ExceptionNone {
			bucket.HasException = true
		}
	}
	bucket.TotalHours = total
	return bucket
}

func openInSession(day Date, in PunchEvent) Session {
	return Session{
		Date:       day,
		InID:       in.ID,
		EmployeeID: in.EmployeeID,
		LocationID: in.LocationID,
		In:         in.Timestamp,
		Hours:      ZeroHours(),
		Exception:  ExceptionOpenIn,
	}
}
