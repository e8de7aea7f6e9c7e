/*
classify.go - Regular/overtime/doubletime classification

PURPOSE:
  Splits each day's total hours into the three payroll buckets under the
  configured rule, then rolls the split up per aligned week and per pay
  period. This is the calculation payroll dollars ride on, so the order
  of operations is fixed and fully deterministic.

DAILY SPLIT (rule DAILY or BOTH), per day:
  1. Hours above the doubletime threshold (if set) are doubletime.
  2. Hours between the daily threshold and the doubletime threshold
     (or all excess above daily, with no doubletime threshold) are
     overtime.
  3. The remainder, up to the daily threshold, is regular.

WEEKLY CAP (rule WEEKLY or BOTH):
  After any daily split, each aligned week's regular hours above the
  weekly threshold are reclassified to overtime, taken from the LAST days
  of the week first. Earlier-in-week hours stay regular. This is a stable
  order-preserving reallocation, not a proportional one - the canonical,
  testable rule chosen over the original system's inconsistent tie-break.

ROUNDING:
  Session hours arrive at 2-decimal precision; every total here is an
  exact decimal sum of those components. Nothing is re-rounded, so long
  addition chains cannot drift by cents.

SEE ALSO:
  - sessions.go: Produces the day buckets consumed here
  - config.go: Rule and threshold semantics
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// SUMMARY - Classification output
// =============================================================================

// PeriodTotals is the three-bucket rollup across every classified day.
type PeriodTotals struct {
	TotalHours      Hours
	RegularHours    Hours
	OvertimeHours   Hours
	DoubletimeHours Hours
}

// Summary is the full classification result: per-day splits, aligned-week
// rollups, and period totals.
type Summary struct {
	Days   []DayBucket
	Weeks  []WeekBucket
	Totals PeriodTotals
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classify splits each day's hours into regular/overtime/doubletime under
// cfg and produces weekly rollups and period totals. The input buckets are
// not modified; classified copies are returned.
//
// A ConfigError fails the whole call with no partial result. Data
// anomalies (exception sessions) never fail classification - their zero
// hours simply participate in the totals.
func Classify(dayBuckets []DayBucket, cfg RuleConfig) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}

	days := make([]DayBucket, len(dayBuckets))
	copy(days, dayBuckets)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	dailySplit := cfg.Rule == RuleDaily || cfg.Rule == RuleBoth
	weeklyCap := cfg.Rule == RuleWeekly || cfg.Rule == RuleBoth

	for i := range days {
		if dailySplit {
			splitDay(&days[i], cfg)
		} else {
			days[i].RegularHours = days[i].TotalHours
			days[i].OvertimeHours = ZeroHours()
			days[i].DoubletimeHours = ZeroHours()
		}
	}

	if weeklyCap {
		applyWeeklyCap(days, *cfg.WeeklyThresholdHours, cfg.WeekStartDay)
	}

	summary := Summary{
		Days:  days,
		Weeks: rollupWeeks(days, cfg.WeekStartDay),
	}
	for _, d := range days {
		summary.Totals.TotalHours = summary.Totals.TotalHours.Add(d.TotalHours)
		summary.Totals.RegularHours = summary.Totals.RegularHours.Add(d.RegularHours)
		summary.Totals.OvertimeHours = summary.Totals.OvertimeHours.Add(d.OvertimeHours)
		summary.Totals.DoubletimeHours = summary.Totals.DoubletimeHours.Add(d.DoubletimeHours)
	}
	return summary, nil
}

// splitDay applies the daily threshold split in the fixed order:
// doubletime off the top, then overtime, then regular.
func splitDay(day *DayBucket, cfg RuleConfig) {
	total := day.TotalHours
	daily := *cfg.DailyThresholdHours

	doubletime := ZeroHours()
	if cfg.DoubletimeDailyThresholdHours != nil {
		if excess := total.Sub(*cfg.DoubletimeDailyThresholdHours); excess.IsPositive() {
			doubletime = excess
		}
	}

	overtime := ZeroHours()
	if excess := total.Sub(doubletime).Sub(daily); excess.IsPositive() {
		overtime = excess
	}

	day.DoubletimeHours = doubletime
	day.OvertimeHours = overtime
	day.RegularHours = total.Sub(overtime).Sub(doubletime)
}

// applyWeeklyCap reclassifies regular hours above the weekly threshold
// into overtime, one aligned week at a time, taking hours from the last
// days of the week first. days must be sorted by date.
func applyWeeklyCap(days []DayBucket, threshold Hours, weekStartDay int) {
	for _, week := range weekIndexes(days, weekStartDay) {
		weekRegular := ZeroHours()
		for _, i := range week {
			weekRegular = weekRegular.Add(days[i].RegularHours)
		}

		excess := weekRegular.Sub(threshold)
		if !excess.IsPositive() {
			continue
		}

		// Reverse chronological walk: later days convert first.
		for j := len(week) - 1; j >= 0 && excess.IsPositive(); j-- {
			d := &days[week[j]]
			move := decimalMin(d.RegularHours, excess)
			if !move.IsPositive() {
				continue
			}
			d.RegularHours = d.RegularHours.Sub(move)
			d.OvertimeHours = d.OvertimeHours.Add(move)
			excess = excess.Sub(move)
		}
	}
}

// weekIndexes groups day indexes by aligned week start, in week order.
// days must be sorted by date, so each group is chronological.
func weekIndexes(days []DayBucket, weekStartDay int) [][]int {
	byWeek := make(map[Date][]int)
	var starts []Date
	for i, d := range days {
		start := RollBackToWeekday(d.Date, time.Weekday(weekStartDay))
		if _, seen := byWeek[start]; !seen {
			starts = append(starts, start)
		}
		byWeek[start] = append(byWeek[start], i)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	weeks := make([][]int, 0, len(starts))
	for _, s := range starts {
		weeks = append(weeks, byWeek[s])
	}
	return weeks
}

// rollupWeeks aggregates classified days into aligned week buckets.
func rollupWeeks(days []DayBucket, weekStartDay int) []WeekBucket {
	var weeks []WeekBucket
	for _, week := range weekIndexes(days, weekStartDay) {
		start := RollBackToWeekday(days[week[0]].Date, time.Weekday(weekStartDay))
		wb := WeekBucket{Start: start, End: start.AddDays(6)}
		for _, i := range week {
			d := days[i]
			wb.Days = append(wb.Days, d.Date)
			wb.TotalHours = wb.TotalHours.Add(d.TotalHours)
			wb.RegularHours = wb.RegularHours.Add(d.RegularHours)
			wb.OvertimeHours = wb.OvertimeHours.Add(d.OvertimeHours)
			wb.DoubletimeHours = wb.DoubletimeHours.Add(d.DoubletimeHours)
		}
		weeks = append(weeks, wb)
	}
	return weeks
}

func decimalMin(a, b Hours) Hours {
	if a.LessThan(b) {
		return a
	}
	return b
}
