package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timecard-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// workedDay builds an unclassified day bucket with the given total hours.
func workedDay(d engine.Date, hours float64) engine.DayBucket {
	in := time.Date(d.Year(), d.Month(), d.Day(), 8, 0, 0, 0, time.UTC)
	out := in.Add(time.Duration(hours * float64(time.Hour)))
	return engine.DayBucket{
		Date: d,
		Sessions: []engine.Session{{
			Date:       d,
			InID:       engine.PunchID("in-" + d.String()),
			OutID:      engine.PunchID("out-" + d.String()),
			EmployeeID: "emp-1",
			In:         in,
			Out:        out,
			Hours:      engine.NewHours(hours),
			Exception:  engine.ExceptionNone,
		}},
		TotalHours: engine.NewHours(hours),
	}
}

func dailyConfig(daily float64) engine.RuleConfig {
	return engine.RuleConfig{
		Rule:                engine.RuleDaily,
		DailyThresholdHours: engine.Threshold(daily),
		PeriodType:          engine.PeriodWeekly,
	}
}

func dailyDoubletimeConfig(daily, doubletime float64) engine.RuleConfig {
	cfg := dailyConfig(daily)
	cfg.DoubletimeDailyThresholdHours = engine.Threshold(doubletime)
	return cfg
}

func weeklyRuleConfig(weekly float64, weekStart int) engine.RuleConfig {
	return engine.RuleConfig{
		Rule:                 engine.RuleWeekly,
		WeeklyThresholdHours: engine.Threshold(weekly),
		WeekStartDay:         weekStart,
		PeriodType:           engine.PeriodWeekly,
	}
}

func assertHours(t *testing.T, want float64, got engine.Hours, label string) {
	t.Helper()
	assert.True(t, got.Equal(engine.NewHours(want)), "%s: want %v, got %s", label, want, got)
}

// =============================================================================
// DAILY RULE
// =============================================================================

func TestClassify_Daily_UnderThresholdAllRegular(t *testing.T) {
	// GIVEN: an 8-hour day with dailyThreshold=8
	// THEN: regular=8, overtime=0, doubletime=0

	day := workedDay(date(2025, time.March, 10), 8)
	summary, err := engine.Classify([]engine.DayBucket{day}, dailyConfig(8))
	require.NoError(t, err)

	d := summary.Days[0]
	assertHours(t, 8, d.RegularHours, "regular")
	assertHours(t, 0, d.OvertimeHours, "overtime")
	assertHours(t, 0, d.DoubletimeHours, "doubletime")
}

func TestClassify_Daily_ExcessBecomesOvertime(t *testing.T) {
	// GIVEN: 11 hours with dailyThreshold=8 and doubletimeThreshold=12
	// THEN: regular=8, overtime=3, doubletime=0

	day := workedDay(date(2025, time.March, 10), 11)
	summary, err := engine.Classify([]engine.DayBucket{day}, dailyDoubletimeConfig(8, 12))
	require.NoError(t, err)

	d := summary.Days[0]
	assertHours(t, 8, d.RegularHours, "regular")
	assertHours(t, 3, d.OvertimeHours, "overtime")
	assertHours(t, 0, d.DoubletimeHours, "doubletime")
}

func TestClassify_Daily_DoubletimeOffTheTop(t *testing.T) {
	// GIVEN: a 14-hour day with thresholds 8/12
	// THEN: regular=8, overtime=4 (8..12), doubletime=2 (12..14)

	day := workedDay(date(2025, time.March, 10), 14)
	summary, err := engine.Classify([]engine.DayBucket{day}, dailyDoubletimeConfig(8, 12))
	require.NoError(t, err)

	d := summary.Days[0]
	assertHours(t, 8, d.RegularHours, "regular")
	assertHours(t, 4, d.OvertimeHours, "overtime")
	assertHours(t, 2, d.DoubletimeHours, "doubletime")
}

func TestClassify_Daily_NoDoubletimeThresholdAllExcessIsOvertime(t *testing.T) {
	day := workedDay(date(2025, time.March, 10), 14)
	summary, err := engine.Classify([]engine.DayBucket{day}, dailyConfig(8))
	require.NoError(t, err)

	d := summary.Days[0]
	assertHours(t, 8, d.RegularHours, "regular")
	assertHours(t, 6, d.OvertimeHours, "overtime")
	assertHours(t, 0, d.DoubletimeHours, "doubletime")
}

func TestClassify_FractionalHoursSplitExactly(t *testing.T) {
	// 10.25 hours at threshold 8: 8 regular, 2.25 overtime - decimal
	// split, no float drift.
	day := workedDay(date(2025, time.March, 10), 10.25)
	summary, err := engine.Classify([]engine.DayBucket{day}, dailyConfig(8))
	require.NoError(t, err)

	d := summary.Days[0]
	assertHours(t, 8, d.RegularHours, "regular")
	assertHours(t, 2.25, d.OvertimeHours, "overtime")
}

// =============================================================================
// WEEKLY RULE
// =============================================================================

func TestClassify_Weekly_UnderThresholdNoOvertime(t *testing.T) {
	// GIVEN: 5 days of 8 hours, weeklyThreshold=40, week starts Sunday
	// THEN: zero weekly overtime

	var days []engine.DayBucket
	for i := 0; i < 5; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 8)) // Mon-Fri
	}

	summary, err := engine.Classify(days, weeklyRuleConfig(40, 0))
	require.NoError(t, err)

	assertHours(t, 40, summary.Totals.RegularHours, "regular")
	assertHours(t, 0, summary.Totals.OvertimeHours, "overtime")
}

func TestClassify_Weekly_SixthDayReclassified(t *testing.T) {
	// GIVEN: a 6th 8-hour day pushing the week to 48
	// THEN: the 6th day's hours become overtime; the first 5 days stay
	// regular (reallocation from the end of the week backward)

	var days []engine.DayBucket
	for i := 0; i < 6; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 8)) // Mon-Sat
	}

	summary, err := engine.Classify(days, weeklyRuleConfig(40, 0))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assertHours(t, 8, summary.Days[i].RegularHours, "early day regular")
		assertHours(t, 0, summary.Days[i].OvertimeHours, "early day overtime")
	}
	assertHours(t, 0, summary.Days[5].RegularHours, "sixth day regular")
	assertHours(t, 8, summary.Days[5].OvertimeHours, "sixth day overtime")
}

func TestClassify_Weekly_PartialReclassificationFromEnd(t *testing.T) {
	// 44 regular hours against a 40 cap: only 4 move, all taken from the
	// last day.
	days := []engine.DayBucket{
		workedDay(date(2025, time.March, 10), 9),
		workedDay(date(2025, time.March, 11), 9),
		workedDay(date(2025, time.March, 12), 9),
		workedDay(date(2025, time.March, 13), 9),
		workedDay(date(2025, time.March, 14), 8),
	}

	summary, err := engine.Classify(days, weeklyRuleConfig(40, 0))
	require.NoError(t, err)

	assertHours(t, 9, summary.Days[0].RegularHours, "Monday untouched")
	assertHours(t, 4, summary.Days[4].RegularHours, "Friday regular")
	assertHours(t, 4, summary.Days[4].OvertimeHours, "Friday overtime")
	assertHours(t, 4, summary.Totals.OvertimeHours, "total overtime")
}

func TestClassify_Weekly_AlignmentSplitsWeeks(t *testing.T) {
	// Mon 2025-03-10 through Sun 2025-03-16, 8h each (56h), with weeks
	// aligned to Monday: one aligned week, 16h over the 40 cap. With
	// Sunday alignment the Sunday lands in the NEXT week and stays
	// regular.
	var days []engine.DayBucket
	for i := 0; i < 7; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 8))
	}

	mondayAligned, err := engine.Classify(days, weeklyRuleConfig(40, 1))
	require.NoError(t, err)
	assertHours(t, 16, mondayAligned.Totals.OvertimeHours, "monday-aligned overtime")

	sundayAligned, err := engine.Classify(days, weeklyRuleConfig(40, 0))
	require.NoError(t, err)
	assertHours(t, 8, sundayAligned.Totals.OvertimeHours, "sunday-aligned overtime")
	last := sundayAligned.Days[6]
	assertHours(t, 8, last.RegularHours, "next-week Sunday stays regular")
}

// =============================================================================
// BOTH / NONE
// =============================================================================

func TestClassify_Both_DailyThenWeeklyCap(t *testing.T) {
	// GIVEN: 5 days of 10 hours, thresholds daily=8 weekly=40
	// Daily split leaves 8 regular + 2 OT per day (40 regular, 10 OT).
	// The weekly cap then finds exactly 40 regular: nothing more moves.
	var days []engine.DayBucket
	for i := 0; i < 5; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 10))
	}

	cfg := engine.RuleConfig{
		Rule:                 engine.RuleBoth,
		DailyThresholdHours:  engine.Threshold(8),
		WeeklyThresholdHours: engine.Threshold(40),
		WeekStartDay:         0,
		PeriodType:           engine.PeriodWeekly,
	}

	summary, err := engine.Classify(days, cfg)
	require.NoError(t, err)

	assertHours(t, 40, summary.Totals.RegularHours, "regular")
	assertHours(t, 10, summary.Totals.OvertimeHours, "overtime")
}

func TestClassify_Both_WeeklyCapBitesAfterDailySplit(t *testing.T) {
	// 6 days of 9 hours: daily split gives 48 regular + 6 OT. The weekly
	// cap moves 8 more regular hours to overtime, from the end backward.
	var days []engine.DayBucket
	for i := 0; i < 6; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 9))
	}

	cfg := engine.RuleConfig{
		Rule:                 engine.RuleBoth,
		DailyThresholdHours:  engine.Threshold(8),
		WeeklyThresholdHours: engine.Threshold(40),
		WeekStartDay:         0,
		PeriodType:           engine.PeriodWeekly,
	}

	summary, err := engine.Classify(days, cfg)
	require.NoError(t, err)

	assertHours(t, 40, summary.Totals.RegularHours, "regular")
	assertHours(t, 14, summary.Totals.OvertimeHours, "overtime")
	// Saturday lost all 8 regular; Friday stays whole.
	assertHours(t, 0, summary.Days[5].RegularHours, "saturday regular")
	assertHours(t, 9, summary.Days[5].OvertimeHours, "saturday overtime")
	assertHours(t, 8, summary.Days[4].RegularHours, "friday regular")
}

func TestClassify_None_AllRegular(t *testing.T) {
	day := workedDay(date(2025, time.March, 10), 16)
	summary, err := engine.Classify([]engine.DayBucket{day}, engine.RuleConfig{
		Rule:       engine.RuleNone,
		PeriodType: engine.PeriodWeekly,
	})
	require.NoError(t, err)

	assertHours(t, 16, summary.Days[0].RegularHours, "regular")
	assertHours(t, 0, summary.Days[0].OvertimeHours, "overtime")
}

// =============================================================================
// INVARIANTS & ROLLUPS
// =============================================================================

func TestClassify_BucketSplitSumsToTotal(t *testing.T) {
	// SPEC PROPERTY: regular + overtime + doubletime == total for every
	// day, and totals are exact sums of their components.
	days := []engine.DayBucket{
		workedDay(date(2025, time.March, 10), 13.37),
		workedDay(date(2025, time.March, 11), 7.99),
		workedDay(date(2025, time.March, 12), 12.01),
	}

	summary, err := engine.Classify(days, dailyDoubletimeConfig(8, 12))
	require.NoError(t, err)

	for _, d := range summary.Days {
		split := d.RegularHours.Add(d.OvertimeHours).Add(d.DoubletimeHours)
		assert.True(t, split.Equal(d.TotalHours), "%s: %s != %s", d.Date, split, d.TotalHours)
	}

	sum := engine.ZeroHours()
	for _, d := range summary.Days {
		sum = sum.Add(d.TotalHours)
	}
	assert.True(t, sum.Equal(summary.Totals.TotalHours))
}

func TestClassify_WeekRollupsMatchDays(t *testing.T) {
	var days []engine.DayBucket
	for i := 0; i < 10; i++ {
		days = append(days, workedDay(date(2025, time.March, 10+i), 8))
	}

	summary, err := engine.Classify(days, weeklyRuleConfig(40, 1))
	require.NoError(t, err)
	require.Len(t, summary.Weeks, 2)

	weekSum := engine.ZeroHours()
	for _, w := range summary.Weeks {
		weekSum = weekSum.Add(w.TotalHours)
	}
	assert.True(t, weekSum.Equal(summary.Totals.TotalHours))
	assert.Equal(t, date(2025, time.March, 10), summary.Weeks[0].Start)
	assert.Equal(t, date(2025, time.March, 16), summary.Weeks[0].End)
}

func TestClassify_ExceptionDaysParticipateWithZeroHours(t *testing.T) {
	// A day holding only an OPEN_IN session classifies as zero across all
	// buckets but still appears in the output.
	flagged := engine.DayBucket{
		Date: date(2025, time.March, 10),
		Sessions: []engine.Session{{
			Date:      date(2025, time.March, 10),
			InID:      "p1",
			Hours:     engine.ZeroHours(),
			Exception: engine.ExceptionOpenIn,
		}},
		TotalHours:   engine.ZeroHours(),
		HasException: true,
	}

	summary, err := engine.Classify([]engine.DayBucket{flagged, workedDay(date(2025, time.March, 11), 8)}, dailyConfig(8))
	require.NoError(t, err)

	require.Len(t, summary.Days, 2)
	assert.True(t, summary.Days[0].HasException)
	assertHours(t, 0, summary.Days[0].TotalHours, "flagged day total")
	assertHours(t, 8, summary.Totals.RegularHours, "period regular")
}

// =============================================================================
// CONFIG VALIDATION
// =============================================================================

func TestClassify_ConfigErrors(t *testing.T) {
	day := workedDay(date(2025, time.March, 10), 8)

	cases := []struct {
		name string
		cfg  engine.RuleConfig
		want error
	}{
		{
			name: "daily rule without threshold",
			cfg:  engine.RuleConfig{Rule: engine.RuleDaily, PeriodType: engine.PeriodWeekly},
			want: engine.ErrMissingThreshold,
		},
		{
			name: "weekly rule without threshold",
			cfg:  engine.RuleConfig{Rule: engine.RuleWeekly, PeriodType: engine.PeriodWeekly},
			want: engine.ErrMissingThreshold,
		},
		{
			name: "doubletime at or below daily threshold",
			cfg: engine.RuleConfig{
				Rule:                          engine.RuleDaily,
				DailyThresholdHours:           engine.Threshold(8),
				DoubletimeDailyThresholdHours: engine.Threshold(8),
				PeriodType:                    engine.PeriodWeekly,
			},
			want: engine.ErrInvalidThreshold,
		},
		{
			name: "unknown rule",
			cfg:  engine.RuleConfig{Rule: "TRIPLETIME", PeriodType: engine.PeriodWeekly},
			want: engine.ErrUnknownOvertimeRule,
		},
		{
			name: "week start out of range",
			cfg:  engine.RuleConfig{Rule: engine.RuleNone, WeekStartDay: 7, PeriodType: engine.PeriodWeekly},
			want: engine.ErrInvalidWeekStart,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Classify([]engine.DayBucket{day}, tc.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, engine.IsConfigError(err))
		})
	}
}
