/*
Package factory provides JSON to RuleConfig conversion.

PURPOSE:
  Converts JSON ruleset definitions into engine.RuleConfig. This enables
  overtime policy configuration without code changes - an admin edits the
  location's settings in the dashboard, the JSON lands in the settings
  store, and the factory turns it into a validated config on read.

WHY JSON?
  - Non-developers can modify rules
  - Easy integration with the admin UI settings screen
  - Database storage of per-location configs

JSON SCHEMA:
  {
    "rule": "both",
    "daily_threshold_hours": 8,
    "weekly_threshold_hours": 40,
    "doubletime_daily_threshold_hours": 12,
    "week_start_day": 0,
    "period_type": "biweekly",
    "biweekly_anchor_date": "2025-01-06",
    "default_shift_hours": 8
  }

KEY FEATURES:
  - Sets conventional defaults (week starts Sunday, mid-month cut 15)
  - Case-insensitive enums
  - Every parsed config passes engine validation before it is returned:
    a stored ruleset that no longer validates fails loudly here rather
    than producing wrong pay-period boundaries downstream

USAGE:
  jsonStr, _ := store.GetRuleset(ctx, locationID)
  cfg, err := factory.ParseRuleset(jsonStr)

  // Or start from a preset
  cfg, _ := factory.ParseRuleset(factory.CaliforniaRulesJSON("2025-01-06"))

SEE ALSO:
  - engine/config.go: RuleConfig and validation
  - api/handlers.go: Settings endpoints round-tripping this JSON
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/timecard-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RulesetJSON is the JSON representation of a location's overtime and
// pay-period policy.
type RulesetJSON struct {
	Rule                          string   `json:"rule"`
	DailyThresholdHours           *float64 `json:"daily_threshold_hours,omitempty"`
	WeeklyThresholdHours          *float64 `json:"weekly_threshold_hours,omitempty"`
	DoubletimeDailyThresholdHours *float64 `json:"doubletime_daily_threshold_hours,omitempty"`
	WeekStartDay                  *int     `json:"week_start_day,omitempty"` // 0=Sunday..6=Saturday
	PeriodType                    string   `json:"period_type"`
	BiweeklyAnchorDate            string   `json:"biweekly_anchor_date,omitempty"` // YYYY-MM-DD
	SemiMonthCut1                 int      `json:"semi_month_cut_1,omitempty"`
	SemiMonthCut2                 int      `json:"semi_month_cut_2,omitempty"`
	MonthlyCutDay                 int      `json:"monthly_cut_day,omitempty"`
	DefaultShiftHours             int      `json:"default_shift_hours,omitempty"`
}

// =============================================================================
// RULESET FACTORY
// =============================================================================

// ParseRuleset parses a JSON string into a validated RuleConfig.
func ParseRuleset(jsonStr string) (engine.RuleConfig, error) {
	var rj RulesetJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return engine.RuleConfig{}, fmt.Errorf("failed to parse ruleset JSON: %w", err)
	}
	return FromJSON(rj)
}

// FromJSON converts RulesetJSON to a validated engine.RuleConfig.
func FromJSON(rj RulesetJSON) (engine.RuleConfig, error) {
	cfg := engine.RuleConfig{
		Rule:              engine.OvertimeRule(strings.ToUpper(rj.Rule)),
		PeriodType:        engine.PeriodType(strings.ToUpper(rj.PeriodType)),
		SemiMonthCut1:     rj.SemiMonthCut1,
		SemiMonthCut2:     rj.SemiMonthCut2,
		MonthlyCutDay:     rj.MonthlyCutDay,
		DefaultShiftHours: rj.DefaultShiftHours,
	}

	if rj.Rule == "" {
		cfg.Rule = engine.RuleNone
	}
	if rj.WeekStartDay != nil {
		cfg.WeekStartDay = *rj.WeekStartDay
	}
	if rj.DailyThresholdHours != nil {
		cfg.DailyThresholdHours = engine.Threshold(*rj.DailyThresholdHours)
	}
	if rj.WeeklyThresholdHours != nil {
		cfg.WeeklyThresholdHours = engine.Threshold(*rj.WeeklyThresholdHours)
	}
	if rj.DoubletimeDailyThresholdHours != nil {
		cfg.DoubletimeDailyThresholdHours = engine.Threshold(*rj.DoubletimeDailyThresholdHours)
	}
	if rj.BiweeklyAnchorDate != "" {
		anchor, err := engine.ParseDate(rj.BiweeklyAnchorDate)
		if err != nil {
			return engine.RuleConfig{}, fmt.Errorf("failed to parse biweekly anchor date: %w", err)
		}
		cfg.BiweeklyAnchorDate = &anchor
	}

	if err := cfg.Validate(); err != nil {
		return engine.RuleConfig{}, err
	}
	return cfg, nil
}

// ToJSON converts a RuleConfig back to its JSON representation.
func ToJSON(cfg engine.RuleConfig) RulesetJSON {
	rj := RulesetJSON{
		Rule:              strings.ToLower(string(cfg.Rule)),
		PeriodType:        strings.ToLower(string(cfg.PeriodType)),
		WeekStartDay:      intPtr(cfg.WeekStartDay),
		SemiMonthCut1:     cfg.SemiMonthCut1,
		SemiMonthCut2:     cfg.SemiMonthCut2,
		MonthlyCutDay:     cfg.MonthlyCutDay,
		DefaultShiftHours: cfg.DefaultShiftHours,
	}
	if cfg.DailyThresholdHours != nil {
		rj.DailyThresholdHours = floatPtr(*cfg.DailyThresholdHours)
	}
	if cfg.WeeklyThresholdHours != nil {
		rj.WeeklyThresholdHours = floatPtr(*cfg.WeeklyThresholdHours)
	}
	if cfg.DoubletimeDailyThresholdHours != nil {
		rj.DoubletimeDailyThresholdHours = floatPtr(*cfg.DoubletimeDailyThresholdHours)
	}
	if cfg.BiweeklyAnchorDate != nil {
		rj.BiweeklyAnchorDate = cfg.BiweeklyAnchorDate.String()
	}
	return rj
}

// =============================================================================
// COMMON RULESETS
// =============================================================================

// CaliforniaRulesJSON returns a California-style policy: daily overtime
// past 8 hours, doubletime past 12, weekly overtime past 40, biweekly
// periods anchored to the given date.
func CaliforniaRulesJSON(anchor string) string {
	return fmt.Sprintf(`{
		"rule": "both",
		"daily_threshold_hours": 8,
		"weekly_threshold_hours": 40,
		"doubletime_daily_threshold_hours": 12,
		"week_start_day": 0,
		"period_type": "biweekly",
		"biweekly_anchor_date": %q
	}`, anchor)
}

// FederalRulesJSON returns a federal FLSA-style policy: weekly overtime
// past 40 hours only, semimonthly pay periods.
func FederalRulesJSON() string {
	return `{
		"rule": "weekly",
		"weekly_threshold_hours": 40,
		"week_start_day": 0,
		"period_type": "semimonthly"
	}`
}

// NoOvertimeRulesJSON returns a policy with no overtime classification
// and monthly pay periods (typical for salaried-display locations).
func NoOvertimeRulesJSON() string {
	return `{
		"rule": "none",
		"period_type": "monthly"
	}`
}

// =============================================================================
// HELPERS
// =============================================================================

func intPtr(v int) *int { return &v }

func floatPtr(h engine.Hours) *float64 {
	f, _ := h.Float64()
	return &f
}
