/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	punch data for testing and demos. Each scenario creates a ruleset,
	employees, and a week of punches that demonstrate specific engine
	behavior.

AVAILABLE SCENARIOS:

	clean-week:      Five 8-hour days, no overtime, no exceptions
	overtime-heavy:  Long days under daily+weekly rules (OT and doubletime)
	missing-punches: Unmatched IN and OUT punches with suggested repairs
	night-shift:     Shifts crossing midnight

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the location ruleset via the factory presets
 3. Create employees
 4. Insert punches on days of the current aligned week, so the default
    timecard view (today's period) shows the data immediately

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overtime-heavy"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Store access and DTO helpers
  - factory/ruleset.go: Ruleset JSON presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/timecard-engine/engine"
	"github.com/warp/timecard-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "clean-week",
		Name:        "Clean Week",
		Description: "Five 8-hour days under federal weekly rules, no exceptions",
	},
	{
		ID:          "overtime-heavy",
		Name:        "Overtime Heavy",
		Description: "Long days under California daily+weekly rules with doubletime",
	},
	{
		ID:          "missing-punches",
		Name:        "Missing Punches",
		Description: "Unmatched IN and OUT punches with suggested repairs",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Shifts crossing midnight, split across calendar days",
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "clean-week":
		err = h.loadCleanWeekScenario(ctx)
	case "overtime-heavy":
		err = h.loadOvertimeHeavyScenario(ctx)
	case "missing-punches":
		err = h.loadMissingPunchesScenario(ctx)
	case "night-shift":
		err = h.loadNightShiftScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// ResetDatabase clears all data without loading a scenario.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadCleanWeekScenario: one employee, federal rules, five 8-hour days.
func (h *Handler) loadCleanWeekScenario(ctx context.Context) error {
	loc := engine.LocationID("loc-main")
	if err := h.Store.SaveRuleset(ctx, loc, factory.FederalRulesJSON()); err != nil {
		return err
	}

	emp := engine.Employee{ID: "emp-alice", Name: "Alice Chen", LocationID: loc}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	week := currentWeekMonday()
	for i := 0; i < 5; i++ {
		day := week.AddDays(i)
		if err := h.insertShift(ctx, emp, day, 9, 0, 17, 0); err != nil {
			return err
		}
	}
	return nil
}

// loadOvertimeHeavyScenario: California rules, four 10-hour days, one
// 14-hour day (doubletime), and a Saturday pushing past the weekly cap.
func (h *Handler) loadOvertimeHeavyScenario(ctx context.Context) error {
	loc := engine.LocationID("loc-west")
	anchor := currentWeekMonday().String()
	if err := h.Store.SaveRuleset(ctx, loc, factory.CaliforniaRulesJSON(anchor)); err != nil {
		return err
	}

	emp := engine.Employee{ID: "emp-bruno", Name: "Bruno Ferreira", LocationID: loc}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	week := currentWeekMonday()
	for i := 0; i < 4; i++ {
		if err := h.insertShift(ctx, emp, week.AddDays(i), 7, 0, 17, 0); err != nil {
			return err
		}
	}
	// 14-hour Friday crosses the doubletime threshold
	if err := h.insertShift(ctx, emp, week.AddDays(4), 6, 0, 20, 0); err != nil {
		return err
	}
	// Saturday work lands entirely over the 40-hour weekly cap
	return h.insertShift(ctx, emp, week.AddDays(5), 8, 0, 14, 0)
}

// loadMissingPunchesScenario: clean days bracketing a forgotten clock-out
// and a forgotten clock-in.
func (h *Handler) loadMissingPunchesScenario(ctx context.Context) error {
	loc := engine.LocationID("loc-main")
	if err := h.Store.SaveRuleset(ctx, loc, factory.FederalRulesJSON()); err != nil {
		return err
	}

	emp := engine.Employee{ID: "emp-carla", Name: "Carla Novak", LocationID: loc}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	week := currentWeekMonday()
	if err := h.insertShift(ctx, emp, week, 9, 0, 17, 0); err != nil {
		return err
	}
	// Tuesday: clocked in, never clocked out
	if err := h.insertPunch(ctx, emp, week.AddDays(1), 9, 0, engine.PunchIn); err != nil {
		return err
	}
	// Wednesday: clocked out, never clocked in
	if err := h.insertPunch(ctx, emp, week.AddDays(2), 17, 30, engine.PunchOut); err != nil {
		return err
	}
	return h.insertShift(ctx, emp, week.AddDays(3), 9, 0, 17, 0)
}

// loadNightShiftScenario: 22:00-06:00 shifts. Each crossing is flagged on
// both sides of midnight, demonstrating per-day session grouping.
func (h *Handler) loadNightShiftScenario(ctx context.Context) error {
	loc := engine.LocationID("loc-plant")
	if err := h.Store.SaveRuleset(ctx, loc, factory.NoOvertimeRulesJSON()); err != nil {
		return err
	}

	emp := engine.Employee{ID: "emp-dmitri", Name: "Dmitri Volkov", LocationID: loc}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	week := currentWeekMonday()
	for i := 0; i < 3; i++ {
		day := week.AddDays(i)
		if err := h.insertPunch(ctx, emp, day, 22, 0, engine.PunchIn); err != nil {
			return err
		}
		if err := h.insertPunch(ctx, emp, day.AddDays(1), 6, 0, engine.PunchOut); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LOADER HELPERS
// =============================================================================

// currentWeekMonday returns the Monday of the week containing today, so
// scenario data always lands in the default timecard view.
func currentWeekMonday() engine.Date {
	return engine.RollBackToWeekday(engine.Today(), time.Monday)
}

// insertShift inserts a matched IN/OUT pair on one day.
func (h *Handler) insertShift(ctx context.Context, emp engine.Employee, day engine.Date, inHour, inMin, outHour, outMin int) error {
	if err := h.insertPunch(ctx, emp, day, inHour, inMin, engine.PunchIn); err != nil {
		return err
	}
	return h.insertPunch(ctx, emp, day, outHour, outMin, engine.PunchOut)
}

// insertPunch inserts a single punch at a wall-clock time on the given day.
func (h *Handler) insertPunch(ctx context.Context, emp engine.Employee, day engine.Date, hour, min int, pt engine.PunchType) error {
	ts := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
	punch := engine.PunchEvent{
		ID:         engine.PunchID(fmt.Sprintf("%s-%s-%02d%02d-%s", emp.ID, day.String(), hour, min, pt)),
		EmployeeID: emp.ID,
		LocationID: emp.LocationID,
		Type:       pt,
		Timestamp:  ts,
	}
	return h.Store.AppendPunch(ctx, punch)
}
