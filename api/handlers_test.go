/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Employee CRUD
- Punch CRUD and duplicate/missing id handling
- Timecard aggregation endpoint (period resolution, shifting, repairs)
- Period navigation endpoint
- Settings validation on write
- Exception report and repair application
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/engine"
	"github.com/warp/timecard-engine/engine/store"
)

// weeklyRulesJSON: Monday-aligned weekly periods with daily 8 / weekly 40 /
// doubletime 12. Weekly periods keep the test dates deterministic.
const weeklyRulesJSON = `{
	"rule": "both",
	"daily_threshold_hours": 8,
	"weekly_threshold_hours": 40,
	"doubletime_daily_threshold_hours": 12,
	"week_start_day": 1,
	"period_type": "weekly"
}`

func newTestServer(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	return h, NewRouter(h)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// seedEmployee saves a ruleset for loc-1 and one employee attached to it.
func seedEmployee(t *testing.T, h *Handler) engine.Employee {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.Store.SaveRuleset(ctx, "loc-1", weeklyRulesJSON))
	emp := engine.Employee{ID: "emp-1", Name: "Ana Silva", LocationID: "loc-1"}
	require.NoError(t, h.Store.SaveEmployee(ctx, emp))
	return emp
}

// seedShift inserts an IN/OUT pair on a March 2025 day.
func seedShift(t *testing.T, h *Handler, emp engine.Employee, day, inHour, outHour int) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []engine.PunchEvent{
		{
			ID: engine.PunchID(fmt.Sprintf("in-%d", day)), EmployeeID: emp.ID, LocationID: emp.LocationID,
			Type: engine.PunchIn, Timestamp: time.Date(2025, time.March, day, inHour, 0, 0, 0, time.UTC),
		},
		{
			ID: engine.PunchID(fmt.Sprintf("out-%d", day)), EmployeeID: emp.ID, LocationID: emp.LocationID,
			Type: engine.PunchOut, Timestamp: time.Date(2025, time.March, day, outHour, 0, 0, 0, time.UTC),
		},
	} {
		require.NoError(t, h.Store.AppendPunch(ctx, p))
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestEmployee_CreateAndGet(t *testing.T) {
	_, router := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID: "emp-9", Name: "Niko Berg", LocationID: "loc-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/employees/emp-9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[EmployeeDTO](t, rec)
	assert.Equal(t, "Niko Berg", got.Name)
	assert.Equal(t, "loc-1", got.LocationID)
}

func TestEmployee_GetMissing(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployee_CreateRejectsMissingFields(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: "emp-9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PUNCH ENDPOINTS
// =============================================================================

func TestPunch_CreateAndList(t *testing.T) {
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)

	rec := doRequest(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{
		ID: "p-1", EmployeeID: string(emp.ID), LocationID: string(emp.LocationID),
		Type: "IN", Timestamp: "2025-03-10T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/employees/emp-1/punches?start=2025-03-10&end=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	punches := decodeBody[[]PunchDTO](t, rec)
	require.Len(t, punches, 1)
	assert.Equal(t, "p-1", punches[0].ID)
	assert.Equal(t, "IN", punches[0].Type)
}

func TestPunch_DuplicateID(t *testing.T) {
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)

	req := CreatePunchRequest{
		ID: "p-dup", EmployeeID: string(emp.ID), LocationID: string(emp.LocationID),
		Type: "IN", Timestamp: "2025-03-10T09:00:00Z",
	}
	require.Equal(t, http.StatusCreated, doRequest(t, router, http.MethodPost, "/api/punches", req).Code)
	assert.Equal(t, http.StatusConflict, doRequest(t, router, http.MethodPost, "/api/punches", req).Code)
}

func TestPunch_CreateRejectsBadType(t *testing.T) {
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)

	rec := doRequest(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{
		EmployeeID: string(emp.ID), LocationID: string(emp.LocationID),
		Type: "CLOCKIN", Timestamp: "2025-03-10T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPunch_UpdateCorrectsTimestamp(t *testing.T) {
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	seedShift(t, h, emp, 10, 9, 17)

	rec := doRequest(t, router, http.MethodPut, "/api/punches/out-10", UpdatePunchRequest{
		Timestamp: "2025-03-10T18:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[PunchDTO](t, rec)
	assert.Equal(t, "2025-03-10T18:00:00Z", got.Timestamp)
	assert.Equal(t, "OUT", got.Type, "type is preserved when only the timestamp changes")
}

func TestPunch_DeleteMissing(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodDelete, "/api/punches/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TIMECARD ENDPOINT
// =============================================================================

func TestTimecard_CleanWeek(t *testing.T) {
	// GIVEN: five 8-hour days in the week of 2025-03-10
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	for day := 10; day <= 14; day++ {
		seedShift(t, h, emp, day, 9, 17)
	}

	// WHEN: fetching the timecard for any date in that week
	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tc := decodeBody[TimecardDTO](t, rec)

	// THEN: the Monday-aligned weekly period encloses all five days
	assert.Equal(t, "2025-03-10", tc.Period.Start)
	assert.Equal(t, "2025-03-16", tc.Period.End)
	assert.Len(t, tc.Days, 5)
	assert.Equal(t, 40.0, tc.Totals.TotalHours)
	assert.Equal(t, 40.0, tc.Totals.RegularHours)
	assert.Equal(t, 0.0, tc.Totals.OvertimeHours)
	assert.Equal(t, 0, tc.ExceptionCount)
	assert.Empty(t, tc.Repairs)
}

func TestTimecard_OvertimeDay(t *testing.T) {
	// GIVEN: one 14-hour day
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	seedShift(t, h, emp, 10, 6, 20)

	// WHEN/THEN: the daily split appears in the response
	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tc := decodeBody[TimecardDTO](t, rec)
	require.Len(t, tc.Days, 1)
	assert.Equal(t, 8.0, tc.Days[0].RegularHours)
	assert.Equal(t, 4.0, tc.Days[0].OvertimeHours)
	assert.Equal(t, 2.0, tc.Days[0].DoubletimeHours)
}

func TestTimecard_ShiftPrevious(t *testing.T) {
	h, router := newTestServer(t)
	seedEmployee(t, h)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-12&shift=previous", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tc := decodeBody[TimecardDTO](t, rec)
	assert.Equal(t, "2025-03-03", tc.Period.Start)
	assert.Equal(t, "2025-03-09", tc.Period.End)
}

func TestTimecard_MissingPunchProducesRepair(t *testing.T) {
	// GIVEN: a lone IN punch
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	require.NoError(t, h.Store.AppendPunch(context.Background(), engine.PunchEvent{
		ID: "lone-in", EmployeeID: emp.ID, LocationID: emp.LocationID,
		Type: engine.PunchIn, Timestamp: time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC),
	}))

	// WHEN: fetching the timecard
	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tc := decodeBody[TimecardDTO](t, rec)

	// THEN: the day is flagged and an ADD_OUT at IN+8h is suggested
	assert.Equal(t, 1, tc.ExceptionCount)
	require.Len(t, tc.Repairs, 1)
	assert.Equal(t, "OPEN_IN", tc.Repairs[0].Exception)
	assert.Equal(t, "ADD_OUT", tc.Repairs[0].Suggested.Type)
	assert.Equal(t, "2025-03-11T17:00:00Z", tc.Repairs[0].Suggested.Timestamp)
}

func TestTimecard_NoRulesetConfigured(t *testing.T) {
	h, router := newTestServer(t)
	require.NoError(t, h.Store.SaveEmployee(context.Background(),
		engine.Employee{ID: "emp-1", Name: "Ana Silva", LocationID: "loc-unconfigured"}))

	rec := doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-12", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PERIOD ENDPOINT
// =============================================================================

func TestPeriod_ComputeAndShift(t *testing.T) {
	h, router := newTestServer(t)
	seedEmployee(t, h)

	rec := doRequest(t, router, http.MethodGet, "/api/periods?location_id=loc-1&date=2025-03-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	period := decodeBody[PeriodDTO](t, rec)
	assert.Equal(t, "2025-03-10", period.Start)
	assert.Equal(t, "2025-03-16", period.End)
	assert.Equal(t, 7, period.Days)

	rec = doRequest(t, router, http.MethodGet, "/api/periods?location_id=loc-1&date=2025-03-12&shift=next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decodeBody[PeriodDTO](t, rec)
	assert.Equal(t, "2025-03-17", next.Start)
	assert.Equal(t, "2025-03-23", next.End)
}

func TestPeriod_RequiresLocation(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodGet, "/api/periods?date=2025-03-12", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SETTINGS ENDPOINTS
// =============================================================================

func TestSettings_PutThenGet(t *testing.T) {
	_, router := newTestServer(t)

	var rj map[string]any
	require.NoError(t, json.Unmarshal([]byte(weeklyRulesJSON), &rj))

	rec := doRequest(t, router, http.MethodPut, "/api/settings/loc-1", rj)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/settings/loc-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "both", got["rule"])
	assert.Equal(t, "weekly", got["period_type"])
}

func TestSettings_RejectsInvalidRuleset(t *testing.T) {
	// Biweekly without an anchor must never reach the store.
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodPut, "/api/settings/loc-1", map[string]any{
		"rule": "none", "period_type": "biweekly",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings_GetMissing(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodGet, "/api/settings/loc-none", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// EXCEPTIONS AND REPAIR APPLICATION
// =============================================================================

func TestExceptions_ReportAndRepairRoundTrip(t *testing.T) {
	// GIVEN: an employee who forgot to clock out
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	require.NoError(t, h.Store.AppendPunch(context.Background(), engine.PunchEvent{
		ID: "lone-in", EmployeeID: emp.ID, LocationID: emp.LocationID,
		Type: engine.PunchIn, Timestamp: time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC),
	}))

	// WHEN: pulling the exception report for that week
	rec := doRequest(t, router, http.MethodGet, "/api/exceptions?date=2025-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decodeBody[[]ExceptionReportDTO](t, rec)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Repairs, 1)

	// AND: applying the suggested repair
	rec = doRequest(t, router, http.MethodPost, "/api/punches/mutations", reports[0].Repairs[0].Suggested)
	require.Equal(t, http.StatusCreated, rec.Code)

	// THEN: the exception clears and the assumed 8-hour shift is credited
	rec = doRequest(t, router, http.MethodGet, "/api/employees/emp-1/timecard?date=2025-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tc := decodeBody[TimecardDTO](t, rec)
	assert.Equal(t, 0, tc.ExceptionCount)
	assert.Equal(t, 8.0, tc.Totals.TotalHours)
}

func TestApplyMutation_Delete(t *testing.T) {
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	seedShift(t, h, emp, 10, 9, 17)

	rec := doRequest(t, router, http.MethodPost, "/api/punches/mutations", MutationDTO{
		Type: "DELETE", PunchID: "out-10",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := h.Store.GetPunch(context.Background(), "out-10")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApplyMutation_RejectsMissingFields(t *testing.T) {
	// ADD mutations require the same fields as a direct punch create; an
	// anonymous punch must never land in the store.
	h, router := newTestServer(t)
	seedEmployee(t, h)

	rec := doRequest(t, router, http.MethodPost, "/api/punches/mutations", MutationDTO{
		Type: "ADD_OUT", Timestamp: "2025-03-11T17:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	punches, err := h.Store.PunchesInRange(context.Background(), "",
		engine.NewDate(2025, time.March, 11), engine.NewDate(2025, time.March, 11))
	require.NoError(t, err)
	assert.Empty(t, punches)
}

func TestApplyMutation_UnknownType(t *testing.T) {
	_, router := newTestServer(t)
	rec := doRequest(t, router, http.MethodPost, "/api/punches/mutations", MutationDTO{Type: "SWAP"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExceptions_SkipsLocationsWithoutRuleset(t *testing.T) {
	// An unconfigured location must not fail the whole scan.
	h, router := newTestServer(t)
	emp := seedEmployee(t, h)
	require.NoError(t, h.Store.SaveEmployee(context.Background(),
		engine.Employee{ID: "emp-2", Name: "Ben Okafor", LocationID: "loc-unconfigured"}))
	require.NoError(t, h.Store.AppendPunch(context.Background(), engine.PunchEvent{
		ID: "lone-in", EmployeeID: emp.ID, LocationID: emp.LocationID,
		Type: engine.PunchIn, Timestamp: time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC),
	}))

	rec := doRequest(t, router, http.MethodGet, "/api/exceptions?date=2025-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decodeBody[[]ExceptionReportDTO](t, rec)
	require.Len(t, reports, 1)
	assert.Equal(t, "emp-1", reports[0].EmployeeID)
}

// rulesetFailStore simulates a settings read failing at the storage layer.
type rulesetFailStore struct {
	*store.Memory
}

func (s *rulesetFailStore) GetRuleset(context.Context, engine.LocationID) (string, error) {
	return "", errors.New("settings table unreadable")
}

func TestExceptions_StoreFailureAbortsScan(t *testing.T) {
	// GIVEN: a store whose ruleset reads fail outright
	mem := store.NewMemory()
	require.NoError(t, mem.SaveEmployee(context.Background(),
		engine.Employee{ID: "emp-1", Name: "Ana Silva", LocationID: "loc-1"}))
	h := NewHandler(&rulesetFailStore{Memory: mem})

	// WHEN/THEN: the scan surfaces the failure instead of silently
	// dropping the employee from the report
	_, err := h.ScanExceptions(context.Background(), engine.NewDate(2025, time.March, 11))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings table unreadable")
}
