/*
handlers.go - HTTP handlers for the timecard API

PURPOSE:
  Implements the REST endpoints that glue the punch store, the ruleset
  factory, and the aggregation engine together. Handlers own the request
  parsing and status-code mapping; all pay math stays in the engine.

FLOW (timecard endpoint):
  1. Load employee, then the employee's location ruleset JSON
  2. Parse the JSON into a validated RuleConfig (factory)
  3. Compute the pay-period range for the reference date (engine)
  4. Optionally shift the range (?shift=previous|next|current)
  5. Fetch the employee's punches within the range (store)
  6. BuildTimecard and convert to DTOs

ERROR MAPPING:
  ConfigError        -> 400 (bad ruleset or query parameters)
  ErrPunchNotFound   -> 404
  ErrDuplicatePunchID-> 409
  store failure      -> 500

SEE ALSO:
  - server.go: Route definitions
  - engine/timecard.go: BuildTimecard
  - factory/ruleset.go: Ruleset JSON parsing
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/timecard-engine/engine"
	"github.com/warp/timecard-engine/factory"
)

// Store is everything the API needs from persistence. Both the SQLite
// store and the in-memory store satisfy it.
type Store interface {
	engine.PunchStore
	engine.EmployeeStore
	engine.SettingsStore
	Reset(ctx context.Context) error
}

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	Store Store
}

// NewHandler creates a new API handler.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, EmployeeDTO{
			ID:         string(e.ID),
			Name:       e.Name,
			LocationID: string(e.LocationID),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.LocationID == "" {
		writeError(w, http.StatusBadRequest, "id, name, and location_id are required", nil)
		return
	}

	emp := engine.Employee{
		ID:         engine.EmployeeID(req.ID),
		Name:       req.Name,
		LocationID: engine.LocationID(req.LocationID),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, EmployeeDTO{
		ID:         req.ID,
		Name:       req.Name,
		LocationID: req.LocationID,
	})
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, EmployeeDTO{
		ID:         string(emp.ID),
		Name:       emp.Name,
		LocationID: string(emp.LocationID),
	})
}

// =============================================================================
// PUNCH ENDPOINTS
// =============================================================================

// ListPunches returns an employee's raw punches for a date range.
// GET /api/employees/{id}/punches?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	start, err := engine.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := engine.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	punches, err := h.Store.PunchesInRange(r.Context(), id, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list punches", err)
		return
	}

	dtos := make([]PunchDTO, 0, len(punches))
	for _, p := range punches {
		dtos = append(dtos, toPunchDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePunch records a new clock event.
// POST /api/punches
func (h *Handler) CreatePunch(w http.ResponseWriter, r *http.Request) {
	var req CreatePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	punch, err := punchFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid punch", err)
		return
	}

	if err := h.Store.AppendPunch(r.Context(), punch); err != nil {
		if errors.Is(err, engine.ErrDuplicatePunchID) {
			writeError(w, http.StatusConflict, "Punch ID already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save punch", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPunchDTO(punch))
}

// UpdatePunch corrects an existing punch's type and/or timestamp.
// PUT /api/punches/{id}
func (h *Handler) UpdatePunch(w http.ResponseWriter, r *http.Request) {
	id := engine.PunchID(chi.URLParam(r, "id"))

	var req UpdatePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetPunch(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get punch", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Punch not found", nil)
		return
	}

	updated := *existing
	if req.Type != "" {
		pt, err := parsePunchType(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid punch type", err)
			return
		}
		updated.Type = pt
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp", err)
			return
		}
		updated.Timestamp = ts
	}

	if err := h.Store.UpdatePunch(r.Context(), updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update punch", err)
		return
	}

	writeJSON(w, http.StatusOK, toPunchDTO(updated))
}

// DeletePunch removes a punch.
// DELETE /api/punches/{id}
func (h *Handler) DeletePunch(w http.ResponseWriter, r *http.Request) {
	id := engine.PunchID(chi.URLParam(r, "id"))

	if err := h.Store.DeletePunch(r.Context(), id); err != nil {
		if errors.Is(err, engine.ErrPunchNotFound) {
			writeError(w, http.StatusNotFound, "Punch not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete punch", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ApplyMutation applies a repair suggestion (or any punch write) against
// the store. ADD_IN/ADD_OUT insert a synthetic punch; DELETE removes one.
// POST /api/punches/mutations
func (h *Handler) ApplyMutation(w http.ResponseWriter, r *http.Request) {
	var req MutationDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch engine.MutationType(req.Type) {
	case engine.MutationAddIn, engine.MutationAddOut:
		if req.EmployeeID == "" || req.LocationID == "" {
			writeError(w, http.StatusBadRequest, "employee_id and location_id are required", nil)
			return
		}
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp", err)
			return
		}
		punchType := engine.PunchIn
		if engine.MutationType(req.Type) == engine.MutationAddOut {
			punchType = engine.PunchOut
		}
		punch := engine.PunchEvent{
			ID:         generatePunchID(),
			EmployeeID: engine.EmployeeID(req.EmployeeID),
			LocationID: engine.LocationID(req.LocationID),
			Type:       punchType,
			Timestamp:  ts,
		}
		if err := h.Store.AppendPunch(r.Context(), punch); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to apply mutation", err)
			return
		}
		writeJSON(w, http.StatusCreated, toPunchDTO(punch))

	case engine.MutationDelete:
		if err := h.Store.DeletePunch(r.Context(), engine.PunchID(req.PunchID)); err != nil {
			if errors.Is(err, engine.ErrPunchNotFound) {
				writeError(w, http.StatusNotFound, "Punch not found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to apply mutation", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown mutation type: %s", req.Type), nil)
	}
}

// =============================================================================
// TIMECARD ENDPOINT
// =============================================================================

// GetTimecard returns the aggregated, classified timecard for one employee
// over one pay period.
// GET /api/employees/{id}/timecard?date=YYYY-MM-DD&shift=previous|next|current
func (h *Handler) GetTimecard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	cfg, err := h.loadConfig(ctx, emp.LocationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ruleset configuration", err)
		return
	}

	period, err := h.resolvePeriod(r, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period parameters", err)
		return
	}

	punches, err := h.Store.PunchesInRange(ctx, id, period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	tc, err := engine.BuildTimecard(punches, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ruleset configuration", err)
		return
	}

	writeJSON(w, http.StatusOK, toTimecardDTO(id, period, tc))
}

// =============================================================================
// PERIOD ENDPOINT
// =============================================================================

// GetPeriod returns the pay-period range for a location and reference date
// without aggregating any punches. Used by the UI's period navigation.
// GET /api/periods?location_id=loc&date=YYYY-MM-DD&shift=previous|next|current
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	locationID := engine.LocationID(r.URL.Query().Get("location_id"))
	if locationID == "" {
		writeError(w, http.StatusBadRequest, "location_id is required", nil)
		return
	}

	cfg, err := h.loadConfig(r.Context(), locationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ruleset configuration", err)
		return
	}

	period, err := h.resolvePeriod(r, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period parameters", err)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// =============================================================================
// SETTINGS ENDPOINTS
// =============================================================================

// GetSettings returns a location's ruleset JSON.
// GET /api/settings/{locationId}
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	locationID := engine.LocationID(chi.URLParam(r, "locationId"))

	rulesetJSON, err := h.Store.GetRuleset(r.Context(), locationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get ruleset", err)
		return
	}
	if rulesetJSON == "" {
		writeError(w, http.StatusNotFound, "No ruleset configured for location", nil)
		return
	}

	var rj factory.RulesetJSON
	if err := json.Unmarshal([]byte(rulesetJSON), &rj); err != nil {
		writeError(w, http.StatusInternalServerError, "Stored ruleset is not valid JSON", err)
		return
	}
	writeJSON(w, http.StatusOK, rj)
}

// PutSettings replaces a location's ruleset. The ruleset must parse into a
// valid config; inconsistent settings are rejected before they are stored.
// PUT /api/settings/{locationId}
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	locationID := engine.LocationID(chi.URLParam(r, "locationId"))

	var rj factory.RulesetJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := factory.FromJSON(rj); err != nil {
		writeError(w, http.StatusBadRequest, "Ruleset failed validation", err)
		return
	}

	raw, err := json.Marshal(rj)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode ruleset", err)
		return
	}
	if err := h.Store.SaveRuleset(r.Context(), locationID, string(raw)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save ruleset", err)
		return
	}

	writeJSON(w, http.StatusOK, rj)
}

// =============================================================================
// EXCEPTIONS ENDPOINT
// =============================================================================

// ListExceptions reports every employee whose current pay period has
// missing-punch exceptions, with suggested repairs.
// GET /api/exceptions?date=YYYY-MM-DD
func (h *Handler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	ref := engine.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := engine.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		ref = parsed
	}

	reports, err := h.ScanExceptions(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to scan for exceptions", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// ScanExceptions builds the exception report for every employee for the
// pay period containing ref. Employees whose location has no valid ruleset
// are skipped rather than failing the whole scan; storage failures
// propagate so a broken scan is never mistaken for a clean one.
func (h *Handler) ScanExceptions(ctx context.Context, ref engine.Date) ([]ExceptionReportDTO, error) {
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	reports := []ExceptionReportDTO{}
	for _, emp := range employees {
		// A store failure aborts the scan; an unconfigured or invalid
		// ruleset only skips this location.
		rulesetJSON, err := h.Store.GetRuleset(ctx, emp.LocationID)
		if err != nil {
			return nil, err
		}
		if rulesetJSON == "" {
			continue
		}
		cfg, err := factory.ParseRuleset(rulesetJSON)
		if err != nil {
			continue
		}
		period, err := engine.ComputeRange(ref, cfg)
		if err != nil {
			continue
		}

		punches, err := h.Store.PunchesInRange(ctx, emp.ID, period.Start, period.End)
		if err != nil {
			return nil, err
		}
		tc, err := engine.BuildTimecard(punches, cfg)
		if err != nil {
			continue
		}
		if tc.ExceptionCount() == 0 {
			continue
		}

		repairs := make([]RepairDTO, 0, len(tc.Repairs))
		for _, rep := range tc.Repairs {
			repairs = append(repairs, toRepairDTO(rep))
		}
		reports = append(reports, ExceptionReportDTO{
			EmployeeID:     string(emp.ID),
			EmployeeName:   emp.Name,
			Period:         toPeriodDTO(period),
			ExceptionCount: tc.ExceptionCount(),
			Repairs:        repairs,
		})
	}
	return reports, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadConfig reads and parses the ruleset for a location. A location with
// no stored ruleset is a configuration error; there is no built-in
// fallback policy.
func (h *Handler) loadConfig(ctx context.Context, locationID engine.LocationID) (engine.RuleConfig, error) {
	rulesetJSON, err := h.Store.GetRuleset(ctx, locationID)
	if err != nil {
		return engine.RuleConfig{}, err
	}
	if rulesetJSON == "" {
		return engine.RuleConfig{}, fmt.Errorf("no ruleset configured for location %s", locationID)
	}
	return factory.ParseRuleset(rulesetJSON)
}

// resolvePeriod computes the pay period from the request's date and shift
// query parameters. Missing date means today; shift steps the range.
func (h *Handler) resolvePeriod(r *http.Request, cfg engine.RuleConfig) (engine.PayPeriodRange, error) {
	ref := engine.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := engine.ParseDate(raw)
		if err != nil {
			return engine.PayPeriodRange{}, err
		}
		ref = parsed
	}

	period, err := engine.ComputeRange(ref, cfg)
	if err != nil {
		return engine.PayPeriodRange{}, err
	}

	if raw := r.URL.Query().Get("shift"); raw != "" {
		period, err = engine.Shift(period, engine.ShiftDirection(raw), cfg)
		if err != nil {
			return engine.PayPeriodRange{}, err
		}
	}
	return period, nil
}

func punchFromRequest(req CreatePunchRequest) (engine.PunchEvent, error) {
	if req.EmployeeID == "" || req.LocationID == "" {
		return engine.PunchEvent{}, fmt.Errorf("employee_id and location_id are required")
	}
	pt, err := parsePunchType(req.Type)
	if err != nil {
		return engine.PunchEvent{}, err
	}
	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return engine.PunchEvent{}, fmt.Errorf("timestamp must be RFC3339: %w", err)
	}

	id := engine.PunchID(req.ID)
	if id == "" {
		id = generatePunchID()
	}
	return engine.PunchEvent{
		ID:         id,
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		LocationID: engine.LocationID(req.LocationID),
		Type:       pt,
		Timestamp:  ts,
	}, nil
}

func parsePunchType(s string) (engine.PunchType, error) {
	switch engine.PunchType(s) {
	case engine.PunchIn, engine.PunchOut:
		return engine.PunchType(s), nil
	default:
		return "", fmt.Errorf("punch type must be IN or OUT, got %q", s)
	}
}

func generatePunchID() engine.PunchID {
	return engine.PunchID(fmt.Sprintf("punch-%d", time.Now().UnixNano()))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
