/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Punches:
    PunchDTO, CreatePunchRequest, UpdatePunchRequest

  Timecard:
    TimecardDTO, DayDTO, SessionDTO, WeekDTO, TotalsDTO, RepairDTO

  Periods:
    PeriodDTO

  Settings:
    RulesetJSON (from factory, passed through verbatim)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

HOURS REPRESENTATION:
  The engine computes hours as decimals; DTOs expose them as float64.
  Every decimal leaving the engine is already rounded to 2 places, so the
  float conversion is lossless for display purposes.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/ruleset.go: RulesetJSON type
*/
package api

import (
	"time"

	"github.com/warp/timecard-engine/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
}

// PunchDTO represents a single clock event.
type PunchDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	LocationID string `json:"location_id"`
	Type       string `json:"type"`      // IN or OUT
	Timestamp  string `json:"timestamp"` // RFC3339, punch-local offset
}

// CreatePunchRequest is the request to record a punch.
type CreatePunchRequest struct {
	ID         string `json:"id,omitempty"` // generated when omitted
	EmployeeID string `json:"employee_id"`
	LocationID string `json:"location_id"`
	Type       string `json:"type"`
	Timestamp  string `json:"timestamp"`
}

// UpdatePunchRequest corrects an existing punch in place.
type UpdatePunchRequest struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// SessionDTO is one derived IN/OUT pairing.
type SessionDTO struct {
	InID      string  `json:"in_id,omitempty"`
	OutID     string  `json:"out_id,omitempty"`
	In        string  `json:"in,omitempty"`
	Out       string  `json:"out,omitempty"`
	Hours     float64 `json:"hours"`
	Exception string  `json:"exception"`
}

// DayDTO is one classified employee-day.
type DayDTO struct {
	Date            string       `json:"date"`
	Sessions        []SessionDTO `json:"sessions"`
	TotalHours      float64      `json:"total_hours"`
	RegularHours    float64      `json:"regular_hours"`
	OvertimeHours   float64      `json:"overtime_hours"`
	DoubletimeHours float64      `json:"doubletime_hours"`
	HasException    bool         `json:"has_exception"`
}

// WeekDTO is one aligned-week rollup.
type WeekDTO struct {
	Start           string  `json:"start"`
	End             string  `json:"end"`
	TotalHours      float64 `json:"total_hours"`
	RegularHours    float64 `json:"regular_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
	DoubletimeHours float64 `json:"doubletime_hours"`
}

// TotalsDTO is the three-bucket rollup for the whole period.
type TotalsDTO struct {
	TotalHours      float64 `json:"total_hours"`
	RegularHours    float64 `json:"regular_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
	DoubletimeHours float64 `json:"doubletime_hours"`
}

// MutationDTO is a punch-store write, either suggested by the engine or
// submitted by a client applying a repair.
type MutationDTO struct {
	Type       string `json:"type"` // ADD_IN, ADD_OUT, DELETE
	EmployeeID string `json:"employee_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	PunchID    string `json:"punch_id,omitempty"`
}

// RepairDTO ties a suggested mutation to the flagged session.
type RepairDTO struct {
	Date      string      `json:"date"`
	Exception string      `json:"exception"`
	SourceID  string      `json:"source_id"`
	Suggested MutationDTO `json:"suggested"`
}

// PeriodDTO is one pay-period date range.
type PeriodDTO struct {
	Start string `json:"start"` // YYYY-MM-DD, inclusive
	End   string `json:"end"`   // YYYY-MM-DD, inclusive
	Days  int    `json:"days"`
}

// TimecardDTO is the full aggregation response for one employee-period.
type TimecardDTO struct {
	EmployeeID     string      `json:"employee_id"`
	Period         PeriodDTO   `json:"period"`
	Days           []DayDTO    `json:"days"`
	Weeks          []WeekDTO   `json:"weeks"`
	Totals         TotalsDTO   `json:"totals"`
	Repairs        []RepairDTO `json:"repairs"`
	ExceptionCount int         `json:"exception_count"`
}

// ExceptionReportDTO is one employee's open exceptions in a period, as
// produced by the background scanner or the exceptions endpoint.
type ExceptionReportDTO struct {
	EmployeeID     string      `json:"employee_id"`
	EmployeeName   string      `json:"employee_name"`
	Period         PeriodDTO   `json:"period"`
	ExceptionCount int         `json:"exception_count"`
	Repairs        []RepairDTO `json:"repairs"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func toPunchDTO(p engine.PunchEvent) PunchDTO {
	return PunchDTO{
		ID:         string(p.ID),
		EmployeeID: string(p.EmployeeID),
		LocationID: string(p.LocationID),
		Type:       string(p.Type),
		Timestamp:  p.Timestamp.Format(time.RFC3339),
	}
}

func toSessionDTO(s engine.Session) SessionDTO {
	dto := SessionDTO{
		InID:      string(s.InID),
		OutID:     string(s.OutID),
		Hours:     s.Hours.InexactFloat64(),
		Exception: string(s.Exception),
	}
	if !s.In.IsZero() {
		dto.In = s.In.Format(time.RFC3339)
	}
	if !s.Out.IsZero() {
		dto.Out = s.Out.Format(time.RFC3339)
	}
	return dto
}

func toDayDTO(d engine.DayBucket) DayDTO {
	sessions := make([]SessionDTO, 0, len(d.Sessions))
	for _, s := range d.Sessions {
		sessions = append(sessions, toSessionDTO(s))
	}
	return DayDTO{
		Date:            d.Date.String(),
		Sessions:        sessions,
		TotalHours:      d.TotalHours.InexactFloat64(),
		RegularHours:    d.RegularHours.InexactFloat64(),
		OvertimeHours:   d.OvertimeHours.InexactFloat64(),
		DoubletimeHours: d.DoubletimeHours.InexactFloat64(),
		HasException:    d.HasException,
	}
}

func toWeekDTO(w engine.WeekBucket) WeekDTO {
	return WeekDTO{
		Start:           w.Start.String(),
		End:             w.End.String(),
		TotalHours:      w.TotalHours.InexactFloat64(),
		RegularHours:    w.RegularHours.InexactFloat64(),
		OvertimeHours:   w.OvertimeHours.InexactFloat64(),
		DoubletimeHours: w.DoubletimeHours.InexactFloat64(),
	}
}

func toMutationDTO(m engine.PunchMutation) MutationDTO {
	dto := MutationDTO{
		Type:       string(m.Type),
		EmployeeID: string(m.EmployeeID),
		LocationID: string(m.LocationID),
		PunchID:    string(m.PunchID),
	}
	if !m.Timestamp.IsZero() {
		dto.Timestamp = m.Timestamp.Format(time.RFC3339)
	}
	return dto
}

func toRepairDTO(r engine.Repair) RepairDTO {
	return RepairDTO{
		Date:      r.Date.String(),
		Exception: string(r.Exception),
		SourceID:  string(r.SourceID),
		Suggested: toMutationDTO(r.Suggested),
	}
}

func toPeriodDTO(r engine.PayPeriodRange) PeriodDTO {
	return PeriodDTO{Start: r.Start.String(), End: r.End.String(), Days: r.Days()}
}

func toTimecardDTO(employeeID engine.EmployeeID, period engine.PayPeriodRange, tc *engine.Timecard) TimecardDTO {
	days := make([]DayDTO, 0, len(tc.Days))
	for _, d := range tc.Days {
		days = append(days, toDayDTO(d))
	}
	weeks := make([]WeekDTO, 0, len(tc.Weeks))
	for _, w := range tc.Weeks {
		weeks = append(weeks, toWeekDTO(w))
	}
	repairs := make([]RepairDTO, 0, len(tc.Repairs))
	for _, r := range tc.Repairs {
		repairs = append(repairs, toRepairDTO(r))
	}
	return TimecardDTO{
		EmployeeID: string(employeeID),
		Period:     toPeriodDTO(period),
		Days:       days,
		Weeks:      weeks,
		Totals: TotalsDTO{
			TotalHours:      tc.Totals.TotalHours.InexactFloat64(),
			RegularHours:    tc.Totals.RegularHours.InexactFloat64(),
			OvertimeHours:   tc.Totals.OvertimeHours.InexactFloat64(),
			DoubletimeHours: tc.Totals.DoubletimeHours.InexactFloat64(),
		},
		Repairs:        repairs,
		ExceptionCount: tc.ExceptionCount(),
	}
}
