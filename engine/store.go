/*
store.go - Persistence interfaces for punch data and rule settings

PURPOSE:
  Defines the interface between the engine's callers and the punch store.
  The engine itself never touches these: it is handed fully-materialized
  punch lists. The interfaces live here so every host (HTTP API, CLI,
  tests) agrees on the shape of the external collaborator.

OWNERSHIP:
  Punches are owned by the store. The engine reads snapshots and shapes
  PunchMutation payloads for the caller to apply; edit/delete address a
  punch by its exact id.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - engine/store/memory.go: In-memory for testing

SEE ALSO:
  - repair.go: PunchMutation, the write payloads applied against PunchStore
  - api/handlers.go: The hosting service gluing store and engine together
*/
package engine

import "context"

// =============================================================================
// PUNCH STORE
// =============================================================================

// PunchStore persists clock events. Writes address punches by exact id, so
// a repair applied from a derived session always targets the right row.
type PunchStore interface {
	// AppendPunch persists a new punch. The id must be unique per employee.
	AppendPunch(ctx context.Context, p PunchEvent) error

	// UpdatePunch replaces the timestamp/type of an existing punch.
	UpdatePunch(ctx context.Context, p PunchEvent) error

	// DeletePunch removes a punch by id.
	DeletePunch(ctx context.Context, id PunchID) error

	// GetPunch returns a punch by id, or nil if absent.
	GetPunch(ctx context.Context, id PunchID) (*PunchEvent, error)

	// PunchesInRange returns an employee's punches whose timestamps fall
	// on days within [from, to], in no guaranteed order (the engine sorts).
	PunchesInRange(ctx context.Context, employeeID EmployeeID, from, to Date) ([]PunchEvent, error)
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee is the minimal record the dashboard needs per person.
type Employee struct {
	ID         EmployeeID
	Name       string
	LocationID LocationID
}

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SettingsStore holds the per-location rule configuration as JSON, parsed
// by the factory package on read. Config is always passed explicitly to
// the engine; this store is just where the dashboard keeps it.
type SettingsStore interface {
	SaveRuleset(ctx context.Context, locationID LocationID, rulesetJSON string) error
	GetRuleset(ctx context.Context, locationID LocationID) (string, error)
}
