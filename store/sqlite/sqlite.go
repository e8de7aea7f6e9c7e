/*
Package sqlite provides the SQLite-backed punch store.

PURPOSE:
  Implements the persistence interfaces the engine's hosts depend on
  (engine.PunchStore, engine.EmployeeStore, engine.SettingsStore) using
  SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  punches:    Clock events from kiosks. Addressed by exact id so repairs
              and edits always target the right row.
  employees:  Employee records for the dashboard.
  settings:   Per-location rule configuration as JSON, parsed by the
              factory package.

PUNCH TIMESTAMPS:
  Timestamps are stored as RFC3339 strings with their original UTC
  offset, plus a precomputed local_date column (the punch's own calendar
  day). Range queries filter on local_date, which matches how the engine
  groups sessions - no day-boundary drift between the query and the
  aggregation.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time, better crash
  recovery.

USAGE:
  store, err := sqlite.New("./data/timecards.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/timecard-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks.
var (
	_ engine.PunchStore    = (*Store)(nil)
	_ engine.EmployeeStore = (*Store)(nil)
	_ engine.SettingsStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Punches (clock events)
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		punch_type TEXT NOT NULL CHECK (punch_type IN ('IN', 'OUT')),
		timestamp TEXT NOT NULL,
		local_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Range fetches per employee are the hot path (one per timecard view)
	CREATE INDEX IF NOT EXISTS idx_punches_employee_date
		ON punches(employee_id, local_date);
	CREATE INDEX IF NOT EXISTS idx_punches_location
		ON punches(location_id);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Per-location rule configuration (JSON, factory-parsed)
	CREATE TABLE IF NOT EXISTS settings (
		location_id TEXT PRIMARY KEY,
		ruleset_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (engine.PunchStore interface)
// =============================================================================

// AppendPunch persists a new punch.
func (s *Store) AppendPunch(ctx context.Context, p engine.PunchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO punches (id, employee_id, location_id, punch_type, timestamp, local_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.EmployeeID,
		p.LocationID,
		p.Type,
		p.Timestamp.Format(time.RFC3339),
		engine.DateOf(p.Timestamp).String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicatePunchID
		}
		return fmt.Errorf("failed to append punch: %w", err)
	}
	return nil
}

// UpdatePunch replaces the type/timestamp of an existing punch.
func (s *Store) UpdatePunch(ctx context.Context, p engine.PunchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE punches
		SET punch_type = ?, timestamp = ?, local_date = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Type,
		p.Timestamp.Format(time.RFC3339),
		engine.DateOf(p.Timestamp).String(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update punch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update punch: %w", err)
	}
	if affected == 0 {
		return engine.ErrPunchNotFound
	}
	return nil
}

// DeletePunch removes a punch by id.
func (s *Store) DeletePunch(ctx context.Context, id engine.PunchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM punches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete punch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete punch: %w", err)
	}
	if affected == 0 {
		return engine.ErrPunchNotFound
	}
	return nil
}

// GetPunch returns a punch by id, or nil if absent.
func (s *Store) GetPunch(ctx context.Context, id engine.PunchID) (*engine.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p  engine.PunchEvent
		ts string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, location_id, punch_type, timestamp FROM punches WHERE id = ?", id,
	).Scan(&p.ID, &p.EmployeeID, &p.LocationID, &p.Type, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get punch: %w", err)
	}

	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse punch timestamp: %w", err)
	}
	p.Timestamp = t
	return &p, nil
}

// PunchesInRange returns an employee's punches whose local calendar day
// falls within [from, to].
func (s *Store) PunchesInRange(ctx context.Context, employeeID engine.EmployeeID, from, to engine.Date) ([]engine.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, location_id, punch_type, timestamp
		FROM punches
		WHERE employee_id = ? AND local_date >= ? AND local_date <= ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var punches []engine.PunchEvent
	for rows.Next() {
		var (
			p  engine.PunchEvent
			ts string
		)
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.LocationID, &p.Type, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse punch timestamp: %w", err)
		}
		p.Timestamp = t
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE (engine.EmployeeStore interface)
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, location_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, location_id = excluded.location_id
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, e.LocationID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e engine.Employee
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, location_id FROM employees WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.LocationID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, location_id FROM employees ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		var e engine.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.LocationID); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// SETTINGS STORE (engine.SettingsStore interface)
// =============================================================================

func (s *Store) SaveRuleset(ctx context.Context, locationID engine.LocationID, rulesetJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO settings (location_id, ruleset_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(location_id) DO UPDATE SET
			ruleset_json = excluded.ruleset_json,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		locationID, rulesetJSON, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save ruleset: %w", err)
	}
	return nil
}

func (s *Store) GetRuleset(ctx context.Context, locationID engine.LocationID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rulesetJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT ruleset_json FROM settings WHERE location_id = ?", locationID,
	).Scan(&rulesetJSON)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get ruleset: %w", err)
	}
	return rulesetJSON, nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears all data. Used by scenario loading (dev only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"punches", "employees", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
