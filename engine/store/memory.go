// Package store provides in-memory PunchStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/timecard-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	punches   map[engine.PunchID]engine.PunchEvent
	employees map[engine.EmployeeID]engine.Employee
	rulesets  map[engine.LocationID]string
}

func NewMemory() *Memory {
	return &Memory{
		punches:   make(map[engine.PunchID]engine.PunchEvent),
		employees: make(map[engine.EmployeeID]engine.Employee),
		rulesets:  make(map[engine.LocationID]string),
	}
}

// Compile-time interface checks.
var (
	_ engine.PunchStore    = (*Memory)(nil)
	_ engine.EmployeeStore = (*Memory)(nil)
	_ engine.SettingsStore = (*Memory)(nil)
)

// =============================================================================
// PUNCH STORE
// =============================================================================

func (m *Memory) AppendPunch(_ context.Context, p engine.PunchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.punches[p.ID]; exists {
		return engine.ErrDuplicatePunchID
	}
	m.punches[p.ID] = p
	return nil
}

func (m *Memory) UpdatePunch(_ context.Context, p engine.PunchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.punches[p.ID]; !exists {
		return engine.ErrPunchNotFound
	}
	m.punches[p.ID] = p
	return nil
}

func (m *Memory) DeletePunch(_ context.Context, id engine.PunchID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.punches[id]; !exists {
		return engine.ErrPunchNotFound
	}
	delete(m.punches, id)
	return nil
}

func (m *Memory) GetPunch(_ context.Context, id engine.PunchID) (*engine.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.punches[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) PunchesInRange(_ context.Context, employeeID engine.EmployeeID, from, to engine.Date) ([]engine.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.PunchEvent
	for _, p := range m.punches {
		if p.EmployeeID != employeeID {
			continue
		}
		day := engine.DateOf(p.Timestamp)
		if day.AfterOrEqual(from) && day.BeforeOrEqual(to) {
			result = append(result, p)
		}
	}
	// Deterministic order for tests, though callers re-sort anyway.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID < result[j].ID
		}
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

func (m *Memory) SaveRuleset(_ context.Context, locationID engine.LocationID, rulesetJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rulesets[locationID] = rulesetJSON
	return nil
}

func (m *Memory) GetRuleset(_ context.Context, locationID engine.LocationID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rulesets[locationID], nil
}

// Reset clears all data. Used by scenario loading.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.punches = make(map[engine.PunchID]engine.PunchEvent)
	m.employees = make(map[engine.EmployeeID]engine.Employee)
	m.rulesets = make(map[engine.LocationID]string)
	return nil
}
