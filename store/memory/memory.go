// Package memory provides an in-memory sickness.Store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EntityID]sickness.Employee
	patterns  map[generic.EntityID][]sickness.WorkDay
	records   map[string]sickness.SicknessRecord
	tiers     map[string]sickness.EntitlementTier
	openings  map[generic.EntityID]sickness.OpeningBalance
}

var _ sickness.Store = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.employees = make(map[generic.EntityID]sickness.Employee)
	m.patterns = make(map[generic.EntityID][]sickness.WorkDay)
	m.records = make(map[string]sickness.SicknessRecord)
	m.tiers = make(map[string]sickness.EntitlementTier)
	m.openings = make(map[generic.EntityID]sickness.OpeningBalance)
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id generic.EntityID) (*sickness.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, generic.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]sickness.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sickness.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp sickness.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

// =============================================================================
// WORK PATTERNS
// =============================================================================

func (m *Memory) FetchWorkPatterns(_ context.Context, employeeID generic.EntityID) ([]sickness.WorkDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sickness.WorkDay, len(m.patterns[employeeID]))
	copy(result, m.patterns[employeeID])
	return result, nil
}

// ReplaceWorkPattern swaps the whole slice under one lock, which is the
// in-memory equivalent of delete-all-then-insert in a transaction.
func (m *Memory) ReplaceWorkPattern(_ context.Context, employeeID generic.EntityID, days []sickness.WorkDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(days) == 0 {
		delete(m.patterns, employeeID)
		return nil
	}
	m.patterns[employeeID] = append([]sickness.WorkDay(nil), days...)
	return nil
}

// =============================================================================
// SICKNESS RECORDS
// =============================================================================

func (m *Memory) GetSicknessRecords(_ context.Context, employeeID generic.EntityID) ([]sickness.SicknessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []sickness.SicknessRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *Memory) GetSicknessRecord(_ context.Context, id string) (*sickness.SicknessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, generic.ErrRecordNotFound
	}
	return &r, nil
}

func (m *Memory) SaveSicknessRecord(_ context.Context, rec sickness.SicknessRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *Memory) DeleteSicknessRecord(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return generic.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

func (m *Memory) ListEntitlementTiers(_ context.Context) ([]sickness.EntitlementTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sickness.EntitlementTier, 0, len(m.tiers))
	for _, t := range m.tiers {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MinServiceMonths < result[j].MinServiceMonths })
	return result, nil
}

func (m *Memory) SaveEntitlementTier(_ context.Context, tier sickness.EntitlementTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[tier.ID] = tier
	return nil
}

func (m *Memory) GetOpeningBalance(_ context.Context, employeeID generic.EntityID) (sickness.OpeningBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b, ok := m.openings[employeeID]; ok {
		return b, nil
	}
	return sickness.OpeningBalance{
		EmployeeID:  employeeID,
		FullPayDays: generic.Days(0),
		HalfPayDays: generic.Days(0),
	}, nil
}

func (m *Memory) SaveOpeningBalance(_ context.Context, balance sickness.OpeningBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openings[balance.EmployeeID] = balance
	return nil
}
