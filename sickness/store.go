/*
store.go - Persistence interfaces consumed by the sickness services

PURPOSE:
  The engine never performs I/O itself. Services fetch a snapshot through
  these interfaces and pass it to the pure calculators.

KEY INTERFACES:
  EmployeeStore:       Employee lookup (hire date drives tier resolution)
  WorkPatternStore:    Per-weekday schedule, replaced wholesale
  SicknessRecordStore: Absence records, in any order
  EntitlementStore:    OSP tiers and opening balances
  Store:               All of the above plus Reset (demo scenarios)

REPLACE-ONLY PATTERNS:
  Work patterns are never patched. ReplaceWorkPattern deletes every entry
  for the employee and inserts the new set atomically.

IMPLEMENTATIONS:
  - store/sqlite: database/sql + go-sqlite3 (default)
  - store/postgres: pgx pool
  - store/memory: in-memory for tests and demos

SEE ALSO:
  - summary.go, report.go: Read side
  - record_service.go, pattern_service.go: Write side
*/
package sickness

import (
	"context"

	"github.com/warp/sickpay-engine/generic"
)

type EmployeeStore interface {
	// GetEmployee returns generic.ErrEmployeeNotFound when absent.
	GetEmployee(ctx context.Context, id generic.EntityID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, emp Employee) error
}

type WorkPatternStore interface {
	// FetchWorkPatterns returns the stored entries; an empty slice means
	// the employee has no pattern.
	FetchWorkPatterns(ctx context.Context, employeeID generic.EntityID) ([]WorkDay, error)

	// ReplaceWorkPattern deletes all entries and inserts days atomically.
	ReplaceWorkPattern(ctx context.Context, employeeID generic.EntityID, days []WorkDay) error
}

type SicknessRecordStore interface {
	// GetSicknessRecords returns all records for the employee in no
	// particular order.
	GetSicknessRecords(ctx context.Context, employeeID generic.EntityID) ([]SicknessRecord, error)

	// GetSicknessRecord returns generic.ErrRecordNotFound when absent.
	GetSicknessRecord(ctx context.Context, id string) (*SicknessRecord, error)

	// SaveSicknessRecord inserts or updates by ID.
	SaveSicknessRecord(ctx context.Context, rec SicknessRecord) error

	// DeleteSicknessRecord returns generic.ErrRecordNotFound when absent.
	DeleteSicknessRecord(ctx context.Context, id string) error
}

type EntitlementStore interface {
	ListEntitlementTiers(ctx context.Context) ([]EntitlementTier, error)
	SaveEntitlementTier(ctx context.Context, tier EntitlementTier) error

	// GetOpeningBalance returns a zero balance when none was entered.
	GetOpeningBalance(ctx context.Context, employeeID generic.EntityID) (OpeningBalance, error)
	SaveOpeningBalance(ctx context.Context, balance OpeningBalance) error
}

// Store is everything the API layer needs.
type Store interface {
	EmployeeStore
	WorkPatternStore
	SicknessRecordStore
	EntitlementStore

	// Reset removes all data. Used by demo scenarios.
	Reset(ctx context.Context) error
}
