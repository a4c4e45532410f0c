/*
Package sqlite provides a SQLite-backed implementation of sickness.Store.

PURPOSE:
  Default persistence for the service and the store used by API tests.
  The Postgres store (store/postgres) follows the same table layout with
  native column types.

KEY TABLES:
  employees:          Employee records (hire date drives OSP tiers)
  work_patterns:      One row per (employee, weekday)
  sickness_records:   Absences; end_date NULL = ongoing
  entitlement_tiers:  OSP full/half-pay days by service length
  opening_balances:   Carried-in OSP days per employee

INDEXES:
  - idx_work_patterns_employee_day: One entry per weekday (UNIQUE)
  - idx_sickness_records_employee_start: Per-employee record fetch

STORAGE FORMATS:
  Dates are TEXT "YYYY-MM-DD", timestamps RFC3339, day amounts decimal TEXT
  so half days survive the round trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, so that
  ":memory:" databases are shared by every caller of one Store.

USAGE:
  store, err := sqlite.New("./data/sickpay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - sickness/store.go: Interface definitions
  - store/memory: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

// Store implements sickness.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ sickness.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

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

// Ping checks the connection (used by the health endpoint).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Replaced wholesale per employee, never patched
	CREATE TABLE IF NOT EXISTS work_patterns (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		day_of_week INTEGER NOT NULL,
		is_working INTEGER NOT NULL,
		start_time TEXT,
		end_time TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_work_patterns_employee_day
		ON work_patterns(employee_id, day_of_week);

	CREATE TABLE IF NOT EXISTS sickness_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT,
		total_days TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sickness_records_employee_start
		ON sickness_records(employee_id, start_date);

	CREATE TABLE IF NOT EXISTS entitlement_tiers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		min_service_months INTEGER NOT NULL,
		max_service_months INTEGER,
		full_pay_days REAL NOT NULL,
		half_pay_days REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS opening_balances (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id) ON DELETE CASCADE,
		full_pay_days TEXT NOT NULL,
		half_pay_days TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp sickness.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date
	`

	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID), emp.Name, nullString(emp.Email),
		nullDate(emp.HireDate),
		createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, hire_date, created_at FROM employees WHERE id = ?",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, hire_date, created_at FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []sickness.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (sickness.Employee, error) {
	var emp sickness.Employee
	var id, createdAt string
	var email, hireDate sql.NullString

	if err := row.Scan(&id, &emp.Name, &email, &hireDate, &createdAt); err != nil {
		return sickness.Employee{}, err
	}
	emp.ID = generic.EntityID(id)
	emp.Email = email.String
	emp.HireDate = parseDate(hireDate)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return emp, nil
}

// =============================================================================
// WORK PATTERNS
// =============================================================================

func (s *Store) FetchWorkPatterns(ctx context.Context, employeeID generic.EntityID) ([]sickness.WorkDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT day_of_week, is_working, start_time, end_time
		FROM work_patterns
		WHERE employee_id = ?
		ORDER BY day_of_week
	`, string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pattern := []sickness.WorkDay{}
	for rows.Next() {
		var day int
		var working bool
		var start, end sql.NullString
		if err := rows.Scan(&day, &working, &start, &end); err != nil {
			return nil, err
		}
		pattern = append(pattern, sickness.WorkDay{
			Day:       sickness.Weekday(day),
			IsWorking: working,
			StartTime: stringPtr(start),
			EndTime:   stringPtr(end),
		})
	}
	return pattern, rows.Err()
}

// ReplaceWorkPattern deletes every entry for the employee and inserts days
// in one transaction.
func (s *Store) ReplaceWorkPattern(ctx context.Context, employeeID generic.EntityID, days []sickness.WorkDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM work_patterns WHERE employee_id = ?", string(employeeID)); err != nil {
		return err
	}

	for _, d := range days {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_patterns (employee_id, day_of_week, is_working, start_time, end_time)
			VALUES (?, ?, ?, ?, ?)
		`, string(employeeID), int(d.Day), d.IsWorking, nullStringPtr(d.StartTime), nullStringPtr(d.EndTime))
		if err != nil {
			return fmt.Errorf("insert %s: %w", d.Day, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// SICKNESS RECORDS
// =============================================================================

const recordColumns = "id, employee_id, start_date, end_date, total_days, notes, created_at, updated_at"

func (s *Store) GetSicknessRecords(ctx context.Context, employeeID generic.EntityID) ([]sickness.SicknessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM sickness_records WHERE employee_id = ? ORDER BY start_date",
		string(employeeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []sickness.SicknessRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) GetSicknessRecord(ctx context.Context, id string) (*sickness.SicknessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM sickness_records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) SaveSicknessRecord(ctx context.Context, rec sickness.SicknessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	createdAt, updatedAt := rec.CreatedAt, rec.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	query := `
		INSERT INTO sickness_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			total_days = excluded.total_days,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, string(rec.EmployeeID),
		rec.StartDate.String(), nullDatePtr(rec.EndDate),
		rec.TotalDays.String(), nullString(rec.Notes),
		createdAt.UTC().Format(time.RFC3339), updatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) DeleteSicknessRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sickness_records WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row scanner) (sickness.SicknessRecord, error) {
	var rec sickness.SicknessRecord
	var employeeID, startDate, totalDays, createdAt, updatedAt string
	var endDate, notes sql.NullString

	if err := row.Scan(&rec.ID, &employeeID, &startDate, &endDate, &totalDays, &notes, &createdAt, &updatedAt); err != nil {
		return sickness.SicknessRecord{}, err
	}

	rec.EmployeeID = generic.EntityID(employeeID)
	rec.StartDate = parseDate(sql.NullString{String: startDate, Valid: true})
	if endDate.Valid {
		end := parseDate(endDate)
		rec.EndDate = &end
	}
	rec.TotalDays = generic.ParseAmount(totalDays, generic.UnitDays)
	rec.Notes = notes.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

func (s *Store) ListEntitlementTiers(ctx context.Context) ([]sickness.EntitlementTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, min_service_months, max_service_months, full_pay_days, half_pay_days
		FROM entitlement_tiers
		ORDER BY min_service_months
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []sickness.EntitlementTier
	for rows.Next() {
		var t sickness.EntitlementTier
		var maxMonths sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.MinServiceMonths, &maxMonths, &t.FullPayDays, &t.HalfPayDays); err != nil {
			return nil, err
		}
		if maxMonths.Valid {
			m := int(maxMonths.Int64)
			t.MaxServiceMonths = &m
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (s *Store) SaveEntitlementTier(ctx context.Context, tier sickness.EntitlementTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxMonths sql.NullInt64
	if tier.MaxServiceMonths != nil {
		maxMonths = sql.NullInt64{Int64: int64(*tier.MaxServiceMonths), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entitlement_tiers (id, name, min_service_months, max_service_months, full_pay_days, half_pay_days)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			min_service_months = excluded.min_service_months,
			max_service_months = excluded.max_service_months,
			full_pay_days = excluded.full_pay_days,
			half_pay_days = excluded.half_pay_days
	`, tier.ID, tier.Name, tier.MinServiceMonths, maxMonths, tier.FullPayDays, tier.HalfPayDays)
	return err
}

func (s *Store) GetOpeningBalance(ctx context.Context, employeeID generic.EntityID) (sickness.OpeningBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance := sickness.OpeningBalance{
		EmployeeID:  employeeID,
		FullPayDays: generic.Days(0),
		HalfPayDays: generic.Days(0),
	}

	var full, half string
	err := s.db.QueryRowContext(ctx,
		"SELECT full_pay_days, half_pay_days FROM opening_balances WHERE employee_id = ?",
		string(employeeID),
	).Scan(&full, &half)
	if errors.Is(err, sql.ErrNoRows) {
		return balance, nil
	}
	if err != nil {
		return sickness.OpeningBalance{}, err
	}

	balance.FullPayDays = generic.ParseAmount(full, generic.UnitDays)
	balance.HalfPayDays = generic.ParseAmount(half, generic.UnitDays)
	return balance, nil
}

func (s *Store) SaveOpeningBalance(ctx context.Context, balance sickness.OpeningBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opening_balances (employee_id, full_pay_days, half_pay_days, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			full_pay_days = excluded.full_pay_days,
			half_pay_days = excluded.half_pay_days,
			updated_at = excluded.updated_at
	`, string(balance.EmployeeID),
		balance.FullPayDays.String(), balance.HalfPayDays.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"sickness_records", "work_patterns", "opening_balances", "employees", "entitlement_tiers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullDate(tp generic.TimePoint) sql.NullString {
	if tp.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func nullDatePtr(tp *generic.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return nullDate(*tp)
}

// parseDate reads a stored date; unparseable values become the zero date.
func parseDate(ns sql.NullString) generic.TimePoint {
	if !ns.Valid || ns.String == "" {
		return generic.TimePoint{}
	}
	tp, err := generic.ParseDate(ns.String)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}
