/*
Package postgres provides a PostgreSQL implementation of sickness.Store on a
pgx connection pool.

PURPOSE:
  Production persistence. Same tables as store/sqlite, with native DATE,
  NUMERIC and TIMESTAMPTZ columns.

TRANSACTIONS:
  ReplaceWorkPattern and Reset run through DB.WithTransaction; everything
  else is a single statement against the pool.

NUMERIC DAYS:
  total_days and opening balances are NUMERIC and travel as text, so
  decimal day counts (half days) round-trip exactly.

SEE ALSO:
  - sickness/store.go: Interface definitions
  - store/sqlite: Default development store
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	hire_date DATE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS work_patterns (
	employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	is_working BOOLEAN NOT NULL,
	start_time TEXT,
	end_time TEXT,
	PRIMARY KEY (employee_id, day_of_week)
);

CREATE TABLE IF NOT EXISTS sickness_records (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	start_date DATE NOT NULL,
	end_date DATE,
	total_days NUMERIC(8,2) NOT NULL DEFAULT 0,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sickness_records_employee_start
	ON sickness_records(employee_id, start_date);

CREATE TABLE IF NOT EXISTS entitlement_tiers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	min_service_months INTEGER NOT NULL,
	max_service_months INTEGER,
	full_pay_days DOUBLE PRECISION NOT NULL,
	half_pay_days DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS opening_balances (
	employee_id TEXT PRIMARY KEY REFERENCES employees(id) ON DELETE CASCADE,
	full_pay_days NUMERIC(8,2) NOT NULL,
	half_pay_days NUMERIC(8,2) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Store implements sickness.Store on PostgreSQL.
type Store struct {
	db *DB
}

var _ sickness.Store = (*Store)(nil)

// New connects and migrates.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// Ping checks the connection (used by the health endpoint).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp sickness.Employee) error {
	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			hire_date = EXCLUDED.hire_date
	`, string(emp.ID), emp.Name, nullText(emp.Email), datePtr(emp.HireDate), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*sickness.Employee, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, name, email, hire_date, created_at FROM employees WHERE id = $1",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]sickness.Employee, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, email, hire_date, created_at FROM employees ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
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

func scanEmployee(row pgx.Row) (sickness.Employee, error) {
	var emp sickness.Employee
	var id string
	var email *string
	var hireDate *time.Time

	if err := row.Scan(&id, &emp.Name, &email, &hireDate, &emp.CreatedAt); err != nil {
		return sickness.Employee{}, err
	}
	emp.ID = generic.EntityID(id)
	if email != nil {
		emp.Email = *email
	}
	if hireDate != nil {
		emp.HireDate = generic.DateOf(*hireDate)
	}
	return emp, nil
}

// =============================================================================
// WORK PATTERNS
// =============================================================================

func (s *Store) FetchWorkPatterns(ctx context.Context, employeeID generic.EntityID) ([]sickness.WorkDay, error) {
	rows, err := s.db.Query(ctx, `
		SELECT day_of_week, is_working, start_time, end_time
		FROM work_patterns
		WHERE employee_id = $1
		ORDER BY day_of_week
	`, string(employeeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work pattern: %w", err)
	}
	defer rows.Close()

	pattern := []sickness.WorkDay{}
	for rows.Next() {
		var day int16
		var wd sickness.WorkDay
		if err := rows.Scan(&day, &wd.IsWorking, &wd.StartTime, &wd.EndTime); err != nil {
			return nil, err
		}
		wd.Day = sickness.Weekday(day)
		pattern = append(pattern, wd)
	}
	return pattern, rows.Err()
}

func (s *Store) ReplaceWorkPattern(ctx context.Context, employeeID generic.EntityID, days []sickness.WorkDay) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM work_patterns WHERE employee_id = $1", string(employeeID)); err != nil {
			return fmt.Errorf("delete work pattern: %w", err)
		}

		batch := &pgx.Batch{}
		for _, d := range days {
			batch.Queue(`
				INSERT INTO work_patterns (employee_id, day_of_week, is_working, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5)
			`, string(employeeID), int16(d.Day), d.IsWorking, d.StartTime, d.EndTime)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// =============================================================================
// SICKNESS RECORDS
// =============================================================================

const recordColumns = "id, employee_id, start_date, end_date, total_days::text, notes, created_at, updated_at"

func (s *Store) GetSicknessRecords(ctx context.Context, employeeID generic.EntityID) ([]sickness.SicknessRecord, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+recordColumns+" FROM sickness_records WHERE employee_id = $1 ORDER BY start_date",
		string(employeeID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sickness records: %w", err)
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
	rec, err := scanRecord(s.db.QueryRow(ctx, "SELECT "+recordColumns+" FROM sickness_records WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sickness record: %w", err)
	}
	return &rec, nil
}

func (s *Store) SaveSicknessRecord(ctx context.Context, rec sickness.SicknessRecord) error {
	now := time.Now().UTC()
	createdAt, updatedAt := rec.CreatedAt, rec.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	var endDate *time.Time
	if rec.EndDate != nil {
		endDate = datePtr(*rec.EndDate)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO sickness_records (id, employee_id, start_date, end_date, total_days, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			total_days = EXCLUDED.total_days,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`, rec.ID, string(rec.EmployeeID), rec.StartDate.Time, endDate,
		rec.TotalDays.String(), nullText(rec.Notes), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save sickness record: %w", err)
	}
	return nil
}

func (s *Store) DeleteSicknessRecord(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM sickness_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sickness record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return generic.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (sickness.SicknessRecord, error) {
	var rec sickness.SicknessRecord
	var employeeID, totalDays string
	var startDate time.Time
	var endDate *time.Time
	var notes *string

	if err := row.Scan(&rec.ID, &employeeID, &startDate, &endDate, &totalDays, &notes, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return sickness.SicknessRecord{}, err
	}

	rec.EmployeeID = generic.EntityID(employeeID)
	rec.StartDate = generic.DateOf(startDate)
	if endDate != nil {
		end := generic.DateOf(*endDate)
		rec.EndDate = &end
	}
	rec.TotalDays = generic.ParseAmount(totalDays, generic.UnitDays)
	if notes != nil {
		rec.Notes = *notes
	}
	return rec, nil
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

func (s *Store) ListEntitlementTiers(ctx context.Context) ([]sickness.EntitlementTier, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, min_service_months, max_service_months, full_pay_days, half_pay_days
		FROM entitlement_tiers
		ORDER BY min_service_months
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlement tiers: %w", err)
	}
	defer rows.Close()

	var tiers []sickness.EntitlementTier
	for rows.Next() {
		var t sickness.EntitlementTier
		var maxMonths *int32
		var minMonths int32
		if err := rows.Scan(&t.ID, &t.Name, &minMonths, &maxMonths, &t.FullPayDays, &t.HalfPayDays); err != nil {
			return nil, err
		}
		t.MinServiceMonths = int(minMonths)
		if maxMonths != nil {
			m := int(*maxMonths)
			t.MaxServiceMonths = &m
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (s *Store) SaveEntitlementTier(ctx context.Context, tier sickness.EntitlementTier) error {
	var maxMonths *int32
	if tier.MaxServiceMonths != nil {
		m := int32(*tier.MaxServiceMonths)
		maxMonths = &m
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO entitlement_tiers (id, name, min_service_months, max_service_months, full_pay_days, half_pay_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			min_service_months = EXCLUDED.min_service_months,
			max_service_months = EXCLUDED.max_service_months,
			full_pay_days = EXCLUDED.full_pay_days,
			half_pay_days = EXCLUDED.half_pay_days
	`, tier.ID, tier.Name, int32(tier.MinServiceMonths), maxMonths, tier.FullPayDays, tier.HalfPayDays)
	if err != nil {
		return fmt.Errorf("failed to save entitlement tier: %w", err)
	}
	return nil
}

func (s *Store) GetOpeningBalance(ctx context.Context, employeeID generic.EntityID) (sickness.OpeningBalance, error) {
	balance := sickness.OpeningBalance{
		EmployeeID:  employeeID,
		FullPayDays: generic.Days(0),
		HalfPayDays: generic.Days(0),
	}

	var full, half string
	err := s.db.QueryRow(ctx,
		"SELECT full_pay_days::text, half_pay_days::text FROM opening_balances WHERE employee_id = $1",
		string(employeeID),
	).Scan(&full, &half)
	if errors.Is(err, pgx.ErrNoRows) {
		return balance, nil
	}
	if err != nil {
		return sickness.OpeningBalance{}, fmt.Errorf("failed to get opening balance: %w", err)
	}

	balance.FullPayDays = generic.ParseAmount(full, generic.UnitDays)
	balance.HalfPayDays = generic.ParseAmount(half, generic.UnitDays)
	return balance, nil
}

func (s *Store) SaveOpeningBalance(ctx context.Context, balance sickness.OpeningBalance) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO opening_balances (employee_id, full_pay_days, half_pay_days, updated_at)
		VALUES ($1, $2::numeric, $3::numeric, $4)
		ON CONFLICT (employee_id) DO UPDATE SET
			full_pay_days = EXCLUDED.full_pay_days,
			half_pay_days = EXCLUDED.half_pay_days,
			updated_at = EXCLUDED.updated_at
	`, string(balance.EmployeeID), balance.FullPayDays.String(), balance.HalfPayDays.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save opening balance: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "TRUNCATE sickness_records, work_patterns, opening_balances, employees, entitlement_tiers")
		return err
	})
}

func nullText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func datePtr(tp generic.TimePoint) *time.Time {
	if tp.IsZero() {
		return nil
	}
	t := tp.Time
	return &t
}
