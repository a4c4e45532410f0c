package sickness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/sickpay-engine/generic"
)

// =============================================================================
// OVERLAP DETECTION
// =============================================================================

// OverlapError names the stored record a candidate collides with.
type OverlapError struct {
	EmployeeID generic.EntityID
	Candidate  SicknessRecord
	Existing   SicknessRecord
}

func (e *OverlapError) Error() string {
	end := "ongoing"
	if e.Existing.EndDate != nil {
		end = e.Existing.EndDate.String()
	}
	return fmt.Sprintf("sickness record overlaps existing record %s (%s to %s)",
		e.Existing.ID, e.Existing.StartDate, end)
}

func (e *OverlapError) Unwrap() error {
	return generic.ErrOverlappingRecord
}

// FindOverlap returns the first record in existing whose date range shares a
// day with candidate. Ongoing records extend indefinitely. A record never
// overlaps itself (same ID).
func FindOverlap(existing []SicknessRecord, candidate SicknessRecord) *SicknessRecord {
	for i := range existing {
		r := existing[i]
		if r.ID != "" && r.ID == candidate.ID {
			continue
		}
		if rangesOverlap(r, candidate) {
			return &r
		}
	}
	return nil
}

func rangesOverlap(a, b SicknessRecord) bool {
	aEndsBeforeB := a.EndDate != nil && a.EndDate.Before(b.StartDate)
	bEndsBeforeA := b.EndDate != nil && b.EndDate.Before(a.StartDate)
	return !aEndsBeforeB && !bEndsBeforeA
}

// =============================================================================
// RECORD SERVICE - Create / update / delete with validation
// =============================================================================

// RecordService owns the write path for sickness records. Writes for one
// employee are serialised so the overlap check and the insert cannot
// interleave with another write for the same employee.
type RecordService struct {
	Records  SicknessRecordStore
	Patterns WorkPatternStore
	Now      func() time.Time

	locks employeeLocks
}

func NewRecordService(records SicknessRecordStore, patterns WorkPatternStore) *RecordService {
	return &RecordService{Records: records, Patterns: patterns, Now: time.Now}
}

func (s *RecordService) List(ctx context.Context, employeeID generic.EntityID) ([]SicknessRecord, error) {
	return s.Records.GetSicknessRecords(ctx, employeeID)
}

// Create validates and stores a new record. A zero TotalDays is filled from
// the employee's work pattern.
func (s *RecordService) Create(ctx context.Context, rec SicknessRecord) (*SicknessRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return s.save(ctx, rec)
}

// Update replaces the dates/days/notes of an existing record.
func (s *RecordService) Update(ctx context.Context, rec SicknessRecord) (*SicknessRecord, error) {
	existing, err := s.Records.GetSicknessRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.EmployeeID = existing.EmployeeID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.Now().UTC()
	return s.save(ctx, rec)
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.Records.DeleteSicknessRecord(ctx, id)
}

func (s *RecordService) save(ctx context.Context, rec SicknessRecord) (*SicknessRecord, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(rec.EmployeeID)
	defer unlock()

	others, err := s.Records.GetSicknessRecords(ctx, rec.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("load sickness records: %w", err)
	}
	if clash := FindOverlap(others, rec); clash != nil {
		return nil, &OverlapError{EmployeeID: rec.EmployeeID, Candidate: rec, Existing: *clash}
	}

	if rec.TotalDays.IsZero() {
		pattern, err := s.Patterns.FetchWorkPatterns(ctx, rec.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("load work pattern: %w", err)
		}
		rec.TotalDays = generic.NewAmountFromInt(
			CalculateWorkingDaysForRecord(rec.StartDate, rec.EndDate, pattern),
			generic.UnitDays,
		)
	}

	if err := s.Records.SaveSicknessRecord(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// employeeLocks hands out one mutex per employee. Entries are dropped once
// no writer holds or waits on them. The zero value is ready to use.
type employeeLocks struct {
	mu      sync.Mutex
	entries map[generic.EntityID]*employeeLock
}

type employeeLock struct {
	mu   sync.Mutex
	refs int
}

func (l *employeeLocks) lock(id generic.EntityID) (unlock func()) {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[generic.EntityID]*employeeLock)
	}
	e, ok := l.entries[id]
	if !ok {
		e = &employeeLock{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}

func validateRecord(rec SicknessRecord) error {
	if rec.EmployeeID == "" {
		return fmt.Errorf("%w: employee is required", generic.ErrInvalidRecord)
	}
	if rec.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", generic.ErrInvalidRecord)
	}
	if rec.EndDate != nil && rec.EndDate.Before(rec.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			generic.ErrInvalidRecord, rec.EndDate, rec.StartDate)
	}
	if rec.TotalDays.IsNegative() {
		return fmt.Errorf("%w: total days cannot be negative", generic.ErrInvalidRecord)
	}
	return nil
}
