package sickness

import (
	"context"
	"fmt"

	"github.com/warp/sickpay-engine/generic"
)

// PatternService owns work-pattern replacement.
type PatternService struct {
	Patterns  WorkPatternStore
	Employees EmployeeStore
}

func NewPatternService(patterns WorkPatternStore, employees EmployeeStore) *PatternService {
	return &PatternService{Patterns: patterns, Employees: employees}
}

func (s *PatternService) Get(ctx context.Context, employeeID generic.EntityID) ([]WorkDay, error) {
	if _, err := s.Employees.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.Patterns.FetchWorkPatterns(ctx, employeeID)
}

// Replace swaps the employee's whole pattern for days. Each weekday may
// appear at most once; unknown weekdays are rejected here even though the
// resolver would ignore them.
func (s *PatternService) Replace(ctx context.Context, employeeID generic.EntityID, days []WorkDay) error {
	if _, err := s.Employees.GetEmployee(ctx, employeeID); err != nil {
		return err
	}

	var seen [7]bool
	for _, d := range days {
		if !d.Day.Valid() {
			return fmt.Errorf("%w: unknown weekday", generic.ErrInvalidWorkPattern)
		}
		if seen[d.Day] {
			return fmt.Errorf("%w: %s", generic.ErrDuplicateWeekday, d.Day)
		}
		seen[d.Day] = true
	}

	return s.Patterns.ReplaceWorkPattern(ctx, employeeID, days)
}
