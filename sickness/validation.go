package sickness

import (
	"github.com/shopspring/decimal"
	"github.com/warp/sickpay-engine/generic"
)

// =============================================================================
// IMPORT VALIDATION - Supplied day counts vs. the work pattern
// =============================================================================

type ImportStatus string

const (
	ImportValid   ImportStatus = "valid"
	ImportWarning ImportStatus = "warning" // small drift, auto-corrected
	ImportError   ImportStatus = "error"   // must be recalculated
)

var (
	validTolerance   = decimal.RequireFromString("0.1")
	warningTolerance = decimal.NewFromInt(1)
)

// ImportRow is one row of an imported sickness file after column mapping.
type ImportRow struct {
	Row          int
	EmployeeID   generic.EntityID
	StartDate    generic.TimePoint
	EndDate      *generic.TimePoint
	SuppliedDays generic.Amount
}

// ImportValidation compares a row's supplied day count to the count derived
// from the employee's work pattern.
type ImportValidation struct {
	Row          int
	EmployeeID   generic.EntityID
	Status       ImportStatus
	SuppliedDays generic.Amount
	ExpectedDays int
	Difference   generic.Amount
	// CorrectedDays is the value to store: the supplied figure when valid,
	// the pattern-derived figure otherwise.
	CorrectedDays generic.Amount
}

// ValidateImportRow classifies the absolute difference between supplied and
// expected days: <= 0.1 valid, <= 1 warning, otherwise error.
func ValidateImportRow(row ImportRow, pattern []WorkDay) ImportValidation {
	expected := CalculateWorkingDaysForRecord(row.StartDate, row.EndDate, pattern)
	expectedAmount := generic.NewAmountFromInt(expected, generic.UnitDays)
	diff := row.SuppliedDays.Sub(expectedAmount).Abs()

	v := ImportValidation{
		Row:           row.Row,
		EmployeeID:    row.EmployeeID,
		SuppliedDays:  row.SuppliedDays,
		ExpectedDays:  expected,
		Difference:    diff,
		CorrectedDays: expectedAmount,
	}

	switch {
	case diff.Value.LessThanOrEqual(validTolerance):
		v.Status = ImportValid
		v.CorrectedDays = row.SuppliedDays
	case diff.Value.LessThanOrEqual(warningTolerance):
		v.Status = ImportWarning
	default:
		v.Status = ImportError
	}
	return v
}

// ValidateImport validates every row against its employee's pattern. Rows
// for employees missing from patterns are checked against an empty pattern.
func ValidateImport(rows []ImportRow, patterns map[generic.EntityID][]WorkDay) []ImportValidation {
	out := make([]ImportValidation, 0, len(rows))
	for _, row := range rows {
		out = append(out, ValidateImportRow(row, patterns[row.EmployeeID]))
	}
	return out
}
