/*
Package generic provides the date and quantity primitives the sickness
engine is built on.

PURPOSE:
  Sickness entitlement is pure date arithmetic over day counts. This
  package holds the pieces that know nothing about SSP or OSP rules:
  dates without time-of-day, inclusive periods, and decimal day amounts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A day quantity backed by decimal.Decimal (stored day counts
    may be fractional, e.g. half days imported from payroll)
  - EntityID: Type-safe employee identifier

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal avoids floating-point drift in day totals
  2. Type Safety: EntityID is not interchangeable with other string IDs
  3. Value semantics: every operation returns a new Amount

USAGE:
  used := generic.NewAmount(12, generic.UnitDays)
  allowance := generic.NewAmount(10, generic.UnitDays)
  spill := used.Sub(used.Min(allowance)) // 2 days

SEE ALSO:
  - time.go: TimePoint (date-only)
  - period.go: Period and rolling windows
  - errors.go: Sentinel errors shared by every layer
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitWeeks Unit = "weeks"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Days is shorthand for an Amount in UnitDays.
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ParseAmount parses a decimal string. Malformed input yields zero days;
// stored day counts are never allowed to fail a read.
func ParseAmount(s string, unit Unit) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero, Unit: unit}
	}
	return Amount{Value: d, Unit: unit}
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) Abs() Amount                  { return Amount{Value: a.Value.Abs(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string               { return a.Value.String() }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative amounts to zero. Remaining balances are never
// reported below zero.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
