/*
Package sickness implements the sickness entitlement engine: Statutory Sick
Pay (SSP) waiting days and caps over linked Periods of Incapacity for Work,
and Occupational Sick Pay (OSP) full/half-pay allocation.

PURPOSE:
  Given an employee's work pattern and their sickness records, answer:
  - How many qualifying days does this absence cover?
  - Which absences are PIWs, and which PIWs link into one chain?
  - How many SSP days were paid in this year / the last rolling 12 months?
  - How much full-pay and half-pay OSP is left?

LAYERS (leaf first):
  workpattern.go  Work-Pattern Resolver    WorkDay[] -> QualifyingDays
  counter.go      Working-Day Counter      qualifying days in a date range
  chain.go        PIW/Chain Builder        records -> PIWs -> linked chains
  ssp.go          Entitlement Calculator   waiting days + 28-week cap
  osp.go          OSP Allocator            full pay first, then half pay

  Everything above is pure: no I/O, no shared state, same output for the
  same input. The services (summary.go, report.go, *_service.go) fetch from
  the stores and hand snapshots to the pure layer.

SEE ALSO:
  - store.go: Interfaces the services fetch through
  - generic/: TimePoint, Period, Amount
*/
package sickness

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/warp/sickpay-engine/generic"
)

// =============================================================================
// WEEKDAY - Explicit enumeration instead of string-keyed day names
// =============================================================================

// Weekday is a day of the working week, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	// InvalidWeekday is what malformed day names decode to. It never
	// qualifies.
	InvalidWeekday Weekday = -1
)

// Weekdays lists every valid weekday in order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return weekdayNames[d]
}

// ParseWeekday accepts full names and three-letter abbreviations in any
// case. Anything else returns InvalidWeekday and false.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return InvalidWeekday, false
	}
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if s == lower || s == lower[:3] {
			return Weekday(i), true
		}
	}
	return InvalidWeekday, false
}

// WeekdayOf maps a date onto the Monday-first enumeration.
func WeekdayOf(tp generic.TimePoint) Weekday {
	switch tp.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails on an unknown name; it decodes to InvalidWeekday
// so messy imported patterns degrade to "non-working" instead of erroring.
func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = InvalidWeekday
		return nil
	}
	*d, _ = ParseWeekday(s)
	return nil
}

// =============================================================================
// PERSISTED RECORDS (externally owned; CRUD through the stores)
// =============================================================================

// Employee is the subset of the HR employee record the engine needs.
type Employee struct {
	ID        generic.EntityID
	Name      string
	Email     string
	HireDate  generic.TimePoint
	CreatedAt time.Time
}

// WorkDay is one weekday of an employee's schedule. Start/End times are
// informational; only IsWorking drives qualifying days.
type WorkDay struct {
	Day       Weekday `json:"day"`
	IsWorking bool    `json:"is_working"`
	StartTime *string `json:"start_time,omitempty"` // "HH:MM"
	EndTime   *string `json:"end_time,omitempty"`
}

// SicknessRecord is one continuous absence. A nil EndDate means the absence
// is ongoing.
type SicknessRecord struct {
	ID         string
	EmployeeID generic.EntityID
	StartDate  generic.TimePoint
	EndDate    *generic.TimePoint
	TotalDays  generic.Amount // stored/imported day count
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LastDay is EndDate, or StartDate for an ongoing absence.
func (r SicknessRecord) LastDay() generic.TimePoint {
	if r.EndDate == nil {
		return r.StartDate
	}
	return *r.EndDate
}

// IsOngoing reports whether the absence has no end date yet.
func (r SicknessRecord) IsOngoing() bool { return r.EndDate == nil }
