package sickness

import "github.com/warp/sickpay-engine/generic"

// DefaultDaysPerWeek is assumed when an employee has no work pattern at all,
// so entitlement caps never collapse to zero for missing data.
const DefaultDaysPerWeek = 5

// =============================================================================
// QUALIFYING DAYS - Resolved form of a work pattern
// =============================================================================

// QualifyingDays is the resolved predicate "would this employee normally
// work on this weekday", plus the working-days-per-week figure that scales
// the SSP cap.
type QualifyingDays struct {
	Days        [7]bool
	DaysPerWeek int
}

// Qualifies reports whether the date's weekday is a qualifying day.
func (q QualifyingDays) Qualifies(tp generic.TimePoint) bool {
	return q.Days[WeekdayOf(tp)]
}

// IsEmpty is true when no weekday qualifies.
func (q QualifyingDays) IsEmpty() bool {
	for _, ok := range q.Days {
		if ok {
			return false
		}
	}
	return true
}

// Weekdays returns the qualifying weekdays in Monday-first order.
func (q QualifyingDays) Weekdays() []Weekday {
	var out []Weekday
	for _, d := range Weekdays {
		if q.Days[d] {
			out = append(out, d)
		}
	}
	return out
}

// ResolveQualifyingDays turns a (possibly empty or partial) work pattern into
// its qualifying-day table.
//
//   - DaysPerWeek counts entries with IsWorking set; an empty pattern
//     defaults to DefaultDaysPerWeek.
//   - Weekdays missing from the pattern are non-working.
//   - Entries with an invalid weekday never enter the table.
func ResolveQualifyingDays(pattern []WorkDay) QualifyingDays {
	var q QualifyingDays
	if len(pattern) == 0 {
		q.DaysPerWeek = DefaultDaysPerWeek
		return q
	}

	for _, wd := range pattern {
		if !wd.IsWorking {
			continue
		}
		q.DaysPerWeek++
		if wd.Day.Valid() {
			q.Days[wd.Day] = true
		}
	}
	return q
}

// StandardWorkPattern is Monday to Friday working, weekends off. It stands in
// for an employee's pattern when the pattern cannot be fetched.
func StandardWorkPattern() []WorkDay {
	pattern := make([]WorkDay, 0, len(Weekdays))
	for _, d := range Weekdays {
		pattern = append(pattern, WorkDay{Day: d, IsWorking: d <= Friday})
	}
	return pattern
}
