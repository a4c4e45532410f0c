package sickness

import "github.com/warp/sickpay-engine/generic"

// CountQualifyingDaysBetween counts the qualifying days in [start, end],
// both ends inclusive. An inverted range or an empty table counts 0.
//
// The walk is day by day; spans are bounded so this stays cheap, and it is
// the same iteration the SSP calculator uses.
func CountQualifyingDaysBetween(start, end generic.TimePoint, q QualifyingDays) int {
	if start.After(end) || q.IsEmpty() {
		return 0
	}

	count := 0
	for day := start; day.BeforeOrEqual(end); day = day.AddDays(1) {
		if q.Qualifies(day) {
			count++
		}
	}
	return count
}

// CalculateWorkingDaysForRecord is the expected day count for one absence
// against a raw work pattern, as used by import validation.
//
//   - missing start date: 0
//   - ongoing absence (nil end): 1 if the start day qualifies, else 0
//   - otherwise: qualifying days in [start, end]
func CalculateWorkingDaysForRecord(start generic.TimePoint, end *generic.TimePoint, pattern []WorkDay) int {
	if start.IsZero() {
		return 0
	}

	q := ResolveQualifyingDays(pattern)
	if end == nil || end.IsZero() {
		if q.Qualifies(start) {
			return 1
		}
		return 0
	}
	return CountQualifyingDaysBetween(start, *end, q)
}
