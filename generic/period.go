package generic

// =============================================================================
// PERIOD - Inclusive date range used for reporting windows
// =============================================================================

// Period is the inclusive range [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Rolling 12 months ending 2025-06-30: 2024-07-01 - 2025-06-30
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether the two inclusive ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// IsValid is false when End precedes Start.
func (p Period) IsValid() bool {
	return p.Start.BeforeOrEqual(p.End)
}

// Days returns the number of calendar days in the period, 0 if inverted.
func (p Period) Days() int {
	if !p.IsValid() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
	PeriodRolling      PeriodType = "rolling"       // Rolling 12 months
)

// PeriodConfig defines how to calculate the reporting window around a date.
type PeriodConfig struct {
	Type PeriodType
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	switch pc.Type {
	case PeriodRolling:
		return RollingYear(date)
	default:
		return CalendarYear(date.Year())
	}
}

// CalendarYear is Jan 1 - Dec 31 of year.
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// RollingYear is the twelve months ending on (and including) date:
// [date - 1 year + 1 day, date].
func RollingYear(date TimePoint) Period {
	return Period{
		Start: date.AddYears(-1).AddDays(1),
		End:   date,
	}
}
