package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - A calendar date with no time-of-day
// =============================================================================

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// TimePoint is a calendar date. All values are normalized to midnight UTC so
// that day arithmetic is never skewed by DST transitions or the caller's zone.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping the calendar date as seen in t's
// own location.
func DateOf(t time.Time) TimePoint {
	if t.IsZero() {
		return TimePoint{}
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals in tests and fixtures.
func MustDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// Clock returns "today". Services take a Clock so reporting windows can be
// pinned in tests.
type Clock func() TimePoint

// FixedClock always reports the same date.
func FixedClock(tp TimePoint) Clock {
	return func() TimePoint { return tp }
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return DateOf(tp.normalize().AddDate(0, 0, n)) }
func (tp TimePoint) AddMonths(n int) TimePoint { return DateOf(tp.normalize().AddDate(0, n, 0)) }
func (tp TimePoint) AddYears(n int) TimePoint  { return DateOf(tp.normalize().AddDate(n, 0, 0)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.normalize().Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.normalize().Format(DateLayout)
}

// MarshalText renders the date as YYYY-MM-DD; the zero date renders empty.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*tp = TimePoint{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween is the signed number of calendar days from `from` to `to`.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }

// MonthsBetween counts whole months from `from` to `to`, never negative.
func MonthsBetween(from, to TimePoint) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
