package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sickpay-engine/generic"
)

// =============================================================================
// TIME POINT
// =============================================================================

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 23:30 local on the day the clocks go forward
	tp := generic.DateOf(time.Date(2024, time.March, 31, 23, 30, 0, 0, london))

	assert.Equal(t, "2024-03-31", tp.String())
	assert.Equal(t, time.Sunday, tp.Weekday())
}

func TestDaysBetween_AcrossDSTIsWholeDays(t *testing.T) {
	from := generic.MustDate("2024-03-30")
	to := generic.MustDate("2024-04-01")

	assert.Equal(t, 2, generic.DaysBetween(from, to))
	assert.Equal(t, -2, generic.DaysBetween(to, from))
}

func TestTimePoint_JSONRoundTripsAsDateString(t *testing.T) {
	type wrapper struct {
		Date generic.TimePoint `json:"date"`
	}

	raw, err := json.Marshal(wrapper{Date: generic.MustDate("2024-01-15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-15"}`, string(raw))

	var back wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29"}`), &back))
	assert.Equal(t, "2024-02-29", back.Date.String())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"29/02/2024"}`), &back))
}

func TestMonthsBetween(t *testing.T) {
	hire := generic.MustDate("2022-03-15")

	assert.Equal(t, 0, generic.MonthsBetween(hire, generic.MustDate("2022-04-14")))
	assert.Equal(t, 1, generic.MonthsBetween(hire, generic.MustDate("2022-04-15")))
	assert.Equal(t, 24, generic.MonthsBetween(hire, generic.MustDate("2024-03-15")))
	assert.Equal(t, 0, generic.MonthsBetween(hire, generic.MustDate("2021-01-01")), "never negative")
}

// =============================================================================
// PERIOD
// =============================================================================

func TestRollingYear_EndsTodayStartsOneYearMinusOneDayEarlier(t *testing.T) {
	p := generic.RollingYear(generic.MustDate("2025-06-30"))

	assert.Equal(t, "2024-07-01", p.Start.String())
	assert.Equal(t, "2025-06-30", p.End.String())
	assert.Equal(t, 365, p.Days())
}

func TestPeriodFor(t *testing.T) {
	date := generic.MustDate("2024-08-20")

	cal := generic.PeriodConfig{Type: generic.PeriodCalendarYear}.PeriodFor(date)
	assert.Equal(t, "[2024-01-01, 2024-12-31]", cal.String())

	rolling := generic.PeriodConfig{Type: generic.PeriodRolling}.PeriodFor(date)
	assert.Equal(t, "[2023-08-21, 2024-08-20]", rolling.String())
}

func TestPeriod_ContainsAndOverlapsAreInclusive(t *testing.T) {
	p := generic.Period{Start: generic.MustDate("2024-01-10"), End: generic.MustDate("2024-01-20")}

	assert.True(t, p.Contains(generic.MustDate("2024-01-10")))
	assert.True(t, p.Contains(generic.MustDate("2024-01-20")))
	assert.False(t, p.Contains(generic.MustDate("2024-01-21")))

	touching := generic.Period{Start: generic.MustDate("2024-01-20"), End: generic.MustDate("2024-01-25")}
	after := generic.Period{Start: generic.MustDate("2024-01-21"), End: generic.MustDate("2024-01-25")}
	assert.True(t, p.Overlaps(touching))
	assert.False(t, p.Overlaps(after))
}

func TestPeriod_InvertedHasNoDays(t *testing.T) {
	p := generic.Period{Start: generic.MustDate("2024-01-20"), End: generic.MustDate("2024-01-10")}

	assert.False(t, p.IsValid())
	assert.Equal(t, 0, p.Days())
}

// =============================================================================
// AMOUNT
// =============================================================================

func TestAmount_FloorZeroAndMinMax(t *testing.T) {
	a := generic.Days(2.5)
	b := generic.Days(4)

	assert.True(t, a.Min(b).Equal(a))
	assert.True(t, a.Max(b).Equal(b))
	assert.True(t, a.Sub(b).FloorZero().IsZero())
	assert.Equal(t, "1.5", b.Sub(a).String())
}

func TestParseAmount_MalformedIsZero(t *testing.T) {
	assert.True(t, generic.ParseAmount("abc", generic.UnitDays).IsZero())
	assert.Equal(t, "0.5", generic.ParseAmount("0.5", generic.UnitDays).String())
}
