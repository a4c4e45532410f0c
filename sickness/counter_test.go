package sickness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

func TestCountQualifyingDaysBetween_SingleDay(t *testing.T) {
	q := sickness.ResolveQualifyingDays(monToFri())

	assert.Equal(t, 1, sickness.CountQualifyingDaysBetween(date("2024-01-15"), date("2024-01-15"), q), "Monday")
	assert.Equal(t, 0, sickness.CountQualifyingDaysBetween(date("2024-01-20"), date("2024-01-20"), q), "Saturday")
}

func TestCountQualifyingDaysBetween_InvertedRangeIsZero(t *testing.T) {
	q := sickness.ResolveQualifyingDays(monToFri())

	assert.Equal(t, 0, sickness.CountQualifyingDaysBetween(date("2024-01-19"), date("2024-01-15"), q))
}

func TestCountQualifyingDaysBetween_SpansWeekends(t *testing.T) {
	// GIVEN: Mon-Fri pattern
	// WHEN: Counting Mon 2024-01-15 .. Sun 2024-01-28
	// THEN: 10 qualifying days

	q := sickness.ResolveQualifyingDays(monToFri())

	assert.Equal(t, 10, sickness.CountQualifyingDaysBetween(date("2024-01-15"), date("2024-01-28"), q))
}

func TestCountQualifyingDaysBetween_EmptyPatternCountsNothing(t *testing.T) {
	q := sickness.ResolveQualifyingDays(nil)

	assert.Equal(t, 0, sickness.CountQualifyingDaysBetween(date("2024-01-01"), date("2024-12-31"), q))
}

func TestCalculateWorkingDaysForRecord(t *testing.T) {
	pattern := monToFri()

	tests := []struct {
		name  string
		start generic.TimePoint
		end   *generic.TimePoint
		want  int
	}{
		{"full week", date("2024-01-15"), datePtr("2024-01-21"), 5},
		{"ongoing from a working day", date("2024-01-15"), nil, 1},
		{"ongoing from a weekend", date("2024-01-20"), nil, 0},
		{"inverted", date("2024-01-19"), datePtr("2024-01-15"), 0},
		{"missing start", generic.TimePoint{}, datePtr("2024-01-19"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sickness.CalculateWorkingDaysForRecord(tt.start, tt.end, pattern)
			assert.Equal(t, tt.want, got)
		})
	}
}
