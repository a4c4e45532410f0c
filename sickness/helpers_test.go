package sickness_test

import (
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.TimePoint { return generic.MustDate(s) }

func datePtr(s string) *generic.TimePoint {
	d := generic.MustDate(s)
	return &d
}

func days(n float64) generic.Amount { return generic.Days(n) }

func workingOn(working ...sickness.Weekday) []sickness.WorkDay {
	pattern := make([]sickness.WorkDay, 0, len(sickness.Weekdays))
	for _, d := range sickness.Weekdays {
		isWorking := false
		for _, w := range working {
			if w == d {
				isWorking = true
			}
		}
		pattern = append(pattern, sickness.WorkDay{Day: d, IsWorking: isWorking})
	}
	return pattern
}

func monToFri() []sickness.WorkDay {
	return workingOn(sickness.Monday, sickness.Tuesday, sickness.Wednesday, sickness.Thursday, sickness.Friday)
}

func absence(id, start, end string) sickness.SicknessRecord {
	return sickness.SicknessRecord{
		ID:         id,
		EmployeeID: "emp-1",
		StartDate:  date(start),
		EndDate:    datePtr(end),
	}
}

func ongoing(id, start string) sickness.SicknessRecord {
	return sickness.SicknessRecord{
		ID:         id,
		EmployeeID: "emp-1",
		StartDate:  date(start),
	}
}
