/*
ssp.go - Statutory Sick Pay usage over linked chains

PURPOSE:
  Walks every chain day by day and decides which qualifying days SSP pays
  for, then counts the paid days that fall inside a reporting window.

RULES (applied once per chain, never per record):
  Waiting days: the first WaitingDays qualifying days of a chain are unpaid.
  Cap:          at most MaxSSPWeeks * DaysPerWeek days are paid per chain.

  A chain of two PIWs therefore serves its waiting days only in the first
  PIW, and the cap keeps counting across both.

WHY DAY BY DAY:
  Waiting days, the cap, and window clipping interact at arbitrary dates
  (a window can start in the middle of the waiting days, the cap can be hit
  inside the window). Walking days keeps all three exact without closed-form
  weekday arithmetic.

EXAMPLE:
  Mon-Fri pattern, sick Mon 2024-01-15 .. Fri 2024-01-19
  qualifying days 5, waiting 3, paid 2 -> SSPDaysInPeriod(..., 2024) == 2

SEE ALSO:
  - chain.go: Builds the chains walked here
  - summary.go: Runs this for the calendar-year and rolling windows
*/
package sickness

import "github.com/warp/sickpay-engine/generic"

const (
	// WaitingDays is the number of unpaid qualifying days at the start of
	// each linked chain.
	WaitingDays = 3

	// MaxSSPWeeks is the maximum number of qualifying weeks SSP pays per
	// linked chain.
	MaxSSPWeeks = 28
)

// SSPCap is the per-chain paid-day cap for a pattern.
func SSPCap(q QualifyingDays) int {
	return MaxSSPWeeks * q.DaysPerWeek
}

// chainWalk visits every qualifying day of a chain in date order and reports
// whether SSP pays for it.
func chainWalk(chain Chain, q QualifyingDays, visit func(day generic.TimePoint, paid bool)) {
	limit := SSPCap(q)
	seen, covered := 0, 0

	for _, span := range chain.Spans {
		for day := span.Start; day.BeforeOrEqual(span.End); day = day.AddDays(1) {
			if !q.Qualifies(day) {
				continue
			}
			seen++
			paid := seen > WaitingDays && covered < limit
			if paid {
				covered++
			}
			visit(day, paid)
		}
	}
}

// SSPDaysInPeriod counts the SSP-paid days of all chains that fall inside
// window. Days outside the window still consume waiting days and cap.
func SSPDaysInPeriod(chains []Chain, q QualifyingDays, window generic.Period) int {
	used := 0
	for _, chain := range chains {
		chainWalk(chain, q, func(day generic.TimePoint, paid bool) {
			if paid && window.Contains(day) {
				used++
			}
		})
	}
	return used
}

// =============================================================================
// SSP USAGE - Aggregate for one employee
// =============================================================================

// SSPUsage is the SSP part of an employee's entitlement summary.
type SSPUsage struct {
	QualifyingDaysPerWeek int
	SSPEntitledDays       int
	SSPUsedCurrentYear    int
	SSPUsedRolling12      int
	CurrentYear           generic.Period
	Rolling12             generic.Period
}

// SSPRemainingRolling12 is the entitlement left after rolling usage,
// floored at zero.
func (u SSPUsage) SSPRemainingRolling12() int {
	if u.SSPUsedRolling12 >= u.SSPEntitledDays {
		return 0
	}
	return u.SSPEntitledDays - u.SSPUsedRolling12
}

// ComputeSSPUsage is the pure SSP calculation for one employee snapshot:
// the calendar year containing today, and the rolling twelve months ending
// today.
func ComputeSSPUsage(pattern []WorkDay, records []SicknessRecord, today generic.TimePoint) SSPUsage {
	q := ResolveQualifyingDays(pattern)
	chains := BuildChains(records, q)

	year := generic.PeriodConfig{Type: generic.PeriodCalendarYear}.PeriodFor(today)
	rolling := generic.PeriodConfig{Type: generic.PeriodRolling}.PeriodFor(today)

	return SSPUsage{
		QualifyingDaysPerWeek: q.DaysPerWeek,
		SSPEntitledDays:       SSPCap(q),
		SSPUsedCurrentYear:    SSPDaysInPeriod(chains, q, year),
		SSPUsedRolling12:      SSPDaysInPeriod(chains, q, rolling),
		CurrentYear:           year,
		Rolling12:             rolling,
	}
}

// =============================================================================
// CHAIN BREAKDOWN - Reporting view of each chain
// =============================================================================

// ChainSummary describes one linked chain for reports.
type ChainSummary struct {
	Start          generic.TimePoint
	End            generic.TimePoint
	PIWCount       int
	QualifyingDays int
	WaitingDays    int
	SSPDays        int
	CapReached     bool
	// ExhaustedOn is the last paid day when the cap was reached.
	ExhaustedOn *generic.TimePoint
}

// DescribeChains summarises every chain without window clipping.
func DescribeChains(chains []Chain, q QualifyingDays) []ChainSummary {
	limit := SSPCap(q)
	out := make([]ChainSummary, 0, len(chains))

	for _, chain := range chains {
		cs := ChainSummary{
			Start:    chain.Start(),
			End:      chain.End(),
			PIWCount: len(chain.Spans),
		}
		chainWalk(chain, q, func(day generic.TimePoint, paid bool) {
			cs.QualifyingDays++
			if cs.QualifyingDays <= WaitingDays {
				cs.WaitingDays++
			}
			if paid {
				cs.SSPDays++
				if cs.SSPDays == limit {
					d := day
					cs.ExhaustedOn = &d
				}
			}
		})
		cs.CapReached = limit > 0 && cs.SSPDays >= limit
		out = append(out, cs)
	}
	return out
}
