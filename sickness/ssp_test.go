package sickness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// WORKED SCENARIOS
// =============================================================================

func TestComputeSSPUsage_SingleWeekAbsence(t *testing.T) {
	// GIVEN: Mon-Fri pattern, sick Mon 2024-01-15 .. Fri 2024-01-19
	// WHEN: Computing usage during 2024
	// THEN: 5 qualifying days - 3 waiting days = 2 paid

	records := []sickness.SicknessRecord{absence("r1", "2024-01-15", "2024-01-19")}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-06-01"))

	assert.Equal(t, 2, usage.SSPUsedCurrentYear)
	assert.Equal(t, 2, usage.SSPUsedRolling12)
	assert.Equal(t, 5, usage.QualifyingDaysPerWeek)
	assert.Equal(t, 140, usage.SSPEntitledDays)
	assert.Equal(t, 138, usage.SSPRemainingRolling12())
}

func TestComputeSSPUsage_LinkedAbsencesServeWaitingDaysOnce(t *testing.T) {
	// GIVEN: Two full-week absences 17 days apart
	// WHEN: They link into one chain
	// THEN: (5 + 5) - 3 = 7 paid days

	records := []sickness.SicknessRecord{
		absence("r1", "2024-01-15", "2024-01-19"),
		absence("r2", "2024-02-05", "2024-02-09"),
	}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-06-01"))

	assert.Equal(t, 7, usage.SSPUsedCurrentYear)
}

func TestComputeSSPUsage_ThreeDaySecondAbsenceIsNotLinked(t *testing.T) {
	// GIVEN: Second absence Thu 2024-02-01 .. Mon 2024-02-05 (3 qualifying days)
	// WHEN: Computing usage
	// THEN: It is not a PIW, so only the first absence pays 2 days

	records := []sickness.SicknessRecord{
		absence("r1", "2024-01-15", "2024-01-19"),
		absence("r2", "2024-02-01", "2024-02-05"),
	}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-06-01"))

	assert.Equal(t, 2, usage.SSPUsedCurrentYear)
}

func TestComputeSSPUsage_ShortAbsenceContributesNothing(t *testing.T) {
	records := []sickness.SicknessRecord{absence("r1", "2024-01-15", "2024-01-16")}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-06-01"))

	assert.Equal(t, 0, usage.SSPUsedCurrentYear)
	assert.Equal(t, 0, usage.SSPUsedRolling12)
}

func TestComputeSSPUsage_PartTimeCap(t *testing.T) {
	// GIVEN: Mon/Wed/Fri pattern
	// THEN: Entitlement is 28 * 3 = 84 days

	pattern := workingOn(sickness.Monday, sickness.Wednesday, sickness.Friday)

	usage := sickness.ComputeSSPUsage(pattern, nil, date("2024-06-01"))

	assert.Equal(t, 3, usage.QualifyingDaysPerWeek)
	assert.Equal(t, 84, usage.SSPEntitledDays)
	assert.Equal(t, 84, usage.SSPRemainingRolling12())
}

func TestComputeSSPUsage_EmptyPatternKeepsDefaultCapButPaysNothing(t *testing.T) {
	records := []sickness.SicknessRecord{absence("r1", "2024-01-15", "2024-01-19")}

	usage := sickness.ComputeSSPUsage(nil, records, date("2024-06-01"))

	assert.Equal(t, 140, usage.SSPEntitledDays)
	assert.Equal(t, 0, usage.SSPUsedCurrentYear)
}

// =============================================================================
// WAITING DAYS AND WINDOW CLIPPING
// =============================================================================

func TestSSPDaysInPeriod_WaitingDaysNeverCountInsideWindow(t *testing.T) {
	// GIVEN: Sick Mon 2024-01-15 .. Fri 2024-01-19
	// WHEN: The window starts in the middle of the waiting days
	// THEN: Only Thu and Fri are paid

	q := sickness.ResolveQualifyingDays(monToFri())
	chains := sickness.BuildChains([]sickness.SicknessRecord{absence("r1", "2024-01-15", "2024-01-19")}, q)

	assert.Equal(t, 2, sickness.SSPDaysInPeriod(chains, q, generic.Period{Start: date("2024-01-16"), End: date("2024-01-31")}))
	assert.Equal(t, 0, sickness.SSPDaysInPeriod(chains, q, generic.Period{Start: date("2024-01-15"), End: date("2024-01-17")}))
	assert.Equal(t, 1, sickness.SSPDaysInPeriod(chains, q, generic.Period{Start: date("2024-01-19"), End: date("2024-01-19")}))
}

func TestComputeSSPUsage_ChainCrossingYearEnd(t *testing.T) {
	// GIVEN: Sick Wed 2023-12-27 .. Fri 2024-01-05
	// WHEN: Waiting days fall in 2023
	// THEN: All 5 January qualifying days are paid in 2024

	records := []sickness.SicknessRecord{absence("r1", "2023-12-27", "2024-01-05")}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-03-01"))

	assert.Equal(t, 5, usage.SSPUsedCurrentYear)
	assert.Equal(t, 5, usage.SSPUsedRolling12)
}

func TestComputeSSPUsage_RollingWindowExcludesOldChains(t *testing.T) {
	// GIVEN: An absence in January 2023, today 2024-06-01
	// THEN: Nothing falls in the rolling window [2023-06-02, 2024-06-01]

	records := []sickness.SicknessRecord{absence("r1", "2023-01-16", "2023-01-20")}

	usage := sickness.ComputeSSPUsage(monToFri(), records, date("2024-06-01"))

	assert.True(t, usage.Rolling12.Start.Equal(date("2023-06-02")))
	assert.True(t, usage.Rolling12.End.Equal(date("2024-06-01")))
	assert.Equal(t, 0, usage.SSPUsedRolling12)
	assert.Equal(t, 0, usage.SSPUsedCurrentYear)
}

// =============================================================================
// CAP
// =============================================================================

func TestSSPDaysInPeriod_FullYearAbsenceIsCapped(t *testing.T) {
	// GIVEN: Sick every day of 2024 on a Mon-Fri pattern (262 qualifying days)
	// WHEN: Counting paid days
	// THEN: Capped at 28 * 5 = 140

	q := sickness.ResolveQualifyingDays(monToFri())
	chains := sickness.BuildChains([]sickness.SicknessRecord{absence("r1", "2024-01-01", "2024-12-31")}, q)

	assert.Equal(t, 140, sickness.SSPDaysInPeriod(chains, q, generic.CalendarYear(2024)))
}

func TestSSPDaysInPeriod_CapSpansLinkedPIWs(t *testing.T) {
	// GIVEN: Part-time Mon/Wed/Fri (cap 84), two long absences 30 days apart
	// THEN: The chain pays no more than 84 across both

	pattern := workingOn(sickness.Monday, sickness.Wednesday, sickness.Friday)
	q := sickness.ResolveQualifyingDays(pattern)
	records := []sickness.SicknessRecord{
		absence("r1", "2024-01-01", "2024-05-31"),
		absence("r2", "2024-07-01", "2024-12-31"),
	}
	chains := sickness.BuildChains(records, q)
	require.Len(t, chains, 1)

	assert.Equal(t, 84, sickness.SSPDaysInPeriod(chains, q, generic.CalendarYear(2024)))
}

func TestDescribeChains_ReportsExhaustion(t *testing.T) {
	q := sickness.ResolveQualifyingDays(monToFri())
	chains := sickness.BuildChains([]sickness.SicknessRecord{absence("r1", "2024-01-01", "2024-12-31")}, q)

	summaries := sickness.DescribeChains(chains, q)

	require.Len(t, summaries, 1)
	cs := summaries[0]
	assert.Equal(t, 1, cs.PIWCount)
	assert.Equal(t, 262, cs.QualifyingDays)
	assert.Equal(t, 3, cs.WaitingDays)
	assert.Equal(t, 140, cs.SSPDays)
	assert.True(t, cs.CapReached)
	require.NotNil(t, cs.ExhaustedOn)
	assert.Equal(t, "2024-07-17", cs.ExhaustedOn.String())
}

func TestDescribeChains_ShortChain(t *testing.T) {
	q := sickness.ResolveQualifyingDays(monToFri())
	chains := sickness.BuildChains([]sickness.SicknessRecord{absence("r1", "2024-01-15", "2024-01-19")}, q)

	summaries := sickness.DescribeChains(chains, q)

	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].WaitingDays)
	assert.Equal(t, 2, summaries[0].SSPDays)
	assert.False(t, summaries[0].CapReached)
	assert.Nil(t, summaries[0].ExhaustedOn)
}

// =============================================================================
// PURITY
// =============================================================================

func TestComputeSSPUsage_Idempotent(t *testing.T) {
	records := []sickness.SicknessRecord{
		absence("r2", "2024-02-05", "2024-02-09"),
		absence("r1", "2024-01-15", "2024-01-19"),
	}
	today := date("2024-06-01")

	first := sickness.ComputeSSPUsage(monToFri(), records, today)
	second := sickness.ComputeSSPUsage(monToFri(), records, today)

	assert.Equal(t, first, second)
	assert.Equal(t, "r2", records[0].ID, "input order untouched")
}
