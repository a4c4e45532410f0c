/*
osp.go - Occupational Sick Pay allocation

PURPOSE:
  Splits an employee's rolling sickness usage across their OSP allowances.
  Usage drains the full-pay allowance first and only then spills into the
  half-pay allowance. This ordering is a business rule; nothing in the
  data implies it.

ALLOCATION:
  fullUsed           = min(used, fullAllowance)
  remainingAfterFull = max(0, used - fullUsed)
  halfUsed           = min(remainingAfterFull, halfAllowance)
  remaining          = max(0, allowance - used)   per bucket

  Usage beyond both allowances is reported as Unallocated (unpaid sickness).

EXAMPLE:
  used 12, full 10, half 20
  -> full used 10 / remaining 0, half used 2 / remaining 18

SEE ALSO:
  - entitlement.go: Where the allowances come from
  - summary.go: Feeds RollingTotalDays into Allocate
*/
package sickness

import "github.com/warp/sickpay-engine/generic"

// =============================================================================
// PAY BUCKETS - Drained in priority order
// =============================================================================

type PayBand string

const (
	PayBandFull PayBand = "full_pay"
	PayBandHalf PayBand = "half_pay"
)

// BucketAllocation is the usage drawn from one allowance.
type BucketAllocation struct {
	Band      PayBand
	Allowance generic.Amount
	Used      generic.Amount
	Remaining generic.Amount
}

// OSPAllocation is the result of allocating rolling usage to the OSP bands.
type OSPAllocation struct {
	TotalUsed   generic.Amount
	Full        BucketAllocation
	Half        BucketAllocation
	Unallocated generic.Amount
}

// allocate drains buckets in order, taking min(remaining, allowance) from
// each. Non-positive allowances are skipped.
func allocate(used generic.Amount, bands []PayBand, allowances []generic.Amount) ([]BucketAllocation, generic.Amount) {
	remaining := used.FloorZero()
	out := make([]BucketAllocation, len(bands))

	for i, band := range bands {
		allowance := allowances[i].FloorZero()
		take := remaining.Min(allowance)
		out[i] = BucketAllocation{
			Band:      band,
			Allowance: allowance,
			Used:      take,
			Remaining: allowance.Sub(take).FloorZero(),
		}
		remaining = remaining.Sub(take).FloorZero()
	}
	return out, remaining
}

// Allocate applies rolling usage to the full-pay allowance, then the
// half-pay allowance.
func Allocate(fullAllowance, halfAllowance, rollingTotalUsed generic.Amount) OSPAllocation {
	buckets, rest := allocate(
		rollingTotalUsed,
		[]PayBand{PayBandFull, PayBandHalf},
		[]generic.Amount{fullAllowance, halfAllowance},
	)
	return OSPAllocation{
		TotalUsed:   rollingTotalUsed,
		Full:        buckets[0],
		Half:        buckets[1],
		Unallocated: rest,
	}
}

// RollingTotalDays sums the stored TotalDays of every record that overlaps
// window. Ongoing records extend indefinitely, so they overlap any window
// that ends on or after their start.
func RollingTotalDays(records []SicknessRecord, window generic.Period) generic.Amount {
	total := generic.Days(0)
	for _, r := range records {
		if recordOverlaps(r, window) {
			total = total.Add(r.TotalDays)
		}
	}
	return total
}

func recordOverlaps(r SicknessRecord, window generic.Period) bool {
	if r.StartDate.After(window.End) {
		return false
	}
	return r.EndDate == nil || r.EndDate.AfterOrEqual(window.Start)
}
