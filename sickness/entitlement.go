package sickness

import (
	"sort"

	"github.com/warp/sickpay-engine/generic"
)

// =============================================================================
// ENTITLEMENT TIERS - OSP allowances by length of service
// =============================================================================

// EntitlementTier grants full-pay and half-pay OSP days to employees whose
// service length falls in [MinServiceMonths, MaxServiceMonths).
type EntitlementTier struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	MinServiceMonths int     `json:"min_service_months"`
	MaxServiceMonths *int    `json:"max_service_months,omitempty"` // nil = no upper bound
	FullPayDays      float64 `json:"full_pay_days"`
	HalfPayDays      float64 `json:"half_pay_days"`
}

func (t EntitlementTier) covers(months int) bool {
	if months < t.MinServiceMonths {
		return false
	}
	return t.MaxServiceMonths == nil || months < *t.MaxServiceMonths
}

// OpeningBalance holds OSP days carried in from before the system was in
// use, entered manually per employee.
type OpeningBalance struct {
	EmployeeID  generic.EntityID
	FullPayDays generic.Amount
	HalfPayDays generic.Amount
}

// ResolveTier picks the tier covering the employee's service at asOf.
// Tiers are checked in ascending MinServiceMonths order; the first match
// wins. Returns false when no tier applies.
func ResolveTier(tiers []EntitlementTier, hireDate, asOf generic.TimePoint) (EntitlementTier, bool) {
	months := 0
	if !hireDate.IsZero() {
		months = generic.MonthsBetween(hireDate, asOf)
	}

	sorted := make([]EntitlementTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinServiceMonths < sorted[j].MinServiceMonths
	})

	for _, t := range sorted {
		if t.covers(months) {
			return t, true
		}
	}
	return EntitlementTier{}, false
}

// Allowances are the OSP day allowances an allocation runs against: the
// tier's entitlement plus the opening balance.
type Allowances struct {
	TierName    string
	FullPayDays generic.Amount
	HalfPayDays generic.Amount
}

// ComputeAllowances combines a resolved tier (if any) with the opening
// balance.
func ComputeAllowances(tier *EntitlementTier, opening OpeningBalance) Allowances {
	a := Allowances{
		FullPayDays: generic.Days(0).Add(opening.FullPayDays),
		HalfPayDays: generic.Days(0).Add(opening.HalfPayDays),
	}
	if tier != nil {
		a.TierName = tier.Name
		a.FullPayDays = a.FullPayDays.Add(generic.Days(tier.FullPayDays))
		a.HalfPayDays = a.HalfPayDays.Add(generic.Days(tier.HalfPayDays))
	}
	return a
}
