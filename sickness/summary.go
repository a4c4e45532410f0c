/*
summary.go - Sickness entitlement summary for one employee

PURPOSE:
  Fetches the employee's pattern, records and OSP entitlement, then runs
  the pure SSP and OSP calculations on that snapshot.

FAILURE POLICY (availability over strictness):
  Pattern fetch fails   -> logged, standard Mon-Fri pattern used
  Pattern is empty      -> resolver default (5 days/week, nothing qualifies)
  Records fetch fails   -> SSPUsage: logged, treated as no records
                           Summary:  logged, result is Unavailable
  Entitlement fails     -> Summary:  logged, result is Unavailable

  Summary never returns an error; callers inspect SummaryResult.Available()
  so batch reports keep going when one employee cannot be computed.

SEE ALSO:
  - ssp.go, osp.go: The calculations
  - report.go: Batch use of Summary
*/
package sickness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/logging"
)

// Summary is the combined SSP and OSP position of one employee.
type Summary struct {
	EmployeeID       generic.EntityID
	AsOf             generic.TimePoint
	SSP              SSPUsage
	Allowances       Allowances
	RollingWindow    generic.Period
	RollingTotalUsed generic.Amount
	OSP              OSPAllocation
}

// SummaryResult is either an available Summary or the reason it is not.
type SummaryResult struct {
	EmployeeID generic.EntityID
	Summary    *Summary
	Err        error
}

func (r SummaryResult) Available() bool { return r.Summary != nil }

// SummaryService computes summaries from the stores.
type SummaryService struct {
	Patterns     WorkPatternStore
	Records      SicknessRecordStore
	Entitlements EntitlementStore
	Logger       *slog.Logger
	Clock        generic.Clock
}

func NewSummaryService(patterns WorkPatternStore, records SicknessRecordStore, entitlements EntitlementStore, logger *slog.Logger) *SummaryService {
	return &SummaryService{
		Patterns:     patterns,
		Records:      records,
		Entitlements: entitlements,
		Logger:       logger,
		Clock:        generic.Today,
	}
}

func (s *SummaryService) today() generic.TimePoint {
	if s.Clock == nil {
		return generic.Today()
	}
	return s.Clock()
}

// pattern fetches the work pattern, substituting the standard pattern when
// the store fails.
func (s *SummaryService) pattern(ctx context.Context, log *slog.Logger, employeeID generic.EntityID) []WorkDay {
	pattern, err := s.Patterns.FetchWorkPatterns(ctx, employeeID)
	if err != nil {
		log.ErrorContext(ctx, "work pattern fetch failed, using standard pattern",
			slog.String("employee_id", string(employeeID)),
			slog.Any("error", err),
		)
		return StandardWorkPattern()
	}
	if len(pattern) == 0 {
		log.DebugContext(ctx, "no work pattern on file",
			slog.String("employee_id", string(employeeID)),
			slog.Int("assumed_days_per_week", DefaultDaysPerWeek),
		)
	}
	return pattern
}

// SSPUsage never fails: store errors are logged and count as no data.
func (s *SummaryService) SSPUsage(ctx context.Context, employeeID generic.EntityID) SSPUsage {
	log := logging.FromContext(ctx, s.Logger)
	pattern := s.pattern(ctx, log, employeeID)

	records, err := s.Records.GetSicknessRecords(ctx, employeeID)
	if err != nil {
		log.ErrorContext(ctx, "sickness records fetch failed, reporting zero usage",
			slog.String("employee_id", string(employeeID)),
			slog.Any("error", err),
		)
		records = nil
	}

	return ComputeSSPUsage(pattern, records, s.today())
}

// Chains returns the linked-chain breakdown for an employee.
func (s *SummaryService) Chains(ctx context.Context, employeeID generic.EntityID) ([]ChainSummary, error) {
	log := logging.FromContext(ctx, s.Logger)
	pattern := s.pattern(ctx, log, employeeID)

	records, err := s.Records.GetSicknessRecords(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load sickness records: %w", err)
	}

	q := ResolveQualifyingDays(pattern)
	return DescribeChains(BuildChains(records, q), q), nil
}

// Summary computes the full entitlement summary for emp.
func (s *SummaryService) Summary(ctx context.Context, emp Employee) SummaryResult {
	log := logging.FromContext(ctx, s.Logger).With(slog.String("employee_id", string(emp.ID)))
	result := SummaryResult{EmployeeID: emp.ID}

	pattern := s.pattern(ctx, log, emp.ID)

	records, err := s.Records.GetSicknessRecords(ctx, emp.ID)
	if err != nil {
		log.ErrorContext(ctx, "sickness summary unavailable: records fetch failed", slog.Any("error", err))
		result.Err = fmt.Errorf("load sickness records: %w", err)
		return result
	}

	allowances, err := s.allowances(ctx, log, emp)
	if err != nil {
		log.ErrorContext(ctx, "sickness summary unavailable: entitlement fetch failed", slog.Any("error", err))
		result.Err = err
		return result
	}

	today := s.today()
	window := generic.RollingYear(today)
	used := RollingTotalDays(records, window)

	result.Summary = &Summary{
		EmployeeID:       emp.ID,
		AsOf:             today,
		SSP:              ComputeSSPUsage(pattern, records, today),
		Allowances:       allowances,
		RollingWindow:    window,
		RollingTotalUsed: used,
		OSP:              Allocate(allowances.FullPayDays, allowances.HalfPayDays, used),
	}
	return result
}

func (s *SummaryService) allowances(ctx context.Context, log *slog.Logger, emp Employee) (Allowances, error) {
	tiers, err := s.Entitlements.ListEntitlementTiers(ctx)
	if err != nil {
		return Allowances{}, fmt.Errorf("load entitlement tiers: %w", err)
	}
	opening, err := s.Entitlements.GetOpeningBalance(ctx, emp.ID)
	if err != nil {
		return Allowances{}, fmt.Errorf("load opening balance: %w", err)
	}

	tier, ok := ResolveTier(tiers, emp.HireDate, s.today())
	if !ok {
		log.WarnContext(ctx, "no OSP entitlement tier matches employee service",
			slog.String("hire_date", emp.HireDate.String()),
		)
		return ComputeAllowances(nil, opening), nil
	}
	return ComputeAllowances(&tier, opening), nil
}
