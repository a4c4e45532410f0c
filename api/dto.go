/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, keeping the engine's
  types (TimePoint, Amount, Weekday) out of the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

FORMATS:
  Dates are "YYYY-MM-DD". Day amounts are JSON numbers (half days allowed).
  Weekdays are names ("Monday").

TYPES:
  Employee:    EmployeeDTO, CreateEmployeeRequest
  Pattern:     WorkPatternDTO, ReplaceWorkPatternRequest
  Records:     SicknessRecordDTO, SicknessRecordRequest
  SSP/OSP:     SSPUsageDTO, SicknessSummaryDTO, ChainDTO
  Report:      SicknessReportDTO, ReportRowDTO
  Imports:     ImportValidateRequest, ImportValidationDTO
  Scenarios:   ScenarioDTO

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	HireDate  string `json:"hire_date,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	HireDate generic.TimePoint `json:"hire_date"`
}

// WorkPatternDTO is an employee's stored pattern plus what it resolves to.
type WorkPatternDTO struct {
	EmployeeID            string             `json:"employee_id"`
	Days                  []sickness.WorkDay `json:"days"`
	QualifyingDaysPerWeek int                `json:"qualifying_days_per_week"`
	QualifyingWeekdays    []string           `json:"qualifying_weekdays"`
}

type ReplaceWorkPatternRequest struct {
	Days []sickness.WorkDay `json:"days"`
}

// SicknessRecordDTO represents one absence.
type SicknessRecordDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Ongoing    bool    `json:"ongoing"`
	TotalDays  float64 `json:"total_days"`
	Notes      string  `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// SicknessRecordRequest creates or updates an absence. A missing total_days
// is calculated from the employee's work pattern.
type SicknessRecordRequest struct {
	StartDate generic.TimePoint  `json:"start_date"`
	EndDate   *generic.TimePoint `json:"end_date"`
	TotalDays *float64           `json:"total_days"`
	Notes     string             `json:"notes"`
}

type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SSPUsageDTO is the SSP half of the entitlement summary.
type SSPUsageDTO struct {
	EmployeeID            string    `json:"employee_id"`
	QualifyingDaysPerWeek int       `json:"qualifying_days_per_week"`
	SSPEntitledDays       int       `json:"ssp_entitled_days"`
	SSPUsedCurrentYear    int       `json:"ssp_used_current_year"`
	SSPUsedRolling12      int       `json:"ssp_used_rolling_12"`
	SSPRemainingRolling12 int       `json:"ssp_remaining_rolling_12"`
	CurrentYear           PeriodDTO `json:"current_year"`
	Rolling12             PeriodDTO `json:"rolling_12"`
}

// PayBucketDTO is one OSP pay band.
type PayBucketDTO struct {
	Allowance float64 `json:"allowance"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type OSPDTO struct {
	TierName         string       `json:"tier_name,omitempty"`
	RollingWindow    PeriodDTO    `json:"rolling_window"`
	RollingTotalUsed float64      `json:"rolling_total_used"`
	FullPay          PayBucketDTO `json:"full_pay"`
	HalfPay          PayBucketDTO `json:"half_pay"`
	Unallocated      float64      `json:"unallocated"`
}

// SicknessSummaryDTO is the full entitlement summary. When Available is
// false the employee's data could not be loaded and SSP/OSP are omitted.
type SicknessSummaryDTO struct {
	EmployeeID string       `json:"employee_id"`
	Available  bool         `json:"available"`
	AsOf       string       `json:"as_of,omitempty"`
	SSP        *SSPUsageDTO `json:"ssp,omitempty"`
	OSP        *OSPDTO      `json:"osp,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// ChainDTO describes one linked PIW chain.
type ChainDTO struct {
	Start          string  `json:"start"`
	End            string  `json:"end"`
	PIWCount       int     `json:"piw_count"`
	QualifyingDays int     `json:"qualifying_days"`
	WaitingDays    int     `json:"waiting_days"`
	SSPDays        int     `json:"ssp_days"`
	CapReached     bool    `json:"cap_reached"`
	ExhaustedOn    *string `json:"exhausted_on,omitempty"`
}

type OpeningBalanceDTO struct {
	EmployeeID  string  `json:"employee_id"`
	FullPayDays float64 `json:"full_pay_days"`
	HalfPayDays float64 `json:"half_pay_days"`
}

// ReportRowDTO is one employee's line in the sickness report.
type ReportRowDTO struct {
	Employee EmployeeDTO        `json:"employee"`
	Summary  SicknessSummaryDTO `json:"summary"`
}

type SicknessReportDTO struct {
	Employees   int            `json:"employees"`
	Unavailable int            `json:"unavailable"`
	Rows        []ReportRowDTO `json:"rows"`
}

type ImportRowDTO struct {
	Row          int                `json:"row"`
	EmployeeID   string             `json:"employee_id"`
	StartDate    generic.TimePoint  `json:"start_date"`
	EndDate      *generic.TimePoint `json:"end_date"`
	SuppliedDays float64            `json:"supplied_days"`
}

type ImportValidateRequest struct {
	Rows []ImportRowDTO `json:"rows"`
}

type ImportValidationDTO struct {
	Row           int     `json:"row"`
	EmployeeID    string  `json:"employee_id"`
	Status        string  `json:"status"`
	SuppliedDays  float64 `json:"supplied_days"`
	ExpectedDays  int     `json:"expected_days"`
	Difference    float64 `json:"difference"`
	CorrectedDays float64 `json:"corrected_days"`
}

// WorkingDaysRequest counts working days either for a stored employee
// pattern or for a pattern supplied inline.
type WorkingDaysRequest struct {
	EmployeeID string             `json:"employee_id,omitempty"`
	Pattern    []sickness.WorkDay `json:"pattern,omitempty"`
	StartDate  generic.TimePoint  `json:"start_date"`
	EndDate    *generic.TimePoint `json:"end_date"`
}

type WorkingDaysDTO struct {
	WorkingDays int `json:"working_days"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Expected    string `json:"expected,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e sickness.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       string(e.ID),
		Name:     e.Name,
		Email:    e.Email,
		HireDate: e.HireDate.String(),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toWorkPatternDTO(employeeID generic.EntityID, days []sickness.WorkDay) WorkPatternDTO {
	q := sickness.ResolveQualifyingDays(days)
	names := make([]string, 0, 7)
	for _, d := range q.Weekdays() {
		names = append(names, d.String())
	}
	if days == nil {
		days = []sickness.WorkDay{}
	}
	return WorkPatternDTO{
		EmployeeID:            string(employeeID),
		Days:                  days,
		QualifyingDaysPerWeek: q.DaysPerWeek,
		QualifyingWeekdays:    names,
	}
}

func toSicknessRecordDTO(r sickness.SicknessRecord) SicknessRecordDTO {
	dto := SicknessRecordDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		StartDate:  r.StartDate.String(),
		Ongoing:    r.IsOngoing(),
		TotalDays:  r.TotalDays.Float64(),
		Notes:      r.Notes,
	}
	if r.EndDate != nil {
		end := r.EndDate.String()
		dto.EndDate = &end
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPeriodDTO(p generic.Period) PeriodDTO {
	return PeriodDTO{Start: p.Start.String(), End: p.End.String()}
}

func toSSPUsageDTO(employeeID generic.EntityID, u sickness.SSPUsage) SSPUsageDTO {
	return SSPUsageDTO{
		EmployeeID:            string(employeeID),
		QualifyingDaysPerWeek: u.QualifyingDaysPerWeek,
		SSPEntitledDays:       u.SSPEntitledDays,
		SSPUsedCurrentYear:    u.SSPUsedCurrentYear,
		SSPUsedRolling12:      u.SSPUsedRolling12,
		SSPRemainingRolling12: u.SSPRemainingRolling12(),
		CurrentYear:           toPeriodDTO(u.CurrentYear),
		Rolling12:             toPeriodDTO(u.Rolling12),
	}
}

func toPayBucketDTO(b sickness.BucketAllocation) PayBucketDTO {
	return PayBucketDTO{
		Allowance: b.Allowance.Float64(),
		Used:      b.Used.Float64(),
		Remaining: b.Remaining.Float64(),
	}
}

// toSicknessSummaryDTO renders an available summary, or the unavailable
// marker with err's message.
func toSicknessSummaryDTO(employeeID generic.EntityID, s *sickness.Summary, err error) SicknessSummaryDTO {
	dto := SicknessSummaryDTO{EmployeeID: string(employeeID), Available: s != nil}
	if s == nil {
		if err != nil {
			dto.Error = err.Error()
		}
		return dto
	}

	ssp := toSSPUsageDTO(s.EmployeeID, s.SSP)
	dto.AsOf = s.AsOf.String()
	dto.SSP = &ssp
	dto.OSP = &OSPDTO{
		TierName:         s.Allowances.TierName,
		RollingWindow:    toPeriodDTO(s.RollingWindow),
		RollingTotalUsed: s.RollingTotalUsed.Float64(),
		FullPay:          toPayBucketDTO(s.OSP.Full),
		HalfPay:          toPayBucketDTO(s.OSP.Half),
		Unallocated:      s.OSP.Unallocated.Float64(),
	}
	return dto
}

func toChainDTO(c sickness.ChainSummary) ChainDTO {
	dto := ChainDTO{
		Start:          c.Start.String(),
		End:            c.End.String(),
		PIWCount:       c.PIWCount,
		QualifyingDays: c.QualifyingDays,
		WaitingDays:    c.WaitingDays,
		SSPDays:        c.SSPDays,
		CapReached:     c.CapReached,
	}
	if c.ExhaustedOn != nil {
		d := c.ExhaustedOn.String()
		dto.ExhaustedOn = &d
	}
	return dto
}

func toImportValidationDTO(v sickness.ImportValidation) ImportValidationDTO {
	return ImportValidationDTO{
		Row:           v.Row,
		EmployeeID:    string(v.EmployeeID),
		Status:        string(v.Status),
		SuppliedDays:  v.SuppliedDays.Float64(),
		ExpectedDays:  v.ExpectedDays,
		Difference:    v.Difference.Float64(),
		CorrectedDays: v.CorrectedDays.Float64(),
	}
}
