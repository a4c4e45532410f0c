/*
handlers.go - HTTP API handlers for the sick pay engine

PURPOSE:
  Exposes the sickness engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the sickness services.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Get employee details

  Work patterns:
    GET    /api/employees/{id}/work-pattern        Stored pattern + qualifying days
    PUT    /api/employees/{id}/work-pattern        Replace the whole pattern

  Sickness records:
    GET    /api/employees/{id}/sickness-records    List records
    POST   /api/employees/{id}/sickness-records    Create record
    PUT    /api/sickness-records/{recordID}        Update record
    DELETE /api/sickness-records/{recordID}        Delete record

  Entitlement:
    GET    /api/employees/{id}/ssp-usage           SSP usage only
    GET    /api/employees/{id}/sickness-summary    SSP + OSP summary
    GET    /api/employees/{id}/sickness-chains     Linked PIW chains
    GET    /api/employees/{id}/opening-balance     OSP opening balance
    PUT    /api/employees/{id}/opening-balance     Set opening balance
    GET    /api/entitlement-tiers                  List OSP tiers
    POST   /api/entitlement-tiers                  Create/update tier

  Reports and tools:
    GET    /api/reports/sickness                   Summary for every employee
    POST   /api/imports/sickness/validate          Check imported day counts
    POST   /api/working-days                       Count working days

  Scenarios:
    GET    /api/scenarios                          List demo scenarios
    POST   /api/scenarios/load                     Load a demo scenario
    GET    /api/scenarios/current                  Currently loaded scenario
    POST   /api/scenarios/reset                    Remove all data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee or record not found
  - 409: Overlapping sickness record
  - 500: Internal errors

  An employee whose data cannot be loaded still gets a 200 summary with
  "available": false, matching what the report shows for that employee.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/logging"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     sickness.Store
	Records   *sickness.RecordService
	Patterns  *sickness.PatternService
	Summaries *sickness.SummaryService
	Reports   *sickness.ReportService
	Logger    *slog.Logger

	// clock drives scenario dates; Summaries carries its own copy.
	clock generic.Clock

	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires the sickness services around store.
func NewHandler(store sickness.Store, logger *slog.Logger, reportBatchSize int) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	summaries := sickness.NewSummaryService(store, store, store, logger)
	return &Handler{
		Store:     store,
		Records:   sickness.NewRecordService(store, store),
		Patterns:  sickness.NewPatternService(store, store),
		Summaries: summaries,
		Reports:   sickness.NewReportService(summaries, reportBatchSize, logger),
		Logger:    logger,
		clock:     generic.Today,
	}
}

// SetClock pins "today" for summaries and scenario seeding.
func (h *Handler) SetClock(clock generic.Clock) {
	h.clock = clock
	h.Summaries.Clock = clock
}

func (h *Handler) today() generic.TimePoint {
	if h.clock == nil {
		return generic.Today()
	}
	return h.clock()
}

// employee loads the {id} URL parameter's employee, writing 404/500 itself.
func (h *Handler) employee(w http.ResponseWriter, r *http.Request) (*sickness.Employee, bool) {
	id := generic.EntityID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get employee", err)
		return nil, false
	}
	return emp, true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := sickness.Employee{
		ID:        generic.EntityID(req.ID),
		Name:      req.Name,
		Email:     req.Email,
		HireDate:  req.HireDate,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	logging.FromContext(r.Context(), h.Logger).Info("employee created", "employee_id", emp.ID)
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// WORK PATTERN HANDLERS
// =============================================================================

// GetWorkPattern returns the stored pattern and the qualifying days it
// resolves to. An employee without a pattern gets an empty list.
func (h *Handler) GetWorkPattern(w http.ResponseWriter, r *http.Request) {
	id := generic.EntityID(chi.URLParam(r, "id"))
	days, err := h.Patterns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get work pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkPatternDTO(id, days))
}

// ReplaceWorkPattern swaps the employee's whole pattern.
func (h *Handler) ReplaceWorkPattern(w http.ResponseWriter, r *http.Request) {
	id := generic.EntityID(chi.URLParam(r, "id"))

	var req ReplaceWorkPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Patterns.Replace(r.Context(), id, req.Days); err != nil {
		writeServiceError(w, "Failed to replace work pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkPatternDTO(id, req.Days))
}

// =============================================================================
// SICKNESS RECORD HANDLERS
// =============================================================================

// ListSicknessRecords returns an employee's records, newest first.
func (h *Handler) ListSicknessRecords(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	records, err := h.Records.List(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sickness records", err)
		return
	}
	sortRecordsNewestFirst(records)

	dtos := make([]SicknessRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toSicknessRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSicknessRecord stores a new absence for the employee.
func (h *Handler) CreateSicknessRecord(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	var req SicknessRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec := req.toRecord()
	rec.EmployeeID = emp.ID
	created, err := h.Records.Create(r.Context(), rec)
	if err != nil {
		writeServiceError(w, "Failed to create sickness record", err)
		return
	}

	logging.FromContext(r.Context(), h.Logger).Info("sickness record created",
		"employee_id", created.EmployeeID,
		"record_id", created.ID,
		"total_days", created.TotalDays.String())
	writeJSON(w, http.StatusCreated, toSicknessRecordDTO(*created))
}

// UpdateSicknessRecord replaces the dates, days and notes of a record.
func (h *Handler) UpdateSicknessRecord(w http.ResponseWriter, r *http.Request) {
	var req SicknessRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec := req.toRecord()
	rec.ID = chi.URLParam(r, "recordID")
	updated, err := h.Records.Update(r.Context(), rec)
	if err != nil {
		writeServiceError(w, "Failed to update sickness record", err)
		return
	}
	writeJSON(w, http.StatusOK, toSicknessRecordDTO(*updated))
}

// DeleteSicknessRecord removes a record.
func (h *Handler) DeleteSicknessRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")
	if err := h.Records.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to delete sickness record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req SicknessRecordRequest) toRecord() sickness.SicknessRecord {
	rec := sickness.SicknessRecord{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
		TotalDays: generic.Days(0),
	}
	if req.TotalDays != nil {
		rec.TotalDays = generic.Days(*req.TotalDays)
	}
	return rec
}

// =============================================================================
// ENTITLEMENT HANDLERS
// =============================================================================

// GetSSPUsage returns SSP usage for the current year and rolling 12 months.
// Storage failures degrade to zero usage rather than an error.
func (h *Handler) GetSSPUsage(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	usage := h.Summaries.SSPUsage(r.Context(), emp.ID)
	writeJSON(w, http.StatusOK, toSSPUsageDTO(emp.ID, usage))
}

// GetSicknessSummary returns the combined SSP and OSP summary.
func (h *Handler) GetSicknessSummary(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	res := h.Summaries.Summary(r.Context(), *emp)
	writeJSON(w, http.StatusOK, toSicknessSummaryDTO(emp.ID, res.Summary, res.Err))
}

// GetSicknessChains returns the employee's linked PIW chains.
func (h *Handler) GetSicknessChains(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	chains, err := h.Summaries.Chains(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build SSP chains", err)
		return
	}

	dtos := make([]ChainDTO, len(chains))
	for i, c := range chains {
		dtos[i] = toChainDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOpeningBalance returns the employee's OSP opening balance (zero when
// none was entered).
func (h *Handler) GetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	balance, err := h.Store.GetOpeningBalance(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get opening balance", err)
		return
	}
	writeJSON(w, http.StatusOK, OpeningBalanceDTO{
		EmployeeID:  string(emp.ID),
		FullPayDays: balance.FullPayDays.Float64(),
		HalfPayDays: balance.HalfPayDays.Float64(),
	})
}

// SetOpeningBalance records OSP days carried in from before the system.
func (h *Handler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	var req OpeningBalanceDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FullPayDays < 0 || req.HalfPayDays < 0 {
		writeError(w, http.StatusBadRequest, "Opening balance cannot be negative", nil)
		return
	}

	balance := sickness.OpeningBalance{
		EmployeeID:  emp.ID,
		FullPayDays: generic.Days(req.FullPayDays),
		HalfPayDays: generic.Days(req.HalfPayDays),
	}
	if err := h.Store.SaveOpeningBalance(r.Context(), balance); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save opening balance", err)
		return
	}

	req.EmployeeID = string(emp.ID)
	writeJSON(w, http.StatusOK, req)
}

// ListEntitlementTiers returns OSP tiers ordered by minimum service.
func (h *Handler) ListEntitlementTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.Store.ListEntitlementTiers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entitlement tiers", err)
		return
	}
	if tiers == nil {
		tiers = []sickness.EntitlementTier{}
	}
	writeJSON(w, http.StatusOK, tiers)
}

// SaveEntitlementTier creates a tier, or updates it when the ID exists.
func (h *Handler) SaveEntitlementTier(w http.ResponseWriter, r *http.Request) {
	var tier sickness.EntitlementTier
	if err := json.NewDecoder(r.Body).Decode(&tier); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch {
	case strings.TrimSpace(tier.Name) == "":
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	case tier.MinServiceMonths < 0:
		writeError(w, http.StatusBadRequest, "min_service_months cannot be negative", nil)
		return
	case tier.MaxServiceMonths != nil && *tier.MaxServiceMonths <= tier.MinServiceMonths:
		writeError(w, http.StatusBadRequest, "max_service_months must exceed min_service_months", nil)
		return
	case tier.FullPayDays < 0 || tier.HalfPayDays < 0:
		writeError(w, http.StatusBadRequest, "Pay days cannot be negative", nil)
		return
	}
	if tier.ID == "" {
		tier.ID = uuid.NewString()
	}

	if err := h.Store.SaveEntitlementTier(r.Context(), tier); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entitlement tier", err)
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

// =============================================================================
// REPORT AND TOOL HANDLERS
// =============================================================================

// GetSicknessReport computes a summary for every employee. Employees whose
// data fails to load appear with "available": false.
func (h *Handler) GetSicknessReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	rows, err := h.Reports.Build(ctx, employees)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build sickness report", err)
		return
	}

	report := SicknessReportDTO{Employees: len(rows), Rows: make([]ReportRowDTO, len(rows))}
	for i, row := range rows {
		if !row.Available() {
			report.Unavailable++
		}
		report.Rows[i] = ReportRowDTO{
			Employee: toEmployeeDTO(row.Employee),
			Summary:  toSicknessSummaryDTO(row.Employee.ID, row.Summary, row.Err),
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// ValidateImport checks imported day counts against each employee's work
// pattern. Nothing is stored.
func (h *Handler) ValidateImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ImportValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rows := make([]sickness.ImportRow, len(req.Rows))
	patterns := make(map[generic.EntityID][]sickness.WorkDay)
	for i, in := range req.Rows {
		if in.StartDate.IsZero() {
			writeError(w, http.StatusBadRequest, "start_date is required on every row", nil)
			return
		}
		row := sickness.ImportRow{
			Row:          in.Row,
			EmployeeID:   generic.EntityID(in.EmployeeID),
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			SuppliedDays: generic.Days(in.SuppliedDays),
		}
		if row.Row == 0 {
			row.Row = i + 1
		}
		rows[i] = row

		if _, loaded := patterns[row.EmployeeID]; loaded {
			continue
		}
		pattern, err := h.Store.FetchWorkPatterns(ctx, row.EmployeeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load work pattern", err)
			return
		}
		patterns[row.EmployeeID] = pattern
	}

	results := sickness.ValidateImport(rows, patterns)
	dtos := make([]ImportValidationDTO, len(results))
	for i, v := range results {
		dtos[i] = toImportValidationDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CountWorkingDays counts the working days in a date range, using either the
// stored pattern of employee_id or the inline pattern.
func (h *Handler) CountWorkingDays(w http.ResponseWriter, r *http.Request) {
	var req WorkingDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pattern := req.Pattern
	if req.EmployeeID != "" {
		stored, err := h.Patterns.Get(r.Context(), generic.EntityID(req.EmployeeID))
		if err != nil {
			writeServiceError(w, "Failed to load work pattern", err)
			return
		}
		pattern = stored
	}

	n := sickness.CalculateWorkingDaysForRecord(req.StartDate, req.EndDate, pattern)
	writeJSON(w, http.StatusOK, WorkingDaysDTO{WorkingDays: n})
}

// Health pings the store when it supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps the engine's sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	var overlap *sickness.OverlapError
	switch {
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: message,
			Details: map[string]string{
				"message":            err.Error(),
				"existing_record_id": overlap.Existing.ID,
			},
		})
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func sortRecordsNewestFirst(records []sickness.SicknessRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartDate.After(records[j].StartDate)
	})
}
