/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Populates the store with small, hand-checkable sickness histories. Each
	scenario creates one employee with a work pattern and absences whose SSP
	and OSP outcome is listed in the scenario's "expected" field.

AVAILABLE SCENARIOS:

	single-absence:  One five-day absence (3 waiting days, 2 SSP days)
	linked-absences: Two absences 16 days apart form one chain (7 SSP days)
	short-absence:   Three days off never forms a PIW (0 SSP days)
	part-time:       Mon/Wed/Fri worker, 84-day cap (3 SSP days)
	osp-allocation:  12 days used against 10 full + 20 half pay
	sickness-team:   All of the above at once, for the report

DATES:

	Absences are placed relative to today so the rolling twelve months always
	contain them. The anchor is the Monday on or before today minus 84 days;
	every absence falls within eight weeks after it.

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Seed the standard OSP entitlement tiers
 3. Create employee(s) and work patterns
 4. Add sickness records through the record service (day counts filled
    from the pattern, overlaps rejected)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "linked-absences"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/logging"
	"github.com/warp/sickpay-engine/sickness"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-absence",
		Name:        "Single Absence",
		Description: "Mon-Fri worker off sick for one full week",
		Expected:    "1 PIW, 3 waiting days, 2 SSP days",
	},
	{
		ID:          "linked-absences",
		Name:        "Linked Absences",
		Description: "Two one-week absences 16 days apart link into one chain",
		Expected:    "waiting days served once, 7 SSP days",
	},
	{
		ID:          "short-absence",
		Name:        "Short Absence",
		Description: "Three days off is not a period of incapacity for work",
		Expected:    "no PIW, 0 SSP days",
	},
	{
		ID:          "part-time",
		Name:        "Part-Time Worker",
		Description: "Mon/Wed/Fri pattern, off sick for two weeks",
		Expected:    "entitlement 84 days, 6 qualifying days, 3 SSP days",
	},
	{
		ID:          "osp-allocation",
		Name:        "OSP Allocation",
		Description: "First-year employee with 10 full + 20 half pay days uses 12 days",
		Expected:    "full pay 10 used / 0 left, half pay 2 used / 18 left",
	},
	{
		ID:          "sickness-team",
		Name:        "Sickness Team",
		Description: "Every scenario above loaded together",
		Expected:    "five employees in the sickness report",
	},
}

type scenarioLoader func(ctx context.Context, anchor generic.TimePoint) error

func (h *Handler) scenarioLoaders() map[string]scenarioLoader {
	loaders := map[string]scenarioLoader{
		"single-absence":  h.loadSingleAbsence,
		"linked-absences": h.loadLinkedAbsences,
		"short-absence":   h.loadShortAbsence,
		"part-time":       h.loadPartTime,
		"osp-allocation":  h.loadOSPAllocation,
	}
	loaders["sickness-team"] = func(ctx context.Context, anchor generic.TimePoint) error {
		for _, s := range scenarios {
			if load, ok := loaders[s.ID]; ok && s.ID != "sickness-team" {
				if err := load(ctx, anchor); err != nil {
					return fmt.Errorf("%s: %w", s.ID, err)
				}
			}
		}
		return nil
	}
	return loaders
}

// scenarioAnchor is the Monday on or before today minus 84 days.
func scenarioAnchor(today generic.TimePoint) generic.TimePoint {
	d := today.AddDays(-84)
	offset := int(sickness.WeekdayOf(d) - sickness.Monday)
	return d.AddDays(-offset)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	anchor := scenarioAnchor(h.today())
	if err := h.seedEntitlementTiers(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	if err := load(ctx, anchor); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	logging.FromContext(ctx, h.Logger).Info("scenario loaded",
		"scenario", req.ScenarioID, "anchor", anchor.String())
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"anchor":   anchor.String(),
	})
}

// ResetData clears all data.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleAbsence(ctx context.Context, m generic.TimePoint) error {
	return h.seedEmployee(ctx, "emp-alice", "Alice Archer", h.today().AddYears(-3),
		sickness.StandardWorkPattern(),
		[]seedAbsence{{m, 4, "Flu"}})
}

func (h *Handler) loadLinkedAbsences(ctx context.Context, m generic.TimePoint) error {
	return h.seedEmployee(ctx, "emp-ben", "Ben Brooks", h.today().AddYears(-3),
		sickness.StandardWorkPattern(),
		[]seedAbsence{
			{m, 4, "Back pain"},
			{m.AddDays(21), 4, "Back pain, recurrence"},
		})
}

func (h *Handler) loadShortAbsence(ctx context.Context, m generic.TimePoint) error {
	return h.seedEmployee(ctx, "emp-cara", "Cara Dunn", h.today().AddYears(-3),
		sickness.StandardWorkPattern(),
		[]seedAbsence{{m, 2, "Migraine"}})
}

func (h *Handler) loadPartTime(ctx context.Context, m generic.TimePoint) error {
	pattern := []sickness.WorkDay{
		{Day: sickness.Monday, IsWorking: true},
		{Day: sickness.Tuesday, IsWorking: false},
		{Day: sickness.Wednesday, IsWorking: true},
		{Day: sickness.Thursday, IsWorking: false},
		{Day: sickness.Friday, IsWorking: true},
	}
	return h.seedEmployee(ctx, "emp-dev", "Dev Patel", h.today().AddYears(-3),
		pattern,
		[]seedAbsence{{m, 11, "Surgery recovery"}})
}

func (h *Handler) loadOSPAllocation(ctx context.Context, m generic.TimePoint) error {
	return h.seedEmployee(ctx, "emp-ella", "Ella Ford", h.today().AddMonths(-6),
		sickness.StandardWorkPattern(),
		[]seedAbsence{
			{m, 11, "Chest infection"},
			{m.AddDays(28), 1, "Follow-up"},
		})
}

// =============================================================================
// SEED HELPERS
// =============================================================================

// seedAbsence is an absence starting on start and lasting length+1 calendar
// days.
type seedAbsence struct {
	start  generic.TimePoint
	length int
	notes  string
}

func (h *Handler) seedEmployee(ctx context.Context, id generic.EntityID, name string, hired generic.TimePoint, pattern []sickness.WorkDay, absences []seedAbsence) error {
	emp := sickness.Employee{
		ID:        id,
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", id),
		HireDate:  hired,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return fmt.Errorf("save employee %s: %w", id, err)
	}
	if err := h.Patterns.Replace(ctx, id, pattern); err != nil {
		return fmt.Errorf("save work pattern %s: %w", id, err)
	}

	for _, a := range absences {
		end := a.start.AddDays(a.length)
		_, err := h.Records.Create(ctx, sickness.SicknessRecord{
			EmployeeID: id,
			StartDate:  a.start,
			EndDate:    &end,
			TotalDays:  generic.Days(0),
			Notes:      a.notes,
		})
		if err != nil {
			return fmt.Errorf("save sickness record for %s: %w", id, err)
		}
	}
	return nil
}

// standardTiers is the demo OSP scheme: allowances grow with service.
func standardTiers() []sickness.EntitlementTier {
	twelve, sixty := 12, 60
	return []sickness.EntitlementTier{
		{ID: "tier-first-year", Name: "First year", MinServiceMonths: 0, MaxServiceMonths: &twelve, FullPayDays: 10, HalfPayDays: 20},
		{ID: "tier-one-to-five", Name: "One to five years", MinServiceMonths: 12, MaxServiceMonths: &sixty, FullPayDays: 20, HalfPayDays: 40},
		{ID: "tier-five-plus", Name: "Five years plus", MinServiceMonths: 60, FullPayDays: 40, HalfPayDays: 60},
	}
}

func (h *Handler) seedEntitlementTiers(ctx context.Context) error {
	for _, tier := range standardTiers() {
		if err := h.Store.SaveEntitlementTier(ctx, tier); err != nil {
			return fmt.Errorf("save entitlement tier %s: %w", tier.ID, err)
		}
	}
	return nil
}
