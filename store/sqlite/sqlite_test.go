package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
	"github.com/warp/sickpay-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveEmployee(context.Background(), sickness.Employee{
		ID:       "emp-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		HireDate: generic.MustDate("2020-01-06"),
	}))
	return store
}

func strPtr(s string) *string { return &s }

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestStore_Employees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", emp.Name)
	assert.Equal(t, "2020-01-06", emp.HireDate.String())
	assert.False(t, emp.CreatedAt.IsZero())

	require.NoError(t, store.SaveEmployee(ctx, sickness.Employee{ID: "emp-0", Name: "Aaron"}))
	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, generic.EntityID("emp-0"), employees[0].ID)
	assert.True(t, employees[0].HireDate.IsZero())

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

// =============================================================================
// WORK PATTERNS
// =============================================================================

func TestStore_ReplaceWorkPattern_ReplacesEverything(t *testing.T) {
	// GIVEN: A Mon-Fri pattern stored
	// WHEN: Replacing it with Saturday only
	// THEN: Only Saturday remains

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceWorkPattern(ctx, "emp-1", sickness.StandardWorkPattern()))
	pattern, err := store.FetchWorkPatterns(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, pattern, 7)

	require.NoError(t, store.ReplaceWorkPattern(ctx, "emp-1", []sickness.WorkDay{
		{Day: sickness.Saturday, IsWorking: true, StartTime: strPtr("09:00"), EndTime: strPtr("17:00")},
	}))
	pattern, err = store.FetchWorkPatterns(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, pattern, 1)
	assert.Equal(t, sickness.Saturday, pattern[0].Day)
	assert.True(t, pattern[0].IsWorking)
	require.NotNil(t, pattern[0].StartTime)
	assert.Equal(t, "09:00", *pattern[0].StartTime)
}

func TestStore_ReplaceWorkPattern_DuplicateRollsBack(t *testing.T) {
	// GIVEN: A stored pattern
	// WHEN: Replacing with two Monday entries
	// THEN: The unique index fails the insert and the old pattern survives

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceWorkPattern(ctx, "emp-1", sickness.StandardWorkPattern()))

	err := store.ReplaceWorkPattern(ctx, "emp-1", []sickness.WorkDay{
		{Day: sickness.Monday, IsWorking: true},
		{Day: sickness.Monday, IsWorking: false},
	})
	require.Error(t, err)

	pattern, err := store.FetchWorkPatterns(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, pattern, 7)
}

func TestStore_FetchWorkPatterns_EmptyIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	pattern, err := store.FetchWorkPatterns(context.Background(), "emp-1")

	require.NoError(t, err)
	assert.Empty(t, pattern)
}

// =============================================================================
// SICKNESS RECORDS
// =============================================================================

func TestStore_SicknessRecords_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	end := generic.MustDate("2024-01-19")
	require.NoError(t, store.SaveSicknessRecord(ctx, sickness.SicknessRecord{
		ID:         "r1",
		EmployeeID: "emp-1",
		StartDate:  generic.MustDate("2024-01-15"),
		EndDate:    &end,
		TotalDays:  generic.Days(4.5),
		Notes:      "flu",
	}))
	require.NoError(t, store.SaveSicknessRecord(ctx, sickness.SicknessRecord{
		ID:         "r0",
		EmployeeID: "emp-1",
		StartDate:  generic.MustDate("2024-03-04"),
		TotalDays:  generic.Days(1),
	}))

	records, err := store.GetSicknessRecords(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "r1", first.ID)
	assert.Equal(t, "2024-01-15", first.StartDate.String())
	require.NotNil(t, first.EndDate)
	assert.Equal(t, "2024-01-19", first.EndDate.String())
	assert.Equal(t, "4.5", first.TotalDays.String())
	assert.Equal(t, "flu", first.Notes)

	assert.True(t, records[1].IsOngoing())
}

func TestStore_SaveSicknessRecord_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sickness.SicknessRecord{
		ID:         "r1",
		EmployeeID: "emp-1",
		StartDate:  generic.MustDate("2024-01-15"),
		TotalDays:  generic.Days(1),
	}
	require.NoError(t, store.SaveSicknessRecord(ctx, rec))

	end := generic.MustDate("2024-01-19")
	rec.EndDate = &end
	rec.TotalDays = generic.Days(5)
	require.NoError(t, store.SaveSicknessRecord(ctx, rec))

	got, err := store.GetSicknessRecord(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, got.IsOngoing())
	assert.Equal(t, 5.0, got.TotalDays.Float64())
}

func TestStore_SaveSicknessRecord_UnknownEmployeeFails(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveSicknessRecord(context.Background(), sickness.SicknessRecord{
		ID:         "r1",
		EmployeeID: "ghost",
		StartDate:  generic.MustDate("2024-01-15"),
		TotalDays:  generic.Days(1),
	})

	assert.Error(t, err)
}

func TestStore_DeleteSicknessRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSicknessRecord(ctx, sickness.SicknessRecord{
		ID: "r1", EmployeeID: "emp-1", StartDate: generic.MustDate("2024-01-15"), TotalDays: generic.Days(1),
	}))

	require.NoError(t, store.DeleteSicknessRecord(ctx, "r1"))
	assert.ErrorIs(t, store.DeleteSicknessRecord(ctx, "r1"), generic.ErrRecordNotFound)

	_, err := store.GetSicknessRecord(ctx, "r1")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

func TestStore_EntitlementTiers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	twelve := 12
	require.NoError(t, store.SaveEntitlementTier(ctx, sickness.EntitlementTier{
		ID: "t2", Name: "Established", MinServiceMonths: 12, FullPayDays: 20, HalfPayDays: 20,
	}))
	require.NoError(t, store.SaveEntitlementTier(ctx, sickness.EntitlementTier{
		ID: "t1", Name: "First year", MinServiceMonths: 0, MaxServiceMonths: &twelve, FullPayDays: 10, HalfPayDays: 10,
	}))

	tiers, err := store.ListEntitlementTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, "t1", tiers[0].ID)
	require.NotNil(t, tiers[0].MaxServiceMonths)
	assert.Equal(t, 12, *tiers[0].MaxServiceMonths)
	assert.Nil(t, tiers[1].MaxServiceMonths)
	assert.Equal(t, 20.0, tiers[1].FullPayDays)
}

func TestStore_OpeningBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	balance, err := store.GetOpeningBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, balance.FullPayDays.IsZero())

	require.NoError(t, store.SaveOpeningBalance(ctx, sickness.OpeningBalance{
		EmployeeID: "emp-1", FullPayDays: generic.Days(2.5), HalfPayDays: generic.Days(1),
	}))

	balance, err = store.GetOpeningBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2.5, balance.FullPayDays.Float64())
	assert.Equal(t, 1.0, balance.HalfPayDays.Float64())
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceWorkPattern(ctx, "emp-1", sickness.StandardWorkPattern()))

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	pattern, err := store.FetchWorkPatterns(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, pattern)
}
