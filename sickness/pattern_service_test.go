package sickness_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
	"github.com/warp/sickpay-engine/store/memory"
)

func newTestPatternService(t *testing.T) *sickness.PatternService {
	store := memory.New()
	require.NoError(t, store.SaveEmployee(context.Background(), sickness.Employee{
		ID:       "emp-1",
		Name:     "Alice",
		HireDate: date("2020-01-06"),
	}))
	return sickness.NewPatternService(store, store)
}

func TestPatternService_ReplaceWholePattern(t *testing.T) {
	// GIVEN: Employee on Mon-Fri
	// WHEN: Replacing with a Mon/Wed/Fri pattern
	// THEN: Only the new entries remain

	svc := newTestPatternService(t)
	ctx := context.Background()

	require.NoError(t, svc.Replace(ctx, "emp-1", monToFri()))
	require.NoError(t, svc.Replace(ctx, "emp-1", []sickness.WorkDay{
		{Day: sickness.Monday, IsWorking: true},
		{Day: sickness.Wednesday, IsWorking: true},
		{Day: sickness.Friday, IsWorking: true},
	}))

	pattern, err := svc.Get(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, pattern, 3)
	assert.Equal(t, 3, sickness.ResolveQualifyingDays(pattern).DaysPerWeek)
}

func TestPatternService_RejectsDuplicateWeekday(t *testing.T) {
	svc := newTestPatternService(t)

	err := svc.Replace(context.Background(), "emp-1", []sickness.WorkDay{
		{Day: sickness.Monday, IsWorking: true},
		{Day: sickness.Monday, IsWorking: false},
	})

	assert.ErrorIs(t, err, generic.ErrDuplicateWeekday)
}

func TestPatternService_RejectsUnknownWeekday(t *testing.T) {
	svc := newTestPatternService(t)

	err := svc.Replace(context.Background(), "emp-1", []sickness.WorkDay{
		{Day: sickness.InvalidWeekday, IsWorking: true},
	})

	assert.ErrorIs(t, err, generic.ErrInvalidWorkPattern)
}

func TestPatternService_UnknownEmployee(t *testing.T) {
	svc := newTestPatternService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Replace(ctx, "ghost", monToFri()), generic.ErrEmployeeNotFound)

	_, err := svc.Get(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

func TestPatternService_EmptyReplaceClearsPattern(t *testing.T) {
	svc := newTestPatternService(t)
	ctx := context.Background()

	require.NoError(t, svc.Replace(ctx, "emp-1", monToFri()))
	require.NoError(t, svc.Replace(ctx, "emp-1", nil))

	pattern, err := svc.Get(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, pattern)
}
