package sickness_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sickpay-engine/generic"
	"github.com/warp/sickpay-engine/sickness"
	"github.com/warp/sickpay-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRecordService(t *testing.T) (*sickness.RecordService, *memory.Memory) {
	store := memory.New()
	require.NoError(t, store.ReplaceWorkPattern(context.Background(), "emp-1", monToFri()))

	svc := sickness.NewRecordService(store, store)
	svc.Now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

// =============================================================================
// CREATE
// =============================================================================

func TestRecordService_Create_AssignsIDAndFillsDays(t *testing.T) {
	// GIVEN: Mon-Fri pattern
	// WHEN: Creating a Mon-Sun absence without a day count
	// THEN: ID is generated and TotalDays is 5

	svc, store := newTestRecordService(t)
	ctx := context.Background()

	rec := absence("", "2024-01-15", "2024-01-21")
	created, err := svc.Create(ctx, rec)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 5.0, created.TotalDays.Float64())
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := store.GetSicknessRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, stored.TotalDays.Float64())
}

func TestRecordService_Create_KeepsSuppliedDays(t *testing.T) {
	svc, _ := newTestRecordService(t)

	rec := absence("r1", "2024-01-15", "2024-01-19")
	rec.TotalDays = days(4.5)

	created, err := svc.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 4.5, created.TotalDays.Float64())
}

func TestRecordService_Create_RejectsOverlap(t *testing.T) {
	// GIVEN: Existing absence 2024-01-15 .. 2024-01-19
	// WHEN: Creating one that starts on its last day
	// THEN: Rejected with an OverlapError naming the existing record

	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, absence("existing", "2024-01-15", "2024-01-19"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, absence("new", "2024-01-19", "2024-01-23"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrOverlappingRecord))

	var overlap *sickness.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "existing", overlap.Existing.ID)
}

func TestRecordService_Create_OngoingRecordBlocksLaterAbsences(t *testing.T) {
	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ongoing("open", "2024-01-15"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, absence("later", "2024-05-06", "2024-05-10"))
	assert.ErrorIs(t, err, generic.ErrOverlappingRecord)

	_, err = svc.Create(ctx, absence("earlier", "2024-01-08", "2024-01-12"))
	assert.NoError(t, err)
}

func TestRecordService_Create_AdjacentAbsencesDoNotOverlap(t *testing.T) {
	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, absence("a", "2024-01-15", "2024-01-19"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, absence("b", "2024-01-20", "2024-01-26"))
	assert.NoError(t, err)
}

func TestRecordService_Create_ConcurrentDuplicatesStoreOnce(t *testing.T) {
	// GIVEN: Mon-Fri pattern and no records
	// WHEN: The same absence is submitted from many goroutines at once
	// THEN: Exactly one is stored and every other call reports an overlap

	svc, store := newTestRecordService(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, absence("", "2024-01-15", "2024-01-19"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, generic.ErrOverlappingRecord)
	}
	assert.Equal(t, 1, created)

	stored, err := store.GetSicknessRecords(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordService_Create_ConcurrentEmployeesDoNotBlockEachOther(t *testing.T) {
	svc, store := newTestRecordService(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceWorkPattern(ctx, "emp-2", monToFri()))

	var wg sync.WaitGroup
	for _, emp := range []generic.EntityID{"emp-1", "emp-2"} {
		wg.Add(1)
		go func(emp generic.EntityID) {
			defer wg.Done()
			rec := absence("", "2024-01-15", "2024-01-19")
			rec.EmployeeID = emp
			_, err := svc.Create(ctx, rec)
			assert.NoError(t, err)
		}(emp)
	}
	wg.Wait()

	for _, emp := range []generic.EntityID{"emp-1", "emp-2"} {
		stored, err := store.GetSicknessRecords(ctx, emp)
		require.NoError(t, err)
		assert.Len(t, stored, 1, emp)
	}
}

func TestRecordService_Create_Validation(t *testing.T) {
	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  sickness.SicknessRecord
	}{
		{"end before start", absence("r", "2024-01-19", "2024-01-15")},
		{"missing start", sickness.SicknessRecord{EmployeeID: "emp-1", EndDate: datePtr("2024-01-15")}},
		{"missing employee", sickness.SicknessRecord{StartDate: date("2024-01-15")}},
		{"negative days", func() sickness.SicknessRecord {
			r := absence("r", "2024-01-15", "2024-01-19")
			r.TotalDays = days(-1)
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.rec)
			assert.ErrorIs(t, err, generic.ErrInvalidRecord)
		})
	}
}

// =============================================================================
// UPDATE / DELETE
// =============================================================================

func TestRecordService_Update_DoesNotOverlapItself(t *testing.T) {
	// GIVEN: A stored absence
	// WHEN: Extending it by two days
	// THEN: Saved; employee and created time are preserved

	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, absence("r1", "2024-01-15", "2024-01-17"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, sickness.SicknessRecord{
		ID:        "r1",
		StartDate: date("2024-01-15"),
		EndDate:   datePtr("2024-01-19"),
	})
	require.NoError(t, err)

	assert.Equal(t, generic.EntityID("emp-1"), updated.EmployeeID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 5.0, updated.TotalDays.Float64())
}

func TestRecordService_Update_Missing(t *testing.T) {
	svc, _ := newTestRecordService(t)

	_, err := svc.Update(context.Background(), absence("nope", "2024-01-15", "2024-01-19"))

	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}

func TestRecordService_Delete(t *testing.T) {
	svc, _ := newTestRecordService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, absence("r1", "2024-01-15", "2024-01-19"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "r1"))
	assert.ErrorIs(t, svc.Delete(ctx, "r1"), generic.ErrRecordNotFound)

	records, err := svc.List(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindOverlap(t *testing.T) {
	existing := []sickness.SicknessRecord{
		absence("a", "2024-01-15", "2024-01-19"),
		absence("b", "2024-03-04", "2024-03-08"),
	}

	assert.Nil(t, sickness.FindOverlap(existing, absence("c", "2024-02-01", "2024-02-05")))

	clash := sickness.FindOverlap(existing, ongoing("d", "2024-03-01"))
	require.NotNil(t, clash)
	assert.Equal(t, "b", clash.ID)
}
