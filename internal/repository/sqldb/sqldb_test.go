package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := Connect("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return NewStore(db)
}

func seedPlan(t *testing.T, store *repository.Store) *domain.TrainingPlan {
	t.Helper()
	plan := &domain.TrainingPlan{
		OwnerID:              uuid.New(),
		Name:                 "Block",
		StartDate:            time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC),
		MicrocycleLengthDays: 7,
		TotalMicrocycles:     4,
	}
	_, err := store.Plans.Create(context.Background(), plan)
	require.NoError(t, err)
	return plan
}

func intp(v int) *int { return &v }

func TestCustomizationUpsertKeepsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	plan := seedPlan(t, store)
	setID := uuid.New()

	row := &domain.DayCustomization{PlanID: plan.ID, DayNumber: 3, ExerciseSetID: setID, RoutineExerciseID: uuid.New(), CustomRIR: intp(2)}
	require.NoError(t, store.Customizations.Upsert(ctx, row))
	firstID := row.ID

	replacement := &domain.DayCustomization{PlanID: plan.ID, DayNumber: 3, ExerciseSetID: setID, RoutineExerciseID: row.RoutineExerciseID, CustomRPE: intp(8)}
	require.NoError(t, store.Customizations.Upsert(ctx, replacement))

	stored, err := store.Customizations.Find(ctx, plan.ID, 3, setID)
	require.NoError(t, err)
	assert.Equal(t, firstID, stored.ID)
	assert.Nil(t, stored.CustomRIR)
	assert.Equal(t, 8, *stored.CustomRPE)

	n, err := store.Customizations.CountByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListCustomizedDaysIsSortedAndDistinct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	plan := seedPlan(t, store)
	for _, day := range []int{15, 2, 15, 9, 2} {
		require.NoError(t, store.Customizations.Upsert(ctx, &domain.DayCustomization{
			PlanID: plan.ID, DayNumber: day, ExerciseSetID: uuid.New(), RoutineExerciseID: uuid.New(), CustomRepsMin: intp(5),
		}))
	}

	days, err := store.Customizations.ListCustomizedDays(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 9, 15}, days)

	days, err = store.Customizations.ListCustomizedDays(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestSlotUpsertReturnsStoredRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	plan := seedPlan(t, store)

	first := &domain.DayPlanSlot{PlanID: plan.ID, DayNumber: 2, IsRestDay: true}
	require.NoError(t, store.Slots.Upsert(ctx, first))

	routineID := uuid.New()
	second := &domain.DayPlanSlot{PlanID: plan.ID, DayNumber: 2, RoutineID: &routineID}
	require.NoError(t, store.Slots.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsRestDay)

	slots, err := store.Slots.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, routineID, *slots[0].RoutineID)

	ids, err := store.Slots.ListPlanIDsByRoutine(ctx, routineID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{plan.ID}, ids)
}

func TestTransactionRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	plan := seedPlan(t, store)
	boom := errors.New("boom")

	err := store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// nested calls join the outer transaction
		return store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := store.Plans.DeactivateAllForOwner(ctx, plan.OwnerID)
			require.NoError(t, err)
			require.NoError(t, store.Plans.Delete(ctx, plan.ID))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Plans.GetByID(ctx, plan.ID)
	assert.NoError(t, err)
}

func TestPlanRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	plan := seedPlan(t, store)

	stored, err := store.Plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), stored.StartDate)

	exists, err := store.Plans.ExistsByOwnerAndName(ctx, plan.OwnerID, "Block", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.Plans.ExistsByOwnerAndName(ctx, plan.OwnerID, "Block", plan.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	stored.IsArchived = true
	require.NoError(t, store.Plans.Update(ctx, stored))
	n, err := store.Plans.CountNonArchivedByOwner(ctx, plan.OwnerID)
	require.NoError(t, err)
	assert.Zero(t, n)

	listed, err := store.Plans.ListByOwner(ctx, plan.OwnerID, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = store.Plans.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOneActivePlanPerOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := seedPlan(t, store)
	second := &domain.TrainingPlan{
		OwnerID:              first.OwnerID,
		Name:                 "Block 2",
		StartDate:            first.StartDate,
		MicrocycleLengthDays: 7,
		TotalMicrocycles:     4,
	}
	_, err := store.Plans.Create(ctx, second)
	require.NoError(t, err)

	first.IsCurrentlyActive = true
	require.NoError(t, store.Plans.Update(ctx, first))
	second.IsCurrentlyActive = true
	assert.ErrorIs(t, store.Plans.Update(ctx, second), repository.ErrDuplicate)

	// another owner is unaffected
	other := seedPlan(t, store)
	other.IsCurrentlyActive = true
	require.NoError(t, store.Plans.Update(ctx, other))

	n, err := store.Plans.DeactivateAllForOwner(ctx, first.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, store.Plans.Update(ctx, second))
}

func TestUserEmailIsUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Users.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = store.Users.Create(ctx, &domain.User{Name: "B", Email: "A@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
