package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/testutil"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planInput(name string) CreatePlanInput {
	return CreatePlanInput{
		Name:                 name,
		StartDate:            time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC),
		MicrocycleLengthDays: 4,
		TotalMicrocycles:     3,
	}
}

func TestCreatePlan(t *testing.T) {
	f := newFixture(t)
	routineID := f.routine.Routine.ID

	in := planInput("  Summer Block ")
	in.Slots = []SlotInput{
		{DayNumber: 1, RoutineID: &routineID},
		{DayNumber: 2, IsRestDay: true},
	}
	details, err := f.plans.CreatePlan(f.ctx, f.owner, in)
	require.NoError(t, err)

	assert.Equal(t, "Summer Block", details.Name)
	assert.Equal(t, domain.PlanStateDraft, details.State)
	assert.Equal(t, 12, details.TotalDuration)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), details.StartDate)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), details.EndDate)
	assert.Len(t, details.Slots, 2)

	stored, err := f.plans.GetPlan(f.ctx, f.owner, details.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Slots, 2)

	_, err = f.plans.GetPlan(f.ctx, uuid.New(), details.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestCreatePlanValidation(t *testing.T) {
	f := newFixture(t)
	routineID := f.routine.Routine.ID

	tests := []struct {
		name           string
		mutate         func(*CreatePlanInput)
		wantViolations int
	}{
		{"blank name", func(in *CreatePlanInput) { in.Name = " " }, 1},
		{"no start date", func(in *CreatePlanInput) { in.StartDate = time.Time{} }, 1},
		{"microcycle too long", func(in *CreatePlanInput) { in.MicrocycleLengthDays = 15 }, 1},
		{"too many microcycles", func(in *CreatePlanInput) { in.TotalMicrocycles = 53 }, 1},
		{"slot outside the pattern", func(in *CreatePlanInput) { in.Slots = []SlotInput{{DayNumber: 5}} }, 1},
		{"rest day with routine", func(in *CreatePlanInput) {
			in.Slots = []SlotInput{{DayNumber: 1, IsRestDay: true, RoutineID: &routineID}}
		}, 1},
		{"duplicate slot", func(in *CreatePlanInput) {
			in.Slots = []SlotInput{{DayNumber: 2}, {DayNumber: 2, IsRestDay: true}}
		}, 1},
		{"everything wrong", func(in *CreatePlanInput) {
			in.Name = ""
			in.MicrocycleLengthDays = 0
			in.TotalMicrocycles = 0
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := planInput("Block")
			tt.mutate(&in)
			_, err := f.plans.CreatePlan(f.ctx, f.owner, in)
			requireKind(t, err, apperr.KindValidation)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Len(t, appErr.Violations, tt.wantViolations)
		})
	}
}

func TestCreatePlanGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.plans.CreatePlan(f.ctx, f.owner, planInput("Spring Block"))
	requireKind(t, err, apperr.KindConflict)

	// a foreign routine is invisible
	other := testutil.SeedUser(t, f.store)
	foreign := testutil.SeedRoutine(t, f.store, other, "Legs").Routine.ID
	in := planInput("Borrowed")
	in.Slots = []SlotInput{{DayNumber: 1, RoutineID: &foreign}}
	_, err = f.plans.CreatePlan(f.ctx, f.owner, in)
	requireKind(t, err, apperr.KindNotFound)
	plans, err := f.plans.ListPlans(f.ctx, f.owner, true)
	require.NoError(t, err)
	assert.Len(t, plans, 1, "failed create leaves no plan behind")

	for i := 2; i <= 3; i++ {
		_, err := f.plans.CreatePlan(f.ctx, f.owner, planInput(fmt.Sprintf("Block %d", i)))
		require.NoError(t, err)
	}
	_, err = f.plans.CreatePlan(f.ctx, f.owner, planInput("One Too Many"))
	requireKind(t, err, apperr.KindConflict)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	limit, ok := appErr.Details.(PlanLimitDetails)
	require.True(t, ok)
	assert.Equal(t, 3, limit.Limit)
	assert.Equal(t, int64(3), limit.Current)

	// archiving frees a place; unarchiving needs one
	_, err = f.plans.Archive(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	_, err = f.plans.CreatePlan(f.ctx, f.owner, planInput("Replacement"))
	require.NoError(t, err)
	_, err = f.plans.Unarchive(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindConflict)
	assert.True(t, f.reloadPlan(t).IsArchived)
}

func TestUpdatePlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.plans.CreatePlan(f.ctx, f.owner, planInput("Taken"))
	require.NoError(t, err)

	_, err = f.plans.UpdatePlan(f.ctx, f.owner, f.plan.ID, UpdatePlanInput{Name: testutil.StringPtr("Taken")})
	requireKind(t, err, apperr.KindConflict)

	updated, err := f.plans.UpdatePlan(f.ctx, f.owner, f.plan.ID, UpdatePlanInput{
		Name:        testutil.StringPtr("Renamed"),
		Description: testutil.StringPtr("hypertrophy"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "hypertrophy", f.reloadPlan(t).Description)
}

func TestActivateIsExclusive(t *testing.T) {
	f := newFixture(t)
	second, err := f.plans.CreatePlan(f.ctx, f.owner, planInput("Second"))
	require.NoError(t, err)

	res, err := f.plans.Activate(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = f.plans.Activate(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed, "activating the active plan is a no-op")

	_, err = f.plans.Activate(f.ctx, f.owner, second.ID)
	require.NoError(t, err)

	assert.False(t, f.reloadPlan(t).IsCurrentlyActive)
	got, err := f.plans.GetPlan(f.ctx, f.owner, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStateCurrentlyActive, got.State)
}

// staleDeactivation sees no active plan to switch off, like a transaction that started
// before a concurrent activation committed.
type staleDeactivation struct {
	repository.TrainingPlanRepository
}

func (staleDeactivation) DeactivateAllForOwner(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func TestActivateRacingActivationConflicts(t *testing.T) {
	f := newFixture(t)
	second, err := f.plans.CreatePlan(f.ctx, f.owner, planInput("Second"))
	require.NoError(t, err)
	_, err = f.plans.Activate(f.ctx, f.owner, second.ID)
	require.NoError(t, err)

	racing := *f.store
	racing.Plans = staleDeactivation{f.store.Plans}
	plans := NewPlanService(&racing, NewPlanGuard(&racing, 3), nil, logger.Nop())

	_, err = plans.Activate(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindConflict)

	assert.False(t, f.reloadPlan(t).IsCurrentlyActive)
	got, err := f.plans.GetPlan(f.ctx, f.owner, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStateCurrentlyActive, got.State)
}

func TestActivateArchivedPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.plans.Archive(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)

	_, err = f.plans.Activate(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindConflict)
}

// completeAndCustomize leaves day-level state on the fixture plan: one session and two overrides.
func completeAndCustomize(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.history.CompleteDay(f.ctx, f.owner, f.plan.ID, 1, "felt strong")
	require.NoError(t, err)
	f.customize(t, 8, f.routine.FirstSet(), 70)
	f.customize(t, 15, f.routine.FirstSet(), 72)
}

func requireDayStateCleared(t *testing.T, f *fixture) {
	t.Helper()
	customizations, err := f.store.Customizations.CountByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, customizations)
	sessions, err := f.store.Sessions.CountByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, sessions)

	history, err := f.history.ListHistory(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, history, 1, "sessions survive dissociation")
	assert.Nil(t, history[0].PlanID)
	assert.Equal(t, "Spring Block", history[0].PlanName)
	assert.Equal(t, 1, *history[0].PlanDay)
}

func TestDeactivateCascades(t *testing.T) {
	f := newFixture(t)
	_, err := f.plans.Activate(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	completeAndCustomize(t, f)

	res, err := f.plans.Deactivate(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(2), res.CustomizationsDeleted)
	assert.Equal(t, int64(1), res.SessionsDissociated)
	assert.Contains(t, res.Message, "2 customization(s) removed")
	assert.False(t, f.reloadPlan(t).IsCurrentlyActive)
	requireDayStateCleared(t, f)

	res, err = f.plans.Deactivate(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestArchive(t *testing.T) {
	t.Run("draft plan keeps its day state", func(t *testing.T) {
		f := newFixture(t)
		completeAndCustomize(t, f)

		res, err := f.plans.Archive(f.ctx, f.owner, f.plan.ID)
		require.NoError(t, err)
		assert.Zero(t, res.CustomizationsDeleted)
		n, err := f.store.Customizations.CountByPlan(f.ctx, f.plan.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, domain.PlanStateArchived, f.reloadPlan(t).State())
	})

	t.Run("active plan is cleaned up", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.Activate(f.ctx, f.owner, f.plan.ID)
		require.NoError(t, err)
		completeAndCustomize(t, f)

		_, err = f.plans.Archive(f.ctx, f.owner, f.plan.ID)
		require.NoError(t, err)
		plan := f.reloadPlan(t)
		assert.True(t, plan.IsArchived)
		assert.False(t, plan.IsCurrentlyActive)
		requireDayStateCleared(t, f)

		res, err := f.plans.Unarchive(f.ctx, f.owner, f.plan.ID)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, domain.PlanStateDraft, f.reloadPlan(t).State())
	})
}

func TestArchivedPlanIsReadOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.plans.Archive(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)

	_, err = f.plans.UpdatePlan(f.ctx, f.owner, f.plan.ID, UpdatePlanInput{Name: testutil.StringPtr("x")})
	requireKind(t, err, apperr.KindConflict)
	_, err = f.plans.SetDaySlot(f.ctx, f.owner, f.plan.ID, SlotInput{DayNumber: 2, IsRestDay: true})
	requireKind(t, err, apperr.KindConflict)
	_, err = f.plans.ResetStart(f.ctx, f.owner, f.plan.ID, testutil.PlanStart)
	requireKind(t, err, apperr.KindConflict)
	_, err = f.customizations.ResetAll(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindConflict)
	_, err = f.history.CompleteDay(f.ctx, f.owner, f.plan.ID, 1, "")
	requireKind(t, err, apperr.KindConflict)
}

func TestResetStart(t *testing.T) {
	f := newFixture(t)
	completeAndCustomize(t, f)
	newStart := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

	res, err := f.plans.ResetStart(f.ctx, f.owner, f.plan.ID, newStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.CustomizationsDeleted)
	assert.Equal(t, int64(1), res.SessionsDissociated)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), f.reloadPlan(t).StartDate)
	requireDayStateCleared(t, f)

	_, err = f.plans.ResetStart(f.ctx, f.owner, f.plan.ID, time.Time{})
	requireKind(t, err, apperr.KindValidation)
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t)
	completeAndCustomize(t, f)

	res, err := f.plans.Delete(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Plan)
	assert.Equal(t, int64(2), res.CustomizationsDeleted)

	_, err = f.plans.GetPlan(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindNotFound)
	slots, err := f.store.Slots.ListByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
	history, err := f.history.ListHistory(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDeletePlanRemovesExportObjects(t *testing.T) {
	f := newFixture(t)
	files := newMemoryStorage()
	exports := NewExportService(f.store, f.customizations, files, time.Minute, ClockFunc(func() time.Time { return f.now }), logger.Nop())
	for i := 0; i < 2; i++ {
		_, err := exports.ExportPlan(f.ctx, f.owner, f.plan.ID)
		require.NoError(t, err)
	}
	require.Len(t, files.objects, 2)

	plans := NewPlanService(f.store, NewPlanGuard(f.store, 3), files, logger.Nop())
	_, err := plans.Delete(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)

	assert.Empty(t, files.objects)
	rows, err := f.store.Exports.ListByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeletePlanSurvivesObjectRemovalFailure(t *testing.T) {
	f := newFixture(t)
	files := newMemoryStorage()
	exports := NewExportService(f.store, f.customizations, files, time.Minute, ClockFunc(func() time.Time { return f.now }), logger.Nop())
	_, err := exports.ExportPlan(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	files.deleteErr = errors.New("bucket unavailable")

	plans := NewPlanService(f.store, NewPlanGuard(f.store, 3), files, logger.Nop())
	_, err = plans.Delete(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)

	_, err = plans.GetPlan(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindNotFound)
	assert.Len(t, files.objects, 1)
}

func TestSetDaySlotPrunesCustomizations(t *testing.T) {
	f := newFixture(t)
	pull := testutil.SeedRoutine(t, f.store, f.owner, "Pull")
	push := f.routine.Routine.ID
	f.customize(t, 1, f.routine.FirstSet(), 70)
	f.customize(t, 8, f.routine.FirstSet(), 70)

	countOverrides := func() int64 {
		n, err := f.store.Customizations.CountByPlan(f.ctx, f.plan.ID)
		require.NoError(t, err)
		return n
	}

	slot, err := f.plans.SetDaySlot(f.ctx, f.owner, f.plan.ID, SlotInput{DayNumber: 1, RoutineID: &push})
	require.NoError(t, err)
	assert.Equal(t, push, *slot.RoutineID)
	assert.Equal(t, int64(2), countOverrides(), "same routine keeps overrides")

	slot, err = f.plans.SetDaySlot(f.ctx, f.owner, f.plan.ID, SlotInput{DayNumber: 1, RoutineID: &pull.Routine.ID})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, slot.ID)
	assert.Zero(t, countOverrides())

	view, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, "Pull", view.RoutineName)

	_, err = f.plans.SetDaySlot(f.ctx, f.owner, f.plan.ID, SlotInput{DayNumber: 8})
	requireKind(t, err, apperr.KindValidation)
}

func TestClearDaySlot(t *testing.T) {
	f := newFixture(t)
	f.customize(t, 22, f.routine.FirstSet(), 70)

	require.NoError(t, f.plans.ClearDaySlot(f.ctx, f.owner, f.plan.ID, 1))
	n, err := f.store.Customizations.CountByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	view, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 22)
	require.NoError(t, err)
	assert.Equal(t, "unassigned", string(view.Status))

	requireKind(t, f.plans.ClearDaySlot(f.ctx, f.owner, f.plan.ID, 0), apperr.KindValidation)
}

func TestPlanGuardDefaultsCeiling(t *testing.T) {
	store := testutil.NewStore(t)
	guard := NewPlanGuard(store, 0)
	plans := NewPlanService(store, guard, nil, logger.Nop())
	owner := testutil.SeedUser(t, store)

	for i := 0; i < DefaultMaxNonArchivedPlans; i++ {
		_, err := plans.CreatePlan(context.Background(), owner, planInput(fmt.Sprintf("Block %d", i)))
		require.NoError(t, err)
	}
	_, err := plans.CreatePlan(context.Background(), owner, planInput("Overflow"))
	requireKind(t, err, apperr.KindConflict)
}
