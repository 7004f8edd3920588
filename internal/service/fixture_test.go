package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/testutil"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixture is one user with a "Push" routine scheduled on day 1 of a four week plan
// (day 3 rest, the other days unassigned).
type fixture struct {
	ctx     context.Context
	store   *repository.Store
	owner   uuid.UUID
	routine testutil.SeededRoutine
	plan    domain.TrainingPlan
	now     time.Time

	plans          PlanService
	customizations CustomizationService
	routines       RoutineService
	history        HistoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	owner := testutil.SeedUser(t, store)
	routine := testutil.SeedRoutine(t, store, owner, "Push")
	plan := testutil.SeedPlan(t, store, owner, routine.Routine.ID, "Spring Block", 4)

	f := &fixture{
		ctx:     context.Background(),
		store:   store,
		owner:   owner,
		routine: routine,
		plan:    plan,
		now:     testutil.PlanStart.Add(10 * time.Hour),
	}
	clock := ClockFunc(func() time.Time { return f.now })
	guard := NewPlanGuard(store, 3)
	f.plans = NewPlanService(store, guard, nil, logger.Nop())
	f.customizations = NewCustomizationService(store, clock, logger.Nop())
	f.routines = NewRoutineService(store, guard, logger.Nop())
	f.history = NewHistoryService(store, clock, logger.Nop())
	return f
}

// customize stores an override directly, bypassing the service.
func (f *fixture) customize(t *testing.T, day int, set domain.ExerciseSet, weight float64) {
	t.Helper()
	require.NoError(t, f.store.Customizations.Upsert(f.ctx, &domain.DayCustomization{
		PlanID:            f.plan.ID,
		DayNumber:         day,
		ExerciseSetID:     set.ID,
		RoutineExerciseID: set.RoutineExerciseID,
		CustomWeight:      testutil.FloatPtr(weight),
	}))
}

func (f *fixture) reloadPlan(t *testing.T) *domain.TrainingPlan {
	t.Helper()
	plan, err := f.store.Plans.GetByID(f.ctx, f.plan.ID)
	require.NoError(t, err)
	return plan
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}
