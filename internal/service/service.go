package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// --- Clock ---

// Clock supplies "now" to date-sensitive logic (today view, history timestamps).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// --- Shared helpers ---

// storeErr turns repository failures into apperr values. ErrNotFound becomes NOT_FOUND for
// the given resource; anything unexpected becomes INTERNAL.
func storeErr(err error, resource string, id any) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(resource, id)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(fmt.Sprintf("%s already exists", resource), nil)
	default:
		return apperr.Internal(fmt.Sprintf("%s storage failure", resource), err)
	}
}

// loadOwnedPlan fetches the plan and hides plans of other users behind NOT_FOUND.
func loadOwnedPlan(ctx context.Context, plans repository.TrainingPlanRepository, ownerID, planID uuid.UUID) (*domain.TrainingPlan, error) {
	plan, err := plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeErr(err, "training plan", planID)
	}
	if plan.OwnerID != ownerID {
		return nil, apperr.NotFound("training plan", planID)
	}
	return plan, nil
}

func loadOwnedRoutine(ctx context.Context, routines repository.RoutineRepository, ownerID, routineID uuid.UUID) (*domain.Routine, error) {
	routine, err := routines.GetByID(ctx, routineID)
	if err != nil {
		return nil, storeErr(err, "routine", routineID)
	}
	if routine.OwnerID != ownerID {
		return nil, apperr.NotFound("routine", routineID)
	}
	return routine, nil
}

// requireWritable rejects mutations of archived plans.
func requireWritable(plan *domain.TrainingPlan) error {
	if plan.IsArchived {
		return apperr.Conflict(fmt.Sprintf("plan %s is archived and read-only", plan.ID), map[string]any{
			"planId":      plan.ID,
			"suggestions": []string{"unarchive the plan first"},
		})
	}
	return nil
}

// routineStructure is a routine's exercises with their ordered sets.
type routineStructure struct {
	exercises []domain.RoutineExercise
	sets      map[uuid.UUID][]domain.ExerciseSet // by routine exercise id
}

// setOwners maps every set id of the routine to its parent routine exercise.
func (rs *routineStructure) setOwners() map[uuid.UUID]uuid.UUID {
	owners := make(map[uuid.UUID]uuid.UUID)
	for exID, sets := range rs.sets {
		for _, set := range sets {
			owners[set.ID] = exID
		}
	}
	return owners
}

func (rs *routineStructure) setIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, ex := range rs.exercises {
		for _, set := range rs.sets[ex.ID] {
			ids = append(ids, set.ID)
		}
	}
	return ids
}

func loadRoutineStructure(ctx context.Context, routines repository.RoutineRepository, routineID uuid.UUID) (*routineStructure, error) {
	exercises, err := routines.GetExercisesOrdered(ctx, routineID)
	if err != nil {
		return nil, storeErr(err, "routine exercises", routineID)
	}
	rs := &routineStructure{exercises: exercises, sets: make(map[uuid.UUID][]domain.ExerciseSet, len(exercises))}
	for _, ex := range exercises {
		sets, err := routines.GetSetsOrdered(ctx, ex.ID)
		if err != nil {
			return nil, storeErr(err, "exercise sets", ex.ID)
		}
		rs.sets[ex.ID] = sets
	}
	return rs, nil
}

// --- Target validation ---

// Bounds of the intensity scales.
const (
	MinRIR = 0
	MaxRIR = 10
	MinRPE = 1
	MaxRPE = 10
)

// targetValues is the shape shared by base set targets and per-day overrides.
type targetValues struct {
	repsMin *int
	repsMax *int
	weight  *float64
	rir     *int
	rpe     *int
}

// violations lists every problem with the values, each prefixed with field.
func (t targetValues) violations(field string) []string {
	var out []string
	if t.repsMin != nil && *t.repsMin <= 0 {
		out = append(out, fmt.Sprintf("%s: rep minimum must be greater than 0", field))
	}
	if t.repsMax != nil && *t.repsMax <= 0 {
		out = append(out, fmt.Sprintf("%s: rep maximum must be greater than 0", field))
	}
	if t.repsMin != nil && t.repsMax != nil && *t.repsMin > *t.repsMax {
		out = append(out, fmt.Sprintf("%s: rep minimum %d is greater than rep maximum %d", field, *t.repsMin, *t.repsMax))
	}
	if t.weight != nil && *t.weight < 0 {
		out = append(out, fmt.Sprintf("%s: weight cannot be negative", field))
	}
	if t.rir != nil && (*t.rir < MinRIR || *t.rir > MaxRIR) {
		out = append(out, fmt.Sprintf("%s: RIR must be between %d and %d", field, MinRIR, MaxRIR))
	}
	if t.rpe != nil && (*t.rpe < MinRPE || *t.rpe > MaxRPE) {
		out = append(out, fmt.Sprintf("%s: RPE must be between %d and %d", field, MinRPE, MaxRPE))
	}
	if t.rir != nil && t.rpe != nil {
		out = append(out, fmt.Sprintf("%s: RIR and RPE cannot both be set", field))
	}
	return out
}
