package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxNonArchivedPlans is the ceiling used when none is configured.
const DefaultMaxNonArchivedPlans = 3

// Remediations offered when a routine is blocked by the plans using it.
const (
	SuggestDuplicateRoutine  = "duplicate the routine and edit the copy"
	SuggestArchivePlan       = "archive the blocking plans"
	SuggestDeactivatePlan    = "deactivate the blocking plans and reassign their days"
	SuggestDissociateRoutine = "remove the routine from every plan day that uses it"
)

// BlockingPlan identifies a plan that prevents a routine change.
type BlockingPlan struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	IsArchived        bool      `json:"isArchived"`
	IsCurrentlyActive bool      `json:"isCurrentlyActive"`
}

// RoutineInUseDetails is the CONFLICT payload for a blocked routine edit or delete.
type RoutineInUseDetails struct {
	RoutineID     uuid.UUID      `json:"routineId"`
	BlockingPlans []BlockingPlan `json:"blockingPlans"`
	Suggestions   []string       `json:"suggestions"`
}

// PlanLimitDetails is the CONFLICT payload for the non-archived plan ceiling.
type PlanLimitDetails struct {
	Limit       int      `json:"limit"`
	Current     int64    `json:"current"`
	Suggestions []string `json:"suggestions"`
}

// PlanGuard enforces the cross-cutting plan and routine rules. Every check runs before
// any mutation and returns a CONFLICT (or VALIDATION) apperr.
type PlanGuard interface {
	CheckPlanCeiling(ctx context.Context, ownerID uuid.UUID) error
	CheckPlanName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) error
	CheckRoutineName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) error
	CheckRoutineEditable(ctx context.Context, routineID uuid.UUID) error
	CheckRoutineDeletable(ctx context.Context, routineID uuid.UUID) error
}

type planGuard struct {
	store    *repository.Store
	maxPlans int
}

// NewPlanGuard creates the guard; maxPlans < 1 falls back to DefaultMaxNonArchivedPlans.
func NewPlanGuard(store *repository.Store, maxPlans int) PlanGuard {
	if maxPlans < 1 {
		maxPlans = DefaultMaxNonArchivedPlans
	}
	return &planGuard{store: store, maxPlans: maxPlans}
}

func (g *planGuard) CheckPlanCeiling(ctx context.Context, ownerID uuid.UUID) error {
	current, err := g.store.Plans.CountNonArchivedByOwner(ctx, ownerID)
	if err != nil {
		return storeErr(err, "training plan", ownerID)
	}
	if current >= int64(g.maxPlans) {
		return apperr.Conflict(
			fmt.Sprintf("maximum of %d non-archived plans reached", g.maxPlans),
			PlanLimitDetails{Limit: g.maxPlans, Current: current, Suggestions: []string{SuggestArchivePlan}},
		)
	}
	return nil
}

func (g *planGuard) CheckPlanName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("invalid plan", "name is required")
	}
	exists, err := g.store.Plans.ExistsByOwnerAndName(ctx, ownerID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return storeErr(err, "training plan", name)
	}
	if exists {
		return apperr.Conflict(fmt.Sprintf("a plan named %q already exists", strings.TrimSpace(name)), map[string]any{"name": name})
	}
	return nil
}

func (g *planGuard) CheckRoutineName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("invalid routine", "name is required")
	}
	exists, err := g.store.Routines.ExistsByOwnerAndName(ctx, ownerID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return storeErr(err, "routine", name)
	}
	if exists {
		return apperr.Conflict(fmt.Sprintf("a routine named %q already exists", strings.TrimSpace(name)), map[string]any{"name": name})
	}
	return nil
}

// CheckRoutineEditable blocks edits while any non-archived plan schedules the routine.
func (g *planGuard) CheckRoutineEditable(ctx context.Context, routineID uuid.UUID) error {
	blocking, err := g.plansUsingRoutine(ctx, routineID, false)
	if err != nil {
		return err
	}
	if len(blocking) == 0 {
		return nil
	}
	return apperr.Conflict(
		fmt.Sprintf("routine %s is used by %d active or draft plan(s)", routineID, len(blocking)),
		RoutineInUseDetails{
			RoutineID:     routineID,
			BlockingPlans: blocking,
			Suggestions:   []string{SuggestDuplicateRoutine, SuggestArchivePlan, SuggestDeactivatePlan},
		},
	)
}

// CheckRoutineDeletable blocks deletion while any plan, archived or not, references it.
func (g *planGuard) CheckRoutineDeletable(ctx context.Context, routineID uuid.UUID) error {
	blocking, err := g.plansUsingRoutine(ctx, routineID, true)
	if err != nil {
		return err
	}
	if len(blocking) == 0 {
		return nil
	}
	return apperr.Conflict(
		fmt.Sprintf("routine %s is referenced by %d plan(s)", routineID, len(blocking)),
		RoutineInUseDetails{
			RoutineID:     routineID,
			BlockingPlans: blocking,
			Suggestions:   []string{SuggestDissociateRoutine},
		},
	)
}

func (g *planGuard) plansUsingRoutine(ctx context.Context, routineID uuid.UUID, includeArchived bool) ([]BlockingPlan, error) {
	planIDs, err := g.store.Slots.ListPlanIDsByRoutine(ctx, routineID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", routineID)
	}
	blocking := make([]BlockingPlan, 0, len(planIDs))
	for _, id := range planIDs {
		plan, err := g.store.Plans.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue // orphaned slot
		}
		if err != nil {
			return nil, storeErr(err, "training plan", id)
		}
		if plan.IsArchived && !includeArchived {
			continue
		}
		blocking = append(blocking, BlockingPlan{
			ID:                plan.ID,
			Name:              plan.Name,
			IsArchived:        plan.IsArchived,
			IsCurrentlyActive: plan.IsCurrentlyActive,
		})
	}
	return blocking, nil
}
