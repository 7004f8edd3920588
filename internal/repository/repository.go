package repository

import (
	"alcyxob/fitness-planner/internal/domain"
	"context"

	"github.com/google/uuid"
)

// Error constants for the repository layer. Services translate these into apperr kinds.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn inside one storage transaction. Repositories called with the ctx
// handed to fn join that transaction; a nested WithinTransaction joins the outer one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository of one backend together with its transactor.
type Store struct {
	Tx             Transactor
	Users          UserRepository
	Plans          TrainingPlanRepository
	Slots          DayPlanSlotRepository
	Routines       RoutineRepository
	Customizations DayCustomizationRepository
	Sessions       WorkoutSessionRepository
	Exports        PlanExportRepository
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingPlan, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]domain.TrainingPlan, error)
	// Update writes every mutable column of the plan (name, description, start date, flags).
	Update(ctx context.Context, plan *domain.TrainingPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeactivateAllForOwner clears the active flag on every plan of the owner and returns
	// how many rows changed.
	DeactivateAllForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountNonArchivedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	// ExistsByOwnerAndName ignores the plan with excludeID (uuid.Nil excludes nothing).
	ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
}

// DayPlanSlotRepository stores the repeating microcycle pattern of a plan.
type DayPlanSlotRepository interface {
	// Upsert replaces the slot at (PlanID, DayNumber).
	Upsert(ctx context.Context, slot *domain.DayPlanSlot) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.DayPlanSlot, error)
	DeleteByPlanAndDay(ctx context.Context, planID uuid.UUID, dayNumber int) (int64, error)
	DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	// ListPlanIDsByRoutine returns the distinct plans whose pattern references the routine.
	ListPlanIDsByRoutine(ctx context.Context, routineID uuid.UUID) ([]uuid.UUID, error)
}

// RoutineRepository covers routines with their ordered exercises and sets.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	// Delete removes the routine together with its exercises and their sets.
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)

	AddExercise(ctx context.Context, exercise *domain.RoutineExercise) (uuid.UUID, error)
	AddSet(ctx context.Context, set *domain.ExerciseSet) (uuid.UUID, error)
	UpdateSet(ctx context.Context, set *domain.ExerciseSet) error
	GetExercisesOrdered(ctx context.Context, routineID uuid.UUID) ([]domain.RoutineExercise, error)
	GetSetsOrdered(ctx context.Context, routineExerciseID uuid.UUID) ([]domain.ExerciseSet, error)
	GetSetByID(ctx context.Context, setID uuid.UUID) (*domain.ExerciseSet, error)
}

// DayCustomizationRepository is the store of sparse per-set overrides keyed by
// (plan, absolute day, set). Absence of a row means "use the base value".
type DayCustomizationRepository interface {
	FindByDay(ctx context.Context, planID uuid.UUID, day int) ([]domain.DayCustomization, error)
	Find(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (*domain.DayCustomization, error)
	Exists(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (bool, error)
	CountByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error)
	CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	// ListCustomizedDays returns the sorted distinct day numbers carrying overrides.
	ListCustomizedDays(ctx context.Context, planID uuid.UUID) ([]int, error)
	// Upsert inserts or replaces the row at (PlanID, DayNumber, ExerciseSetID).
	Upsert(ctx context.Context, c *domain.DayCustomization) error
	Delete(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (int64, error)
	DeleteByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error)
	DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	DeleteBySetIDs(ctx context.Context, setIDs []uuid.UUID) (int64, error)
}

// WorkoutSessionRepository defines the history collaborator used by lifecycle cascades.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (uuid.UUID, error)
	CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	// DissociatePlan clears the plan reference on the user's sessions for the plan while
	// keeping the denormalized plan name and day.
	DissociatePlan(ctx context.Context, userID, planID uuid.UUID) (int64, error)
	ExistsForDay(ctx context.Context, userID, planID uuid.UUID, day int) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WorkoutSession, error)
}

// PlanExportRepository defines the interface for export metadata.
type PlanExportRepository interface {
	Create(ctx context.Context, export *domain.PlanExport) (uuid.UUID, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanExport, error)
	DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
}
