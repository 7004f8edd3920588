package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// --- Inputs / outputs ---

type SetInput struct {
	TargetRepsMin *int     `json:"targetRepsMin,omitempty"`
	TargetRepsMax *int     `json:"targetRepsMax,omitempty"`
	TargetWeight  *float64 `json:"targetWeight,omitempty"`
	TargetRIR     *int     `json:"rir,omitempty"`
	TargetRPE     *int     `json:"rpe,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

func (in SetInput) targets() targetValues {
	return targetValues{repsMin: in.TargetRepsMin, repsMax: in.TargetRepsMax, weight: in.TargetWeight, rir: in.TargetRIR, rpe: in.TargetRPE}
}

type ExerciseInput struct {
	ExerciseName string     `json:"exerciseName"`
	Notes        string     `json:"notes,omitempty"`
	Sets         []SetInput `json:"sets"`
}

type CreateRoutineInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Exercises   []ExerciseInput `json:"exercises"`
}

type RoutineExerciseDetails struct {
	domain.RoutineExercise
	Sets []domain.ExerciseSet `json:"sets"`
}

// RoutineDetails is a routine with its ordered exercises and sets.
type RoutineDetails struct {
	domain.Routine
	Exercises []RoutineExerciseDetails `json:"exercises"`
}

// RoutineService manages routines, the base truth plan days resolve to.
type RoutineService interface {
	CreateRoutine(ctx context.Context, ownerID uuid.UUID, in CreateRoutineInput) (*RoutineDetails, error)
	GetRoutine(ctx context.Context, ownerID, routineID uuid.UUID) (*RoutineDetails, error)
	ListRoutines(ctx context.Context, ownerID uuid.UUID) ([]domain.Routine, error)
	RenameRoutine(ctx context.Context, ownerID, routineID uuid.UUID, name string) (*domain.Routine, error)
	UpdateSet(ctx context.Context, ownerID, routineID, setID uuid.UUID, in SetInput) (*domain.ExerciseSet, error)
	DuplicateRoutine(ctx context.Context, ownerID, routineID uuid.UUID, name string) (*RoutineDetails, error)
	DeleteRoutine(ctx context.Context, ownerID, routineID uuid.UUID) (int64, error)
}

// --- Service Implementation ---

type routineService struct {
	store *repository.Store
	guard PlanGuard
	log   *logger.Logger
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(store *repository.Store, guard PlanGuard, baseLog *logger.Logger) RoutineService {
	return &routineService{
		store: store,
		guard: guard,
		log:   baseLog.With("service", "RoutineService"),
	}
}

func (s *routineService) CreateRoutine(ctx context.Context, ownerID uuid.UUID, in CreateRoutineInput) (*RoutineDetails, error) {
	var violations []string
	if strings.TrimSpace(in.Name) == "" {
		violations = append(violations, "name is required")
	}
	for i, ex := range in.Exercises {
		if strings.TrimSpace(ex.ExerciseName) == "" {
			violations = append(violations, fmt.Sprintf("exercises[%d]: exerciseName is required", i))
		}
		for j, set := range ex.Sets {
			violations = append(violations, set.targets().violations(fmt.Sprintf("exercises[%d].sets[%d]", i, j))...)
		}
	}
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid routine", violations...)
	}
	if err := s.guard.CheckRoutineName(ctx, ownerID, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	var details *RoutineDetails
	err := s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		details, err = s.createTree(ctx, ownerID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("routine created", "routineId", details.ID, "ownerId", ownerID, "exercises", len(details.Exercises))
	return details, nil
}

// createTree writes the routine with its exercises and sets; positions follow input order.
func (s *routineService) createTree(ctx context.Context, ownerID uuid.UUID, in CreateRoutineInput) (*RoutineDetails, error) {
	routine := &domain.Routine{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if _, err := s.store.Routines.Create(ctx, routine); err != nil {
		return nil, storeErr(err, "routine", routine.Name)
	}

	details := &RoutineDetails{Routine: *routine, Exercises: make([]RoutineExerciseDetails, 0, len(in.Exercises))}
	for i, exIn := range in.Exercises {
		ex := &domain.RoutineExercise{
			RoutineID:    routine.ID,
			ExerciseName: strings.TrimSpace(exIn.ExerciseName),
			Position:     i + 1,
			Notes:        exIn.Notes,
		}
		if _, err := s.store.Routines.AddExercise(ctx, ex); err != nil {
			return nil, storeErr(err, "routine exercise", routine.ID)
		}
		exDetails := RoutineExerciseDetails{RoutineExercise: *ex, Sets: make([]domain.ExerciseSet, 0, len(exIn.Sets))}
		for j, setIn := range exIn.Sets {
			set := &domain.ExerciseSet{
				RoutineExerciseID: ex.ID,
				Position:          j + 1,
				TargetRepsMin:     setIn.TargetRepsMin,
				TargetRepsMax:     setIn.TargetRepsMax,
				TargetWeight:      setIn.TargetWeight,
				TargetRIR:         setIn.TargetRIR,
				TargetRPE:         setIn.TargetRPE,
				Notes:             setIn.Notes,
			}
			if _, err := s.store.Routines.AddSet(ctx, set); err != nil {
				return nil, storeErr(err, "exercise set", ex.ID)
			}
			exDetails.Sets = append(exDetails.Sets, *set)
		}
		details.Exercises = append(details.Exercises, exDetails)
	}
	return details, nil
}

func (s *routineService) GetRoutine(ctx context.Context, ownerID, routineID uuid.UUID) (*RoutineDetails, error) {
	routine, err := loadOwnedRoutine(ctx, s.store.Routines, ownerID, routineID)
	if err != nil {
		return nil, err
	}
	rs, err := loadRoutineStructure(ctx, s.store.Routines, routine.ID)
	if err != nil {
		return nil, err
	}
	details := &RoutineDetails{Routine: *routine, Exercises: make([]RoutineExerciseDetails, 0, len(rs.exercises))}
	for _, ex := range rs.exercises {
		sets := rs.sets[ex.ID]
		if sets == nil {
			sets = []domain.ExerciseSet{}
		}
		details.Exercises = append(details.Exercises, RoutineExerciseDetails{RoutineExercise: ex, Sets: sets})
	}
	return details, nil
}

func (s *routineService) ListRoutines(ctx context.Context, ownerID uuid.UUID) ([]domain.Routine, error) {
	routines, err := s.store.Routines.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr(err, "routine", ownerID)
	}
	return routines, nil
}

// RenameRoutine only changes the label, so plans using the routine do not block it.
func (s *routineService) RenameRoutine(ctx context.Context, ownerID, routineID uuid.UUID, name string) (*domain.Routine, error) {
	routine, err := loadOwnedRoutine(ctx, s.store.Routines, ownerID, routineID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckRoutineName(ctx, ownerID, name, routine.ID); err != nil {
		return nil, err
	}
	routine.Name = strings.TrimSpace(name)
	if err := s.store.Routines.Update(ctx, routine); err != nil {
		return nil, storeErr(err, "routine", routine.ID)
	}
	return routine, nil
}

func (s *routineService) UpdateSet(ctx context.Context, ownerID, routineID, setID uuid.UUID, in SetInput) (*domain.ExerciseSet, error) {
	if v := in.targets().violations("set"); len(v) > 0 {
		return nil, apperr.Validation("invalid exercise set", v...)
	}
	routine, err := loadOwnedRoutine(ctx, s.store.Routines, ownerID, routineID)
	if err != nil {
		return nil, err
	}
	set, err := s.store.Routines.GetSetByID(ctx, setID)
	if err != nil {
		return nil, storeErr(err, "exercise set", setID)
	}
	rs, err := loadRoutineStructure(ctx, s.store.Routines, routine.ID)
	if err != nil {
		return nil, err
	}
	if _, ok := rs.setOwners()[set.ID]; !ok {
		return nil, apperr.NotFound("exercise set", setID)
	}
	if err := s.guard.CheckRoutineEditable(ctx, routine.ID); err != nil {
		return nil, err
	}

	set.TargetRepsMin = in.TargetRepsMin
	set.TargetRepsMax = in.TargetRepsMax
	set.TargetWeight = in.TargetWeight
	set.TargetRIR = in.TargetRIR
	set.TargetRPE = in.TargetRPE
	set.Notes = in.Notes
	if err := s.store.Routines.UpdateSet(ctx, set); err != nil {
		return nil, storeErr(err, "exercise set", set.ID)
	}
	return set, nil
}

// DuplicateRoutine copies the routine tree under a new name; it is the usual way out of a
// CheckRoutineEditable conflict.
func (s *routineService) DuplicateRoutine(ctx context.Context, ownerID, routineID uuid.UUID, name string) (*RoutineDetails, error) {
	source, err := s.GetRoutine(ctx, ownerID, routineID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = source.Name + " (copy)"
	}
	if err := s.guard.CheckRoutineName(ctx, ownerID, name, uuid.Nil); err != nil {
		return nil, err
	}

	in := CreateRoutineInput{Name: name, Description: source.Description}
	for _, ex := range source.Exercises {
		exIn := ExerciseInput{ExerciseName: ex.ExerciseName, Notes: ex.Notes}
		for _, set := range ex.Sets {
			exIn.Sets = append(exIn.Sets, SetInput{
				TargetRepsMin: set.TargetRepsMin,
				TargetRepsMax: set.TargetRepsMax,
				TargetWeight:  set.TargetWeight,
				TargetRIR:     set.TargetRIR,
				TargetRPE:     set.TargetRPE,
				Notes:         set.Notes,
			})
		}
		in.Exercises = append(in.Exercises, exIn)
	}

	var details *RoutineDetails
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		details, err = s.createTree(ctx, ownerID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("routine duplicated", "sourceId", source.ID, "routineId", details.ID)
	return details, nil
}

// DeleteRoutine removes the routine tree and every override that targeted its sets. It
// returns how many overrides were removed.
func (s *routineService) DeleteRoutine(ctx context.Context, ownerID, routineID uuid.UUID) (int64, error) {
	routine, err := loadOwnedRoutine(ctx, s.store.Routines, ownerID, routineID)
	if err != nil {
		return 0, err
	}
	if err := s.guard.CheckRoutineDeletable(ctx, routine.ID); err != nil {
		return 0, err
	}

	var removed int64
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rs, err := loadRoutineStructure(ctx, s.store.Routines, routine.ID)
		if err != nil {
			return err
		}
		if removed, err = s.store.Customizations.DeleteBySetIDs(ctx, rs.setIDs()); err != nil {
			return storeErr(err, "day customization", routine.ID)
		}
		return storeErr(s.store.Routines.Delete(ctx, routine.ID), "routine", routine.ID)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("routine deleted", "routineId", routine.ID, "customizationsDeleted", removed)
	return removed, nil
}
