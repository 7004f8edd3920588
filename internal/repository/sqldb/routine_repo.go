package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type routineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) repository.RoutineRepository {
	return &routineRepository{db: db}
}

func (r *routineRepository) Create(ctx context.Context, routine *domain.Routine) (uuid.UUID, error) {
	if routine.OwnerID == uuid.Nil || routine.Name == "" {
		return uuid.Nil, errors.New("routine requires ownerId and name")
	}
	if routine.ID == uuid.Nil {
		routine.ID = uuid.New()
	}
	if err := conn(ctx, r.db).Create(routine).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return routine.ID, nil
}

func (r *routineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error) {
	var routine domain.Routine
	if err := conn(ctx, r.db).Where("id = ?", id).First(&routine).Error; err != nil {
		return nil, translateErr(err)
	}
	return &routine, nil
}

func (r *routineRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Routine, error) {
	var routines []domain.Routine
	err := conn(ctx, r.db).Where("owner_id = ?", ownerID).Order("name ASC").Find(&routines).Error
	return routines, err
}

func (r *routineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	res := conn(ctx, r.db).Model(&domain.Routine{}).Where("id = ?", routine.ID).Updates(map[string]interface{}{
		"name":        routine.Name,
		"description": routine.Description,
	})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *routineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exerciseIDs := conn(ctx, r.db).Model(&domain.RoutineExercise{}).Select("id").Where("routine_id = ?", id)
	if err := conn(ctx, r.db).Where("routine_exercise_id IN (?)", exerciseIDs).Delete(&domain.ExerciseSet{}).Error; err != nil {
		return err
	}
	if err := conn(ctx, r.db).Where("routine_id = ?", id).Delete(&domain.RoutineExercise{}).Error; err != nil {
		return err
	}
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Routine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *routineRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var n int64
	q := conn(ctx, r.db).Model(&domain.Routine{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *routineRepository) AddExercise(ctx context.Context, exercise *domain.RoutineExercise) (uuid.UUID, error) {
	if exercise.RoutineID == uuid.Nil || exercise.ExerciseName == "" {
		return uuid.Nil, errors.New("routine exercise requires routineId and exerciseName")
	}
	if exercise.ID == uuid.Nil {
		exercise.ID = uuid.New()
	}
	if err := conn(ctx, r.db).Create(exercise).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return exercise.ID, nil
}

func (r *routineRepository) AddSet(ctx context.Context, set *domain.ExerciseSet) (uuid.UUID, error) {
	if set.RoutineExerciseID == uuid.Nil {
		return uuid.Nil, errors.New("exercise set requires routineExerciseId")
	}
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	if err := conn(ctx, r.db).Create(set).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return set.ID, nil
}

func (r *routineRepository) UpdateSet(ctx context.Context, set *domain.ExerciseSet) error {
	res := conn(ctx, r.db).Model(&domain.ExerciseSet{}).Where("id = ?", set.ID).Updates(map[string]interface{}{
		"target_reps_min": set.TargetRepsMin,
		"target_reps_max": set.TargetRepsMax,
		"target_weight":   set.TargetWeight,
		"target_rir":      set.TargetRIR,
		"target_rpe":      set.TargetRPE,
		"notes":           set.Notes,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *routineRepository) GetExercisesOrdered(ctx context.Context, routineID uuid.UUID) ([]domain.RoutineExercise, error) {
	var exercises []domain.RoutineExercise
	err := conn(ctx, r.db).Where("routine_id = ?", routineID).Order("position ASC").Find(&exercises).Error
	return exercises, err
}

func (r *routineRepository) GetSetsOrdered(ctx context.Context, routineExerciseID uuid.UUID) ([]domain.ExerciseSet, error) {
	var sets []domain.ExerciseSet
	err := conn(ctx, r.db).Where("routine_exercise_id = ?", routineExerciseID).Order("position ASC").Find(&sets).Error
	return sets, err
}

func (r *routineRepository) GetSetByID(ctx context.Context, setID uuid.UUID) (*domain.ExerciseSet, error) {
	var set domain.ExerciseSet
	if err := conn(ctx, r.db).Where("id = ?", setID).First(&set).Error; err != nil {
		return nil, translateErr(err)
	}
	return &set, nil
}
