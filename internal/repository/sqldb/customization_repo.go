package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type dayCustomizationRepository struct {
	db *gorm.DB
}

func NewDayCustomizationRepository(db *gorm.DB) repository.DayCustomizationRepository {
	return &dayCustomizationRepository{db: db}
}

func (r *dayCustomizationRepository) FindByDay(ctx context.Context, planID uuid.UUID, day int) ([]domain.DayCustomization, error) {
	var rows []domain.DayCustomization
	err := conn(ctx, r.db).Where("plan_id = ? AND day_number = ?", planID, day).Find(&rows).Error
	return rows, err
}

func (r *dayCustomizationRepository) Find(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (*domain.DayCustomization, error) {
	var row domain.DayCustomization
	err := conn(ctx, r.db).
		Where("plan_id = ? AND day_number = ? AND exercise_set_id = ?", planID, day, setID).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

func (r *dayCustomizationRepository) Exists(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.DayCustomization{}).
		Where("plan_id = ? AND day_number = ? AND exercise_set_id = ?", planID, day, setID).
		Count(&n).Error
	return n > 0, err
}

func (r *dayCustomizationRepository) CountByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.DayCustomization{}).
		Where("plan_id = ? AND day_number = ?", planID, day).
		Count(&n).Error
	return n, err
}

func (r *dayCustomizationRepository) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.DayCustomization{}).Where("plan_id = ?", planID).Count(&n).Error
	return n, err
}

func (r *dayCustomizationRepository) ListCustomizedDays(ctx context.Context, planID uuid.UUID) ([]int, error) {
	days := []int{}
	err := conn(ctx, r.db).Model(&domain.DayCustomization{}).
		Where("plan_id = ?", planID).
		Distinct().
		Order("day_number ASC").
		Pluck("day_number", &days).Error
	return days, err
}

// Upsert updates the row at (plan, day, set) in place and inserts it when none exists, so a
// stored row keeps its id.
func (r *dayCustomizationRepository) Upsert(ctx context.Context, c *domain.DayCustomization) error {
	res := conn(ctx, r.db).Model(&domain.DayCustomization{}).
		Where("plan_id = ? AND day_number = ? AND exercise_set_id = ?", c.PlanID, c.DayNumber, c.ExerciseSetID).
		Updates(map[string]interface{}{
			"routine_exercise_id": c.RoutineExerciseID,
			"custom_reps_min":     c.CustomRepsMin,
			"custom_reps_max":     c.CustomRepsMax,
			"custom_weight":       c.CustomWeight,
			"custom_rir":          c.CustomRIR,
			"custom_rpe":          c.CustomRPE,
			"custom_notes":        c.CustomNotes,
		})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return translateErr(conn(ctx, r.db).Create(c).Error)
}

func (r *dayCustomizationRepository) Delete(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).
		Where("plan_id = ? AND day_number = ? AND exercise_set_id = ?", planID, day, setID).
		Delete(&domain.DayCustomization{})
	return res.RowsAffected, res.Error
}

func (r *dayCustomizationRepository) DeleteByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error) {
	res := conn(ctx, r.db).Where("plan_id = ? AND day_number = ?", planID, day).Delete(&domain.DayCustomization{})
	return res.RowsAffected, res.Error
}

func (r *dayCustomizationRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Where("plan_id = ?", planID).Delete(&domain.DayCustomization{})
	return res.RowsAffected, res.Error
}

func (r *dayCustomizationRepository) DeleteBySetIDs(ctx context.Context, setIDs []uuid.UUID) (int64, error) {
	if len(setIDs) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db).Where("exercise_set_id IN ?", setIDs).Delete(&domain.DayCustomization{})
	return res.RowsAffected, res.Error
}
