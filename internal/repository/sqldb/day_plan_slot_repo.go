package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dayPlanSlotRepository struct {
	db *gorm.DB
}

func NewDayPlanSlotRepository(db *gorm.DB) repository.DayPlanSlotRepository {
	return &dayPlanSlotRepository{db: db}
}

func (r *dayPlanSlotRepository) Upsert(ctx context.Context, slot *domain.DayPlanSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "day_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_rest_day", "routine_id", "updated_at"}),
	}).Create(slot).Error
	if err != nil {
		return err
	}
	// an update keeps the stored id
	var stored domain.DayPlanSlot
	if err := conn(ctx, r.db).Where("plan_id = ? AND day_number = ?", slot.PlanID, slot.DayNumber).First(&stored).Error; err != nil {
		return translateErr(err)
	}
	*slot = stored
	return nil
}

func (r *dayPlanSlotRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.DayPlanSlot, error) {
	var slots []domain.DayPlanSlot
	err := conn(ctx, r.db).Where("plan_id = ?", planID).Order("day_number ASC").Find(&slots).Error
	return slots, err
}

func (r *dayPlanSlotRepository) DeleteByPlanAndDay(ctx context.Context, planID uuid.UUID, dayNumber int) (int64, error) {
	res := conn(ctx, r.db).Where("plan_id = ? AND day_number = ?", planID, dayNumber).Delete(&domain.DayPlanSlot{})
	return res.RowsAffected, res.Error
}

func (r *dayPlanSlotRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Where("plan_id = ?", planID).Delete(&domain.DayPlanSlot{})
	return res.RowsAffected, res.Error
}

func (r *dayPlanSlotRepository) ListPlanIDsByRoutine(ctx context.Context, routineID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).Model(&domain.DayPlanSlot{}).
		Where("routine_id = ?", routineID).
		Distinct().
		Pluck("plan_id", &ids).Error
	return ids, err
}
