package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type trainingPlanRepository struct {
	db *gorm.DB
}

func NewTrainingPlanRepository(db *gorm.DB) repository.TrainingPlanRepository {
	return &trainingPlanRepository{db: db}
}

func (r *trainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (uuid.UUID, error) {
	if plan.OwnerID == uuid.Nil || plan.Name == "" {
		return uuid.Nil, errors.New("plan requires ownerId and name")
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	plan.StartDate = domain.DateOnly(plan.StartDate)
	if err := conn(ctx, r.db).Create(plan).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return plan.ID, nil
}

func (r *trainingPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	if err := conn(ctx, r.db).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, translateErr(err)
	}
	plan.StartDate = domain.DateOnly(plan.StartDate)
	return &plan, nil
}

func (r *trainingPlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]domain.TrainingPlan, error) {
	var plans []domain.TrainingPlan
	q := conn(ctx, r.db).Where("owner_id = ?", ownerID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if err := q.Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].StartDate = domain.DateOnly(plans[i].StartDate)
	}
	return plans, nil
}

func (r *trainingPlanRepository) Update(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == uuid.Nil {
		return errors.New("training plan ID is required for update")
	}
	res := conn(ctx, r.db).Model(&domain.TrainingPlan{}).Where("id = ?", plan.ID).Updates(map[string]interface{}{
		"name":                plan.Name,
		"description":         plan.Description,
		"start_date":          domain.DateOnly(plan.StartDate),
		"is_archived":         plan.IsArchived,
		"is_currently_active": plan.IsCurrentlyActive,
	})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *trainingPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.TrainingPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *trainingPlanRepository) DeactivateAllForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Model(&domain.TrainingPlan{}).
		Where("owner_id = ? AND is_currently_active = ?", ownerID, true).
		Update("is_currently_active", false)
	return res.RowsAffected, res.Error
}

func (r *trainingPlanRepository) CountNonArchivedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.TrainingPlan{}).
		Where("owner_id = ? AND is_archived = ?", ownerID, false).
		Count(&n).Error
	return n, err
}

func (r *trainingPlanRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var n int64
	q := conn(ctx, r.db).Model(&domain.TrainingPlan{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
