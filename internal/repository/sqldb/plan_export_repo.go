package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type planExportRepository struct {
	db *gorm.DB
}

func NewPlanExportRepository(db *gorm.DB) repository.PlanExportRepository {
	return &planExportRepository{db: db}
}

func (r *planExportRepository) Create(ctx context.Context, export *domain.PlanExport) (uuid.UUID, error) {
	if export.PlanID == uuid.Nil || export.ObjectKey == "" {
		return uuid.Nil, errors.New("plan export requires planId and objectKey")
	}
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	if err := conn(ctx, r.db).Create(export).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return export.ID, nil
}

func (r *planExportRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanExport, error) {
	var exports []domain.PlanExport
	err := conn(ctx, r.db).Where("plan_id = ?", planID).Order("created_at DESC").Find(&exports).Error
	return exports, err
}

func (r *planExportRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Where("plan_id = ?", planID).Delete(&domain.PlanExport{})
	return res.RowsAffected, res.Error
}
