package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workoutSessionRepository struct {
	db *gorm.DB
}

func NewWorkoutSessionRepository(db *gorm.DB) repository.WorkoutSessionRepository {
	return &workoutSessionRepository{db: db}
}

func (r *workoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (uuid.UUID, error) {
	if session.UserID == uuid.Nil {
		return uuid.Nil, errors.New("workout session requires userId")
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if err := conn(ctx, r.db).Create(session).Error; err != nil {
		return uuid.Nil, translateErr(err)
	}
	return session.ID, nil
}

func (r *workoutSessionRepository) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.WorkoutSession{}).Where("plan_id = ?", planID).Count(&n).Error
	return n, err
}

func (r *workoutSessionRepository) DissociatePlan(ctx context.Context, userID, planID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db).Model(&domain.WorkoutSession{}).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Update("plan_id", nil)
	return res.RowsAffected, res.Error
}

func (r *workoutSessionRepository) ExistsForDay(ctx context.Context, userID, planID uuid.UUID, day int) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.WorkoutSession{}).
		Where("user_id = ? AND plan_id = ? AND plan_day = ?", userID, planID, day).
		Count(&n).Error
	return n > 0, err
}

func (r *workoutSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WorkoutSession, error) {
	var sessions []domain.WorkoutSession
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("performed_at DESC").Find(&sessions).Error
	return sessions, err
}
