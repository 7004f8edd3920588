package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/schedule"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// HistoryService records completed plan days.
type HistoryService interface {
	CompleteDay(ctx context.Context, userID, planID uuid.UUID, day int, notes string) (*domain.WorkoutSession, error)
	ListHistory(ctx context.Context, userID uuid.UUID) ([]domain.WorkoutSession, error)
}

type historyService struct {
	store *repository.Store
	clock Clock
	log   *logger.Logger
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(store *repository.Store, clock Clock, baseLog *logger.Logger) HistoryService {
	if clock == nil {
		clock = SystemClock()
	}
	return &historyService{
		store: store,
		clock: clock,
		log:   baseLog.With("service", "HistoryService"),
	}
}

// CompleteDay stores a session for a routine day. The plan name, day and routine name are
// copied onto the session so they survive a later dissociation from the plan.
func (s *historyService) CompleteDay(ctx context.Context, userID, planID uuid.UUID, day int, notes string) (*domain.WorkoutSession, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, userID, planID)
	if err != nil {
		return nil, err
	}
	if err := requireWritable(plan); err != nil {
		return nil, err
	}
	slots, err := s.store.Slots.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", plan.ID)
	}
	res, err := schedule.Resolve(plan, slots, day)
	if err != nil {
		return nil, err
	}
	if res.Status != schedule.DayStatusRoutine {
		return nil, apperr.Validation("day cannot be completed", fmt.Sprintf("day %d is %s, not a routine day", day, res.Status))
	}
	routine, err := s.store.Routines.GetByID(ctx, *res.RoutineID)
	if err != nil {
		return nil, storeErr(err, "routine", *res.RoutineID)
	}

	session := &domain.WorkoutSession{
		UserID:      userID,
		PlanID:      &plan.ID,
		PlanName:    plan.Name,
		PlanDay:     &day,
		RoutineID:   &routine.ID,
		RoutineName: routine.Name,
		Notes:       strings.TrimSpace(notes),
		PerformedAt: s.clock.Now(),
	}
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.store.Sessions.ExistsForDay(ctx, userID, plan.ID, day)
		if err != nil {
			return storeErr(err, "workout session", plan.ID)
		}
		if exists {
			return apperr.Conflict(fmt.Sprintf("day %d of plan %s is already completed", day, plan.ID),
				map[string]any{"planId": plan.ID, "day": day})
		}
		_, err = s.store.Sessions.Create(ctx, session)
		return storeErr(err, "workout session", plan.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan day completed", "planId", plan.ID, "day", day, "sessionId", session.ID)
	return session, nil
}

func (s *historyService) ListHistory(ctx context.Context, userID uuid.UUID) ([]domain.WorkoutSession, error) {
	sessions, err := s.store.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "workout session", userID)
	}
	return sessions, nil
}
