package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/metrics"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Inputs / outputs ---

type CreatePlanInput struct {
	Name                 string
	Description          string
	StartDate            time.Time
	MicrocycleLengthDays int
	TotalMicrocycles     int
	Slots                []SlotInput
}

type UpdatePlanInput struct {
	Name        *string
	Description *string
}

// SlotInput configures one microcycle day: rest, a routine, or neither (unassigned).
type SlotInput struct {
	DayNumber int
	IsRestDay bool
	RoutineID *uuid.UUID
}

// PlanDetails is a plan with its pattern.
type PlanDetails struct {
	domain.TrainingPlan
	State         domain.PlanState     `json:"state"`
	EndDate       time.Time            `json:"endDate"`
	TotalDuration int                  `json:"totalDurationDays"`
	Slots         []domain.DayPlanSlot `json:"slots"`
}

// LifecycleResult reports what a transition did, for user-facing messaging.
type LifecycleResult struct {
	Plan                  *domain.TrainingPlan `json:"plan,omitempty"`
	Changed               bool                 `json:"changed"`
	CustomizationsDeleted int64                `json:"customizationsDeleted"`
	SessionsDissociated   int64                `json:"sessionsDissociated"`
	Message               string               `json:"message"`
}

// PlanService owns plan CRUD, the microcycle pattern and the lifecycle state machine.
type PlanService interface {
	CreatePlan(ctx context.Context, ownerID uuid.UUID, in CreatePlanInput) (*PlanDetails, error)
	GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*PlanDetails, error)
	ListPlans(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]domain.TrainingPlan, error)
	UpdatePlan(ctx context.Context, ownerID, planID uuid.UUID, in UpdatePlanInput) (*domain.TrainingPlan, error)
	SetDaySlot(ctx context.Context, ownerID, planID uuid.UUID, in SlotInput) (*domain.DayPlanSlot, error)
	ClearDaySlot(ctx context.Context, ownerID, planID uuid.UUID, dayNumber int) error

	Activate(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error)
	Deactivate(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error)
	Archive(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error)
	Unarchive(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error)
	ResetStart(ctx context.Context, ownerID, planID uuid.UUID, newStartDate time.Time) (*LifecycleResult, error)
	Delete(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error)
}

// --- Service Implementation ---

type planService struct {
	store *repository.Store
	guard PlanGuard
	files storage.FileStorage
	log   *logger.Logger
}

// NewPlanService creates a new instance of planService. files may be nil when exports are
// not stored anywhere; Delete then only drops the export rows.
func NewPlanService(store *repository.Store, guard PlanGuard, files storage.FileStorage, baseLog *logger.Logger) PlanService {
	return &planService{
		store: store,
		guard: guard,
		files: files,
		log:   baseLog.With("service", "PlanService"),
	}
}

// === Plan CRUD ===

func (s *planService) CreatePlan(ctx context.Context, ownerID uuid.UUID, in CreatePlanInput) (*PlanDetails, error) {
	var violations []string
	if strings.TrimSpace(in.Name) == "" {
		violations = append(violations, "name is required")
	}
	if in.StartDate.IsZero() {
		violations = append(violations, "startDate is required")
	}
	if in.MicrocycleLengthDays < domain.MinMicrocycleLengthDays || in.MicrocycleLengthDays > domain.MaxMicrocycleLengthDays {
		violations = append(violations, fmt.Sprintf("microcycleLengthDays must be between %d and %d",
			domain.MinMicrocycleLengthDays, domain.MaxMicrocycleLengthDays))
	}
	if in.TotalMicrocycles < domain.MinTotalMicrocycles || in.TotalMicrocycles > domain.MaxTotalMicrocycles {
		violations = append(violations, fmt.Sprintf("totalMicrocycles must be between %d and %d",
			domain.MinTotalMicrocycles, domain.MaxTotalMicrocycles))
	}
	seen := make(map[int]bool, len(in.Slots))
	for i, slot := range in.Slots {
		violations = append(violations, slotViolations(fmt.Sprintf("slots[%d]", i), slot, in.MicrocycleLengthDays)...)
		if seen[slot.DayNumber] {
			violations = append(violations, fmt.Sprintf("slots[%d]: day %d is configured twice", i, slot.DayNumber))
		}
		seen[slot.DayNumber] = true
	}
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid plan", violations...)
	}

	if err := s.guard.CheckPlanCeiling(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckPlanName(ctx, ownerID, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	plan := &domain.TrainingPlan{
		OwnerID:              ownerID,
		Name:                 strings.TrimSpace(in.Name),
		Description:          strings.TrimSpace(in.Description),
		StartDate:            domain.DateOnly(in.StartDate),
		MicrocycleLengthDays: in.MicrocycleLengthDays,
		TotalMicrocycles:     in.TotalMicrocycles,
	}

	var slots []domain.DayPlanSlot
	err := s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.Plans.Create(ctx, plan); err != nil {
			return storeErr(err, "training plan", plan.Name)
		}
		for _, slotIn := range in.Slots {
			slot, err := s.writeSlot(ctx, plan, slotIn)
			if err != nil {
				return err
			}
			slots = append(slots, *slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("plan created", "planId", plan.ID, "ownerId", ownerID, "totalDays", plan.TotalDurationDays())
	return newPlanDetails(plan, slots), nil
}

func (s *planService) GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*PlanDetails, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	slots, err := s.store.Slots.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", plan.ID)
	}
	return newPlanDetails(plan, slots), nil
}

func (s *planService) ListPlans(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]domain.TrainingPlan, error) {
	plans, err := s.store.Plans.ListByOwner(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, storeErr(err, "training plan", ownerID)
	}
	return plans, nil
}

func (s *planService) UpdatePlan(ctx context.Context, ownerID, planID uuid.UUID, in UpdatePlanInput) (*domain.TrainingPlan, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if err := requireWritable(plan); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != plan.Name {
		if err := s.guard.CheckPlanName(ctx, ownerID, *in.Name, plan.ID); err != nil {
			return nil, err
		}
		plan.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		plan.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.store.Plans.Update(ctx, plan); err != nil {
		return nil, storeErr(err, "training plan", plan.ID)
	}
	return plan, nil
}

// === Pattern editing ===

func (s *planService) SetDaySlot(ctx context.Context, ownerID, planID uuid.UUID, in SlotInput) (*domain.DayPlanSlot, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if err := requireWritable(plan); err != nil {
		return nil, err
	}
	if v := slotViolations("slot", in, plan.MicrocycleLengthDays); len(v) > 0 {
		return nil, apperr.Validation("invalid day slot", v...)
	}

	var slot *domain.DayPlanSlot
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		previous, err := s.slotRoutine(ctx, plan.ID, in.DayNumber)
		if err != nil {
			return err
		}
		if slot, err = s.writeSlot(ctx, plan, in); err != nil {
			return err
		}
		if !sameRoutine(previous, slot.RoutineID) {
			return s.pruneSlotCustomizations(ctx, plan, in.DayNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *planService) ClearDaySlot(ctx context.Context, ownerID, planID uuid.UUID, dayNumber int) error {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return err
	}
	if err := requireWritable(plan); err != nil {
		return err
	}
	if dayNumber < 1 || dayNumber > plan.MicrocycleLengthDays {
		return apperr.Validation("invalid day slot",
			fmt.Sprintf("dayNumber must be between 1 and %d", plan.MicrocycleLengthDays))
	}
	return s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.Slots.DeleteByPlanAndDay(ctx, plan.ID, dayNumber)
		if err != nil {
			return storeErr(err, "day plan slot", plan.ID)
		}
		if n == 0 {
			return nil
		}
		return s.pruneSlotCustomizations(ctx, plan, dayNumber)
	})
}

// writeSlot persists one validated slot; a referenced routine must belong to the plan owner.
func (s *planService) writeSlot(ctx context.Context, plan *domain.TrainingPlan, in SlotInput) (*domain.DayPlanSlot, error) {
	if in.RoutineID != nil {
		if _, err := loadOwnedRoutine(ctx, s.store.Routines, plan.OwnerID, *in.RoutineID); err != nil {
			return nil, err
		}
	}
	slot := &domain.DayPlanSlot{
		PlanID:    plan.ID,
		DayNumber: in.DayNumber,
		IsRestDay: in.IsRestDay,
		RoutineID: in.RoutineID,
	}
	if err := s.store.Slots.Upsert(ctx, slot); err != nil {
		return nil, storeErr(err, "day plan slot", plan.ID)
	}
	return slot, nil
}

func (s *planService) slotRoutine(ctx context.Context, planID uuid.UUID, dayNumber int) (*uuid.UUID, error) {
	slots, err := s.store.Slots.ListByPlan(ctx, planID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", planID)
	}
	for _, slot := range slots {
		if slot.DayNumber == dayNumber {
			return slot.RoutineID, nil
		}
	}
	return nil, nil
}

// pruneSlotCustomizations drops overrides on every absolute day mapped onto the microcycle
// day; they target sets of a routine the day no longer resolves to.
func (s *planService) pruneSlotCustomizations(ctx context.Context, plan *domain.TrainingPlan, dayNumber int) error {
	var pruned int64
	for d := dayNumber; d <= plan.TotalDurationDays(); d += plan.MicrocycleLengthDays {
		n, err := s.store.Customizations.DeleteByDay(ctx, plan.ID, d)
		if err != nil {
			return storeErr(err, "day customization", plan.ID)
		}
		pruned += n
	}
	if pruned > 0 {
		s.log.Info("pruned customizations after slot change", "planId", plan.ID, "dayNumber", dayNumber, "deleted", pruned)
	}
	return nil
}

func slotViolations(field string, in SlotInput, microcycleLength int) []string {
	var out []string
	if in.DayNumber < 1 || in.DayNumber > microcycleLength {
		out = append(out, fmt.Sprintf("%s: dayNumber must be between 1 and %d", field, microcycleLength))
	}
	if in.IsRestDay && in.RoutineID != nil {
		out = append(out, fmt.Sprintf("%s: a rest day cannot reference a routine", field))
	}
	return out
}

func sameRoutine(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// === Lifecycle ===

// cascadeCounts is what cleanupDayState removed.
type cascadeCounts struct {
	customizations int64
	sessions       int64
}

// cleanupDayState wipes every customization of the plan and dissociates the owner's history
// from it. Shared by deactivate, archive, resetStart and delete; callers run it in a tx.
func (s *planService) cleanupDayState(ctx context.Context, plan *domain.TrainingPlan) (cascadeCounts, error) {
	var counts cascadeCounts
	var err error
	if counts.customizations, err = s.store.Customizations.DeleteByPlan(ctx, plan.ID); err != nil {
		return counts, storeErr(err, "day customization", plan.ID)
	}
	if counts.sessions, err = s.store.Sessions.DissociatePlan(ctx, plan.OwnerID, plan.ID); err != nil {
		return counts, storeErr(err, "workout session", plan.ID)
	}
	metrics.CascadeRows.WithLabelValues("customizations").Add(float64(counts.customizations))
	metrics.CascadeRows.WithLabelValues("sessions").Add(float64(counts.sessions))
	return counts, nil
}

func (s *planService) Activate(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsArchived {
		return nil, apperr.Conflict(fmt.Sprintf("plan %s is archived and cannot be activated", plan.ID), map[string]any{
			"planId":      plan.ID,
			"suggestions": []string{"unarchive the plan first"},
		})
	}
	if plan.IsCurrentlyActive {
		return &LifecycleResult{Plan: plan, Message: "plan is already active"}, nil
	}

	var deactivated int64
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if deactivated, err = s.store.Plans.DeactivateAllForOwner(ctx, ownerID); err != nil {
			return storeErr(err, "training plan", ownerID)
		}
		plan.IsCurrentlyActive = true
		err = s.store.Plans.Update(ctx, plan)
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("another plan was activated at the same time", map[string]any{
				"planId":      plan.ID,
				"suggestions": []string{"retry the activation"},
			})
		}
		return storeErr(err, "training plan", plan.ID)
	})
	if err != nil {
		plan.IsCurrentlyActive = false
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues("activate").Inc()
	s.log.Info("plan activated", "planId", plan.ID, "ownerId", ownerID, "deactivatedOthers", deactivated)
	return &LifecycleResult{Plan: plan, Changed: true, Message: "plan activated"}, nil
}

func (s *planService) Deactivate(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsCurrentlyActive {
		return &LifecycleResult{Plan: plan, Message: "plan is not active"}, nil
	}

	var counts cascadeCounts
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if counts, err = s.cleanupDayState(ctx, plan); err != nil {
			return err
		}
		plan.IsCurrentlyActive = false
		return storeErr(s.store.Plans.Update(ctx, plan), "training plan", plan.ID)
	})
	if err != nil {
		plan.IsCurrentlyActive = true
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues("deactivate").Inc()
	s.log.Info("plan deactivated", "planId", plan.ID,
		"customizationsDeleted", counts.customizations, "sessionsDissociated", counts.sessions)
	return cascadeResult(plan, counts, "plan deactivated"), nil
}

func (s *planService) Archive(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsArchived {
		return &LifecycleResult{Plan: plan, Message: "plan is already archived"}, nil
	}

	wasActive := plan.IsCurrentlyActive
	var counts cascadeCounts
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if wasActive {
			var err error
			if counts, err = s.cleanupDayState(ctx, plan); err != nil {
				return err
			}
			plan.IsCurrentlyActive = false
		}
		plan.IsArchived = true
		return storeErr(s.store.Plans.Update(ctx, plan), "training plan", plan.ID)
	})
	if err != nil {
		plan.IsArchived, plan.IsCurrentlyActive = false, wasActive
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues("archive").Inc()
	s.log.Info("plan archived", "planId", plan.ID, "wasActive", wasActive,
		"customizationsDeleted", counts.customizations, "sessionsDissociated", counts.sessions)
	return cascadeResult(plan, counts, "plan archived"), nil
}

func (s *planService) Unarchive(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsArchived {
		return &LifecycleResult{Plan: plan, Message: "plan is not archived"}, nil
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.guard.CheckPlanCeiling(ctx, ownerID); err != nil {
			return err
		}
		plan.IsArchived = false
		plan.IsCurrentlyActive = false
		return storeErr(s.store.Plans.Update(ctx, plan), "training plan", plan.ID)
	})
	if err != nil {
		plan.IsArchived = true
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues("unarchive").Inc()
	s.log.Info("plan unarchived", "planId", plan.ID)
	return &LifecycleResult{Plan: plan, Changed: true, Message: "plan unarchived"}, nil
}

// ResetStart restarts the plan calendar. Day-level state no longer lines up with the new
// dates, so it is wiped whatever the active state.
func (s *planService) ResetStart(ctx context.Context, ownerID, planID uuid.UUID, newStartDate time.Time) (*LifecycleResult, error) {
	if newStartDate.IsZero() {
		return nil, apperr.Validation("invalid start date", "startDate is required")
	}
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsArchived {
		return nil, apperr.Conflict(fmt.Sprintf("plan %s is archived; its start date cannot be reset", plan.ID), map[string]any{
			"planId":      plan.ID,
			"suggestions": []string{"unarchive the plan first"},
		})
	}

	oldStart := plan.StartDate
	var counts cascadeCounts
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if counts, err = s.cleanupDayState(ctx, plan); err != nil {
			return err
		}
		plan.StartDate = domain.DateOnly(newStartDate)
		return storeErr(s.store.Plans.Update(ctx, plan), "training plan", plan.ID)
	})
	if err != nil {
		plan.StartDate = oldStart
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues("reset_start").Inc()
	s.log.Info("plan start date reset", "planId", plan.ID, "oldStart", oldStart, "newStart", plan.StartDate,
		"customizationsDeleted", counts.customizations, "sessionsDissociated", counts.sessions)
	return cascadeResult(plan, counts, "plan restarted"), nil
}

// Delete runs the full cascade even for inactive plans to catch orphaned rows, then drops
// the pattern, export metadata and the plan itself. Export documents are removed from
// object storage once the transaction has committed.
func (s *planService) Delete(ctx context.Context, ownerID, planID uuid.UUID) (*LifecycleResult, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}

	var counts cascadeCounts
	var exports []domain.PlanExport
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if counts, err = s.cleanupDayState(ctx, plan); err != nil {
			return err
		}
		if _, err := s.store.Slots.DeleteByPlan(ctx, plan.ID); err != nil {
			return storeErr(err, "day plan slot", plan.ID)
		}
		if exports, err = s.store.Exports.ListByPlan(ctx, plan.ID); err != nil {
			return storeErr(err, "plan export", plan.ID)
		}
		if _, err := s.store.Exports.DeleteByPlan(ctx, plan.ID); err != nil {
			return storeErr(err, "plan export", plan.ID)
		}
		return storeErr(s.store.Plans.Delete(ctx, plan.ID), "training plan", plan.ID)
	})
	if err != nil {
		return nil, err
	}
	s.removeExportObjects(ctx, exports)

	metrics.LifecycleTransitions.WithLabelValues("delete").Inc()
	s.log.Info("plan deleted", "planId", plan.ID,
		"customizationsDeleted", counts.customizations, "sessionsDissociated", counts.sessions)
	result := cascadeResult(nil, counts, "plan deleted")
	return result, nil
}

// removeExportObjects deletes stored export documents. Failures only leave orphaned objects
// behind, so they are logged and the deletion still succeeds.
func (s *planService) removeExportObjects(ctx context.Context, exports []domain.PlanExport) {
	if s.files == nil {
		return
	}
	for _, export := range exports {
		if err := s.files.DeleteObject(ctx, export.ObjectKey); err != nil {
			s.log.Error("failed to remove export object", "planId", export.PlanID, "key", export.ObjectKey, "error", err)
		}
	}
}

func cascadeResult(plan *domain.TrainingPlan, counts cascadeCounts, action string) *LifecycleResult {
	return &LifecycleResult{
		Plan:                  plan,
		Changed:               true,
		CustomizationsDeleted: counts.customizations,
		SessionsDissociated:   counts.sessions,
		Message: fmt.Sprintf("%s: %d customization(s) removed, %d workout session(s) dissociated",
			action, counts.customizations, counts.sessions),
	}
}

func newPlanDetails(plan *domain.TrainingPlan, slots []domain.DayPlanSlot) *PlanDetails {
	if slots == nil {
		slots = []domain.DayPlanSlot{}
	}
	return &PlanDetails{
		TrainingPlan:  *plan,
		State:         plan.State(),
		EndDate:       plan.EndDate(),
		TotalDuration: plan.TotalDurationDays(),
		Slots:         slots,
	}
}
