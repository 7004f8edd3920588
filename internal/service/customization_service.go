package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/metrics"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/schedule"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Views ---

// SetView is one set with its base targets and the effective values for the day.
type SetView struct {
	ID            uuid.UUID `json:"id"`
	Position      int       `json:"position"`
	TargetRepsMin *int      `json:"targetRepsMin,omitempty"`
	TargetRepsMax *int      `json:"targetRepsMax,omitempty"`
	TargetWeight  *float64  `json:"targetWeight,omitempty"`
	TargetRIR     *int      `json:"rir,omitempty"`
	TargetRPE     *int      `json:"rpe,omitempty"`
	TargetNotes   string    `json:"notes,omitempty"`
	schedule.EffectiveSet
}

type ExerciseView struct {
	ID                  uuid.UUID `json:"id"`
	ExerciseName        string    `json:"exerciseName"`
	Position            int       `json:"position"`
	Notes               string    `json:"notes,omitempty"`
	Sets                []SetView `json:"sets"`
	CustomizedSetsCount int       `json:"customizedSetsCount"`
}

// DayView is the fully merged picture of one absolute plan day.
type DayView struct {
	PlanID              uuid.UUID          `json:"planId"`
	AbsoluteDay         int                `json:"absoluteDay"`
	DayOfMicrocycle     int                `json:"dayOfMicrocycle"`
	MicrocycleNumber    int                `json:"microcycleNumber"`
	ActualDate          time.Time          `json:"actualDate"`
	Status              schedule.DayStatus `json:"status"`
	IsRestDay           bool               `json:"isRestDay"`
	RoutineID           *uuid.UUID         `json:"routineId,omitempty"`
	RoutineName         string             `json:"routineName,omitempty"`
	Exercises           []ExerciseView     `json:"exercises"`
	HasCustomizations   bool               `json:"hasCustomizations"`
	TotalCustomizations int                `json:"totalCustomizations"`
}

// DaySummary is one day of a microcycle overview.
type DaySummary struct {
	schedule.Resolution
	RoutineName        string `json:"routineName,omitempty"`
	CustomizationCount int64  `json:"customizationCount"`
}

type MicrocycleOverview struct {
	PlanID           uuid.UUID    `json:"planId"`
	MicrocycleNumber int          `json:"microcycleNumber"`
	Days             []DaySummary `json:"days"`
}

// PlanSchedule is every day of a plan resolved into day views.
type PlanSchedule struct {
	Plan *domain.TrainingPlan `json:"plan"`
	Days []DayView            `json:"days"`
}

// --- Batch write ---

// CustomizationEntry is one set override in a batch. Nil fields leave the stored value
// untouched; an entry with every field nil or blank resets the set to its base values.
type CustomizationEntry struct {
	ExerciseSetID *uuid.UUID `json:"exerciseSetId"`
	CustomRepsMin *int       `json:"customRepsMin,omitempty"`
	CustomRepsMax *int       `json:"customRepsMax,omitempty"`
	CustomWeight  *float64   `json:"customWeight,omitempty"`
	CustomRIR     *int       `json:"customRir,omitempty"`
	CustomRPE     *int       `json:"customRpe,omitempty"`
	CustomNotes   *string    `json:"customNotes,omitempty"`
}

func (e CustomizationEntry) isEmpty() bool {
	return e.CustomRepsMin == nil &&
		e.CustomRepsMax == nil &&
		e.CustomWeight == nil &&
		e.CustomRIR == nil &&
		e.CustomRPE == nil &&
		domain.IsBlank(e.CustomNotes)
}

func (e CustomizationEntry) targets() targetValues {
	return targetValues{repsMin: e.CustomRepsMin, repsMax: e.CustomRepsMax, weight: e.CustomWeight, rir: e.CustomRIR, rpe: e.CustomRPE}
}

type EntryFailure struct {
	Index         int       `json:"index"`
	ExerciseSetID uuid.UUID `json:"exerciseSetId"`
	Reason        string    `json:"reason"`
}

// BatchResult reports a partially applied batch. Failed entries were skipped; the rest
// were committed.
type BatchResult struct {
	Saved               int            `json:"saved"`
	Deleted             int            `json:"deleted"`
	Unchanged           int            `json:"unchanged"`
	Failed              int            `json:"failed"`
	Failures            []EntryFailure `json:"failures,omitempty"`
	TotalCustomizations int64          `json:"totalCustomizations"`
}

// CustomizationService reads merged day views and applies per-day set overrides.
type CustomizationService interface {
	GetDayView(ctx context.Context, ownerID, planID uuid.UUID, day int) (*DayView, error)
	GetTodayView(ctx context.Context, ownerID, planID uuid.UUID) (*DayView, error)
	GetMicrocycleOverview(ctx context.Context, ownerID, planID uuid.UUID, microcycle int) (*MicrocycleOverview, error)
	GetPlanSchedule(ctx context.Context, ownerID, planID uuid.UUID) (*PlanSchedule, error)
	ListCustomizedDays(ctx context.Context, ownerID, planID uuid.UUID) ([]int, error)

	ApplyCustomizations(ctx context.Context, ownerID, planID uuid.UUID, day int, entries []CustomizationEntry) (*BatchResult, error)
	ResetDay(ctx context.Context, ownerID, planID uuid.UUID, day int) (int64, error)
	ResetSet(ctx context.Context, ownerID, planID uuid.UUID, day int, setID uuid.UUID) (int64, error)
	ResetAll(ctx context.Context, ownerID, planID uuid.UUID) (int64, error)
}

// --- Service Implementation ---

type customizationService struct {
	store *repository.Store
	clock Clock
	log   *logger.Logger
}

// NewCustomizationService creates a new instance of customizationService.
func NewCustomizationService(store *repository.Store, clock Clock, baseLog *logger.Logger) CustomizationService {
	if clock == nil {
		clock = SystemClock()
	}
	return &customizationService{
		store: store,
		clock: clock,
		log:   baseLog.With("service", "CustomizationService"),
	}
}

// === Read path ===

func (s *customizationService) GetDayView(ctx context.Context, ownerID, planID uuid.UUID, day int) (*DayView, error) {
	loader, err := s.newDayLoader(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	return loader.dayView(ctx, day)
}

func (s *customizationService) GetTodayView(ctx context.Context, ownerID, planID uuid.UUID) (*DayView, error) {
	loader, err := s.newDayLoader(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	today := domain.DateOnly(s.clock.Now())
	day := schedule.DayForDate(loader.plan, today)
	if day < 1 {
		return nil, apperr.OutOfRange("plan %s starts on %s, after today (%s)",
			loader.plan.ID, loader.plan.StartDate.Format(time.DateOnly), today.Format(time.DateOnly))
	}
	return loader.dayView(ctx, day)
}

func (s *customizationService) GetMicrocycleOverview(ctx context.Context, ownerID, planID uuid.UUID, microcycle int) (*MicrocycleOverview, error) {
	loader, err := s.newDayLoader(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	plan := loader.plan
	if microcycle < 1 {
		return nil, apperr.Validation("invalid microcycle number", "microcycle must be greater than 0")
	}
	if microcycle > plan.TotalMicrocycles {
		return nil, apperr.OutOfRange("microcycle %d is outside plan %s (%d microcycles)", microcycle, plan.ID, plan.TotalMicrocycles)
	}

	overview := &MicrocycleOverview{PlanID: plan.ID, MicrocycleNumber: microcycle}
	first := (microcycle-1)*plan.MicrocycleLengthDays + 1
	for d := first; d < first+plan.MicrocycleLengthDays; d++ {
		res, err := schedule.Resolve(plan, loader.slots, d)
		if err != nil {
			return nil, err
		}
		summary := DaySummary{Resolution: res}
		if res.RoutineID != nil {
			routine, _, err := loader.routine(ctx, *res.RoutineID)
			if err != nil {
				return nil, err
			}
			summary.RoutineName = routine.Name
		}
		if summary.CustomizationCount, err = s.store.Customizations.CountByDay(ctx, plan.ID, d); err != nil {
			return nil, storeErr(err, "day customization", plan.ID)
		}
		overview.Days = append(overview.Days, summary)
	}
	return overview, nil
}

// GetPlanSchedule resolves every day of the plan; routine structures are loaded once per routine.
func (s *customizationService) GetPlanSchedule(ctx context.Context, ownerID, planID uuid.UUID) (*PlanSchedule, error) {
	loader, err := s.newDayLoader(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	total := loader.plan.TotalDurationDays()
	out := &PlanSchedule{Plan: loader.plan, Days: make([]DayView, 0, total)}
	for d := 1; d <= total; d++ {
		view, err := loader.dayView(ctx, d)
		if err != nil {
			return nil, err
		}
		out.Days = append(out.Days, *view)
	}
	return out, nil
}

func (s *customizationService) ListCustomizedDays(ctx context.Context, ownerID, planID uuid.UUID) ([]int, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	days, err := s.store.Customizations.ListCustomizedDays(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "day customization", plan.ID)
	}
	return days, nil
}

// === Write path ===

// ApplyCustomizations merges the batch entry by entry. Only the sets present in the batch
// are touched; other overrides of the day stay as they are.
func (s *customizationService) ApplyCustomizations(ctx context.Context, ownerID, planID uuid.UUID, day int, entries []CustomizationEntry) (*BatchResult, error) {
	var violations []string
	for i, e := range entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.ExerciseSetID == nil || *e.ExerciseSetID == uuid.Nil {
			violations = append(violations, field+": exerciseSetId is required")
		}
		violations = append(violations, e.targets().violations(field)...)
	}
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid customization request", violations...)
	}

	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if err := schedule.ValidateDay(plan, day); err != nil {
		return nil, err
	}
	result := &BatchResult{}
	if len(entries) == 0 {
		if result.TotalCustomizations, err = s.store.Customizations.CountByDay(ctx, plan.ID, day); err != nil {
			return nil, storeErr(err, "day customization", plan.ID)
		}
		return result, nil
	}
	if err := requireWritable(plan); err != nil {
		return nil, err
	}

	rs, err := s.customizableDay(ctx, plan, day)
	if err != nil {
		return nil, err
	}
	owners := rs.setOwners()

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		*result = BatchResult{}
		for i, e := range entries {
			setID := *e.ExerciseSetID
			exerciseID, ok := owners[setID]
			if !ok {
				reason := s.missingSetReason(ctx, setID)
				result.fail(i, setID, reason)
				s.log.Warn("skipping customization entry", "planId", plan.ID, "day", day, "setId", setID, "reason", reason)
				continue
			}
			outcome, reason, err := s.applyEntry(ctx, plan.ID, day, exerciseID, e)
			if err != nil {
				return err
			}
			switch outcome {
			case metrics.OutcomeSaved:
				result.Saved++
			case metrics.OutcomeDeleted:
				result.Deleted++
			case metrics.OutcomeUnchanged:
				result.Unchanged++
			case metrics.OutcomeFailed:
				result.fail(i, setID, reason)
				s.log.Warn("skipping customization entry", "planId", plan.ID, "day", day, "setId", setID, "reason", reason)
			}
		}
		var err error
		result.TotalCustomizations, err = s.store.Customizations.CountByDay(ctx, plan.ID, day)
		return storeErr(err, "day customization", plan.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeSaved).Add(float64(result.Saved))
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeDeleted).Add(float64(result.Deleted))
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeUnchanged).Add(float64(result.Unchanged))
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeFailed).Add(float64(result.Failed))
	s.log.Info("customizations applied", "planId", plan.ID, "day", day,
		"saved", result.Saved, "deleted", result.Deleted, "unchanged", result.Unchanged, "failed", result.Failed)
	return result, nil
}

// applyEntry runs the read-merge-write of one set and reports its outcome. A non-nil error
// aborts the batch; a failed outcome only skips the entry.
func (s *customizationService) applyEntry(ctx context.Context, planID uuid.UUID, day int, exerciseID uuid.UUID, e CustomizationEntry) (string, string, error) {
	setID := *e.ExerciseSetID
	existing, err := s.store.Customizations.Find(ctx, planID, day, setID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", "", storeErr(err, "day customization", setID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		existing = nil
	}

	if e.isEmpty() {
		return s.deleteIfExists(ctx, existing)
	}

	row := &domain.DayCustomization{PlanID: planID, DayNumber: day, ExerciseSetID: setID}
	if existing != nil {
		merged := *existing
		row = &merged
	}
	row.RoutineExerciseID = exerciseID
	mergeEntry(row, e)

	if !row.HasCustomizations() {
		return s.deleteIfExists(ctx, existing)
	}
	merged := targetValues{repsMin: row.CustomRepsMin, repsMax: row.CustomRepsMax, weight: row.CustomWeight, rir: row.CustomRIR, rpe: row.CustomRPE}
	if v := merged.violations("merged"); len(v) > 0 {
		return metrics.OutcomeFailed, strings.Join(v, "; "), nil
	}
	if existing != nil && sameOverride(existing, row) {
		return metrics.OutcomeUnchanged, "", nil
	}
	if err := s.store.Customizations.Upsert(ctx, row); err != nil {
		return "", "", storeErr(err, "day customization", setID)
	}
	return metrics.OutcomeSaved, "", nil
}

func (s *customizationService) deleteIfExists(ctx context.Context, existing *domain.DayCustomization) (string, string, error) {
	if existing == nil {
		return metrics.OutcomeUnchanged, "", nil
	}
	if _, err := s.store.Customizations.Delete(ctx, existing.PlanID, existing.DayNumber, existing.ExerciseSetID); err != nil {
		return "", "", storeErr(err, "day customization", existing.ExerciseSetID)
	}
	return metrics.OutcomeDeleted, "", nil
}

func (s *customizationService) missingSetReason(ctx context.Context, setID uuid.UUID) string {
	if _, err := s.store.Routines.GetSetByID(ctx, setID); err != nil {
		return fmt.Sprintf("exercise set %s not found", setID)
	}
	return fmt.Sprintf("exercise set %s is not part of the day's routine", setID)
}

func (r *BatchResult) fail(index int, setID uuid.UUID, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, EntryFailure{Index: index, ExerciseSetID: setID, Reason: reason})
}

// mergeEntry applies the fields present in e. Setting one intensity discipline clears the
// other; a blank note clears the stored note.
func mergeEntry(row *domain.DayCustomization, e CustomizationEntry) {
	if e.CustomRepsMin != nil {
		row.CustomRepsMin = e.CustomRepsMin
	}
	if e.CustomRepsMax != nil {
		row.CustomRepsMax = e.CustomRepsMax
	}
	if e.CustomWeight != nil {
		row.CustomWeight = e.CustomWeight
	}
	switch {
	case e.CustomRPE != nil:
		row.SetIntensity(domain.RPE(*e.CustomRPE))
	case e.CustomRIR != nil:
		row.SetIntensity(domain.RIR(*e.CustomRIR))
	}
	if e.CustomNotes != nil {
		if domain.IsBlank(e.CustomNotes) {
			row.CustomNotes = nil
		} else {
			notes := strings.TrimSpace(*e.CustomNotes)
			row.CustomNotes = &notes
		}
	}
}

func sameOverride(a, b *domain.DayCustomization) bool {
	return eqPtr(a.CustomRepsMin, b.CustomRepsMin) &&
		eqPtr(a.CustomRepsMax, b.CustomRepsMax) &&
		eqPtr(a.CustomWeight, b.CustomWeight) &&
		eqPtr(a.CustomRIR, b.CustomRIR) &&
		eqPtr(a.CustomRPE, b.CustomRPE) &&
		eqPtr(a.CustomNotes, b.CustomNotes) &&
		a.RoutineExerciseID == b.RoutineExerciseID
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// customizableDay checks the day is in range and resolves to a routine, returning that
// routine's structure.
func (s *customizationService) customizableDay(ctx context.Context, plan *domain.TrainingPlan, day int) (*routineStructure, error) {
	slots, err := s.store.Slots.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", plan.ID)
	}
	res, err := schedule.Resolve(plan, slots, day)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case schedule.DayStatusRest:
		return nil, apperr.CannotCustomize("day %d of plan %s is a rest day", day, plan.ID)
	case schedule.DayStatusUnassigned:
		return nil, apperr.CannotCustomize("day %d of plan %s has no routine assigned", day, plan.ID)
	}
	return loadRoutineStructure(ctx, s.store.Routines, *res.RoutineID)
}

// === Resets ===

func (s *customizationService) ResetDay(ctx context.Context, ownerID, planID uuid.UUID, day int) (int64, error) {
	plan, err := s.writablePlan(ctx, ownerID, planID)
	if err != nil {
		return 0, err
	}
	if err := schedule.ValidateDay(plan, day); err != nil {
		return 0, err
	}
	n, err := s.store.Customizations.DeleteByDay(ctx, plan.ID, day)
	if err != nil {
		return 0, storeErr(err, "day customization", plan.ID)
	}
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeDeleted).Add(float64(n))
	s.log.Info("day customizations reset", "planId", plan.ID, "day", day, "deleted", n)
	return n, nil
}

func (s *customizationService) ResetSet(ctx context.Context, ownerID, planID uuid.UUID, day int, setID uuid.UUID) (int64, error) {
	plan, err := s.writablePlan(ctx, ownerID, planID)
	if err != nil {
		return 0, err
	}
	if err := schedule.ValidateDay(plan, day); err != nil {
		return 0, err
	}
	if _, err := s.store.Routines.GetSetByID(ctx, setID); err != nil {
		return 0, storeErr(err, "exercise set", setID)
	}
	n, err := s.store.Customizations.Delete(ctx, plan.ID, day, setID)
	if err != nil {
		return 0, storeErr(err, "day customization", setID)
	}
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeDeleted).Add(float64(n))
	return n, nil
}

func (s *customizationService) ResetAll(ctx context.Context, ownerID, planID uuid.UUID) (int64, error) {
	plan, err := s.writablePlan(ctx, ownerID, planID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.Customizations.DeleteByPlan(ctx, plan.ID)
	if err != nil {
		return 0, storeErr(err, "day customization", plan.ID)
	}
	metrics.CustomizationEntries.WithLabelValues(metrics.OutcomeDeleted).Add(float64(n))
	s.log.Info("plan customizations reset", "planId", plan.ID, "deleted", n)
	return n, nil
}

func (s *customizationService) writablePlan(ctx context.Context, ownerID, planID uuid.UUID) (*domain.TrainingPlan, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if err := requireWritable(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// --- Day loading ---

// dayLoader builds day views of one plan, caching routines across days.
type dayLoader struct {
	store      *repository.Store
	plan       *domain.TrainingPlan
	slots      []domain.DayPlanSlot
	routines   map[uuid.UUID]*domain.Routine
	structures map[uuid.UUID]*routineStructure
}

func (s *customizationService) newDayLoader(ctx context.Context, ownerID, planID uuid.UUID) (*dayLoader, error) {
	plan, err := loadOwnedPlan(ctx, s.store.Plans, ownerID, planID)
	if err != nil {
		return nil, err
	}
	slots, err := s.store.Slots.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "day plan slot", plan.ID)
	}
	return &dayLoader{
		store:      s.store,
		plan:       plan,
		slots:      slots,
		routines:   make(map[uuid.UUID]*domain.Routine),
		structures: make(map[uuid.UUID]*routineStructure),
	}, nil
}

func (l *dayLoader) routine(ctx context.Context, id uuid.UUID) (*domain.Routine, *routineStructure, error) {
	if r, ok := l.routines[id]; ok {
		return r, l.structures[id], nil
	}
	r, err := l.store.Routines.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, "routine", id)
	}
	rs, err := loadRoutineStructure(ctx, l.store.Routines, id)
	if err != nil {
		return nil, nil, err
	}
	l.routines[id], l.structures[id] = r, rs
	return r, rs, nil
}

func (l *dayLoader) dayView(ctx context.Context, day int) (*DayView, error) {
	res, err := schedule.Resolve(l.plan, l.slots, day)
	if err != nil {
		return nil, err
	}
	view := &DayView{
		PlanID:           l.plan.ID,
		AbsoluteDay:      res.AbsoluteDay,
		DayOfMicrocycle:  res.DayOfMicrocycle,
		MicrocycleNumber: res.MicrocycleNumber,
		ActualDate:       res.ActualDate,
		Status:           res.Status,
		IsRestDay:        res.IsRestDay,
		RoutineID:        res.RoutineID,
		Exercises:        []ExerciseView{},
	}
	if res.Status != schedule.DayStatusRoutine {
		return view, nil
	}

	routine, rs, err := l.routine(ctx, *res.RoutineID)
	if err != nil {
		return nil, err
	}
	view.RoutineName = routine.Name

	rows, err := l.store.Customizations.FindByDay(ctx, l.plan.ID, day)
	if err != nil {
		return nil, storeErr(err, "day customization", l.plan.ID)
	}
	bySet := make(map[uuid.UUID]*domain.DayCustomization, len(rows))
	for i := range rows {
		bySet[rows[i].ExerciseSetID] = &rows[i]
	}

	for _, ex := range rs.exercises {
		ev := ExerciseView{
			ID:           ex.ID,
			ExerciseName: ex.ExerciseName,
			Position:     ex.Position,
			Notes:        ex.Notes,
			Sets:         make([]SetView, 0, len(rs.sets[ex.ID])),
		}
		for _, set := range rs.sets[ex.ID] {
			sv := SetView{
				ID:            set.ID,
				Position:      set.Position,
				TargetRepsMin: set.TargetRepsMin,
				TargetRepsMax: set.TargetRepsMax,
				TargetWeight:  set.TargetWeight,
				TargetRIR:     set.TargetRIR,
				TargetRPE:     set.TargetRPE,
				TargetNotes:   set.Notes,
				EffectiveSet:  schedule.Effective(set, bySet[set.ID]),
			}
			if sv.IsCustomized {
				ev.CustomizedSetsCount++
			}
			ev.Sets = append(ev.Sets, sv)
		}
		view.TotalCustomizations += ev.CustomizedSetsCount
		view.Exercises = append(view.Exercises, ev)
	}
	view.HasCustomizations = view.TotalCustomizations > 0
	return view, nil
}
