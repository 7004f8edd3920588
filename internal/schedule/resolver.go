// Package schedule resolves absolute plan days against the repeating microcycle pattern
// and merges per-day overrides onto base set targets. Everything here is pure.
package schedule

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"time"

	"github.com/google/uuid"
)

// DayStatus is what a resolved day holds.
type DayStatus string

const (
	DayStatusRest       DayStatus = "rest"
	DayStatusRoutine    DayStatus = "routine"
	DayStatusUnassigned DayStatus = "unassigned"
)

// Resolution is the planned activity for one absolute day. It is a snapshot of the
// plan configuration at call time and goes stale when slots change.
type Resolution struct {
	AbsoluteDay      int        `json:"absoluteDay"`
	DayOfMicrocycle  int        `json:"dayOfMicrocycle"`
	MicrocycleNumber int        `json:"microcycleNumber"`
	ActualDate       time.Time  `json:"actualDate"`
	Status           DayStatus  `json:"status"`
	IsRestDay        bool       `json:"isRestDay"`
	RoutineID        *uuid.UUID `json:"routineId,omitempty"`
}

// ValidateDay checks the day number against the plan: day <= 0 is a validation error,
// day past the total duration (when known) is out of range.
func ValidateDay(plan *domain.TrainingPlan, absoluteDay int) error {
	if absoluteDay <= 0 {
		return apperr.Validation("invalid day number", "day must be greater than 0")
	}
	if total := plan.TotalDurationDays(); total > 0 && absoluteDay > total {
		return apperr.OutOfRange("day %d is outside plan %s (total duration %d days)", absoluteDay, plan.ID, total)
	}
	return nil
}

// DayOfMicrocycle reduces an absolute day onto the repeating pattern: ((d-1) mod L) + 1.
func DayOfMicrocycle(absoluteDay, microcycleLength int) int {
	if microcycleLength <= 0 {
		return absoluteDay
	}
	return ((absoluteDay - 1) % microcycleLength) + 1
}

// MicrocycleNumber is the 1-based index of the microcycle containing the day.
func MicrocycleNumber(absoluteDay, microcycleLength int) int {
	if microcycleLength <= 0 {
		return 1
	}
	return ((absoluteDay - 1) / microcycleLength) + 1
}

// ActualDate is start + (d-1) days.
func ActualDate(startDate time.Time, absoluteDay int) time.Time {
	return domain.DateOnly(startDate).AddDate(0, 0, absoluteDay-1)
}

// DayForDate maps a calendar date onto an absolute day number. The result may be <= 0
// (before the start) or past the end; callers validate it with ValidateDay.
func DayForDate(plan *domain.TrainingPlan, date time.Time) int {
	start := domain.DateOnly(plan.StartDate)
	d := domain.DateOnly(date)
	return int(d.Sub(start).Hours()/24) + 1
}

// Resolve maps (plan, absolute day) to the slot that applies. A missing slot yields an
// unassigned day rather than an error; plans may have gaps in their pattern.
func Resolve(plan *domain.TrainingPlan, slots []domain.DayPlanSlot, absoluteDay int) (Resolution, error) {
	if err := ValidateDay(plan, absoluteDay); err != nil {
		return Resolution{}, err
	}

	res := Resolution{
		AbsoluteDay:      absoluteDay,
		DayOfMicrocycle:  DayOfMicrocycle(absoluteDay, plan.MicrocycleLengthDays),
		MicrocycleNumber: MicrocycleNumber(absoluteDay, plan.MicrocycleLengthDays),
		ActualDate:       ActualDate(plan.StartDate, absoluteDay),
		Status:           DayStatusUnassigned,
	}

	slot := findSlot(slots, res.DayOfMicrocycle)
	switch {
	case slot == nil:
	case slot.IsRestDay:
		res.Status = DayStatusRest
		res.IsRestDay = true
	case slot.RoutineID != nil:
		id := *slot.RoutineID
		res.Status = DayStatusRoutine
		res.RoutineID = &id
	}
	return res, nil
}

func findSlot(slots []domain.DayPlanSlot, dayNumber int) *domain.DayPlanSlot {
	for i := range slots {
		if slots[i].DayNumber == dayNumber {
			return &slots[i]
		}
	}
	return nil
}
