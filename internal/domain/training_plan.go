// internal/domain/training_plan.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for the repeating pattern of a macrocycle.
const (
	MinMicrocycleLengthDays = 1
	MaxMicrocycleLengthDays = 14
	MinTotalMicrocycles     = 1
	MaxTotalMicrocycles     = 52
)

// TrainingPlan is a long-term periodized plan ("macrocycle") built from a repeating
// microcycle pattern. Day 1 of the plan is StartDate.
type TrainingPlan struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID              uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_owner" json:"ownerId"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description,omitempty"`
	StartDate            time.Time `gorm:"not null" json:"startDate"`
	MicrocycleLengthDays int       `gorm:"not null" json:"microcycleLengthDays"` // 1..14
	TotalMicrocycles     int       `gorm:"not null" json:"totalMicrocycles"`     // 1..52
	IsArchived           bool      `gorm:"not null;default:false" json:"isArchived"`
	IsCurrentlyActive    bool      `gorm:"not null;default:false;index:idx_plan_owner" json:"isCurrentlyActive"` // at most one per owner
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (TrainingPlan) TableName() string {
	return "training_plans"
}

// TotalDurationDays returns length x count, or 0 when the pattern is not fully configured.
func (p *TrainingPlan) TotalDurationDays() int {
	if p.MicrocycleLengthDays <= 0 || p.TotalMicrocycles <= 0 {
		return 0
	}
	return p.MicrocycleLengthDays * p.TotalMicrocycles
}

// EndDate is the calendar date of the last plan day (start + duration - 1 day).
func (p *TrainingPlan) EndDate() time.Time {
	total := p.TotalDurationDays()
	if total == 0 {
		return p.StartDate
	}
	return p.StartDate.AddDate(0, 0, total-1)
}

// State reports where the plan sits in the lifecycle state machine.
func (p *TrainingPlan) State() PlanState {
	switch {
	case p.IsArchived:
		return PlanStateArchived
	case p.IsCurrentlyActive:
		return PlanStateCurrentlyActive
	default:
		return PlanStateDraft
	}
}

// PlanState is the derived lifecycle state of a plan.
type PlanState string

const (
	PlanStateDraft           PlanState = "draft"
	PlanStateCurrentlyActive PlanState = "currently_active"
	PlanStateArchived        PlanState = "archived"
)

// DayPlanSlot is one position in the repeating microcycle pattern. A slot is either a rest
// day, references a routine, or is unassigned (no routine, not rest).
type DayPlanSlot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_slot_plan_day" json:"planId"`
	DayNumber int        `gorm:"not null;uniqueIndex:idx_slot_plan_day" json:"dayNumber"` // 1..MicrocycleLengthDays
	IsRestDay bool       `gorm:"not null;default:false" json:"isRestDay"`
	RoutineID *uuid.UUID `gorm:"type:uuid;index" json:"routineId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (DayPlanSlot) TableName() string {
	return "day_plan_slots"
}

// DateOnly truncates t to midnight UTC; plan dates never carry a time of day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
