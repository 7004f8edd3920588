// internal/domain/customization.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayCustomization is a sparse override of one set on one absolute plan day. Only the
// fields the user changed are non-nil; a row with no override at all is never stored.
type DayCustomization struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_custom_plan_day_set;index:idx_custom_plan_day" json:"planId"`
	DayNumber         int       `gorm:"not null;uniqueIndex:idx_custom_plan_day_set;index:idx_custom_plan_day" json:"dayNumber"`
	ExerciseSetID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_custom_plan_day_set" json:"exerciseSetId"`
	RoutineExerciseID uuid.UUID `gorm:"type:uuid;not null;index" json:"routineExerciseId"` // denormalized parent
	CustomRepsMin     *int      `json:"customRepsMin,omitempty"`
	CustomRepsMax     *int      `json:"customRepsMax,omitempty"`
	CustomWeight      *float64  `json:"customWeight,omitempty"`
	CustomRIR         *int      `gorm:"column:custom_rir" json:"customRir,omitempty"`
	CustomRPE         *int      `gorm:"column:custom_rpe" json:"customRpe,omitempty"`
	CustomNotes       *string   `gorm:"type:text" json:"customNotes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (DayCustomization) TableName() string {
	return "day_customizations"
}

// Intensity reads the stored RPE/RIR pair. RPE wins if a legacy row carries both.
func (c *DayCustomization) Intensity() Intensity {
	switch {
	case c.CustomRPE != nil:
		return RPE(*c.CustomRPE)
	case c.CustomRIR != nil:
		return RIR(*c.CustomRIR)
	default:
		return NoIntensity()
	}
}

// SetIntensity writes the pair so that setting one discipline always clears the other.
func (c *DayCustomization) SetIntensity(i Intensity) {
	c.CustomRIR, c.CustomRPE = i.Fields()
}

// HasCustomizations is true when at least one override field carries a value.
func (c *DayCustomization) HasCustomizations() bool {
	return c.CustomRepsMin != nil ||
		c.CustomRepsMax != nil ||
		c.CustomWeight != nil ||
		c.CustomRIR != nil ||
		c.CustomRPE != nil ||
		!IsBlank(c.CustomNotes)
}

// IsBlank reports whether s is nil or only whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
