// internal/domain/workout_session.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is a history record. When it fulfilled a plan day it carries PlanID and
// PlanDay; PlanName/PlanDay/RoutineName stay behind as a snapshot after the plan link is
// cleared.
type WorkoutSession struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_session_user_plan" json:"userId"`
	PlanID      *uuid.UUID `gorm:"type:uuid;index:idx_session_user_plan" json:"planId,omitempty"`
	PlanName    string     `gorm:"size:255" json:"planName,omitempty"`
	PlanDay     *int       `json:"planDay,omitempty"`
	RoutineID   *uuid.UUID `gorm:"type:uuid" json:"routineId,omitempty"`
	RoutineName string     `gorm:"size:255" json:"routineName,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	PerformedAt time.Time  `gorm:"not null" json:"performedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (WorkoutSession) TableName() string {
	return "workout_sessions"
}
