// internal/domain/routine.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routine is a named, ordered list of exercises owned by its creator. It is the base
// truth a plan day resolves to.
type Routine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"ownerId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Routine) TableName() string {
	return "routines"
}

// RoutineExercise is one exercise inside a routine; Position orders it.
type RoutineExercise struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoutineID    uuid.UUID `gorm:"type:uuid;not null;index" json:"routineId"`
	ExerciseName string    `gorm:"size:255;not null" json:"exerciseName"`
	Position     int       `gorm:"not null" json:"position"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (RoutineExercise) TableName() string {
	return "routine_exercises"
}

// ExerciseSet holds the target values of one set. Sets are deleted with their exercise.
type ExerciseSet struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoutineExerciseID uuid.UUID `gorm:"type:uuid;not null;index" json:"routineExerciseId"`
	Position          int       `gorm:"not null" json:"position"`
	TargetRepsMin     *int      `json:"targetRepsMin,omitempty"`
	TargetRepsMax     *int      `json:"targetRepsMax,omitempty"`
	TargetWeight      *float64  `json:"targetWeight,omitempty"`
	TargetRIR         *int      `gorm:"column:target_rir" json:"rir,omitempty"`
	TargetRPE         *int      `gorm:"column:target_rpe" json:"rpe,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (ExerciseSet) TableName() string {
	return "exercise_sets"
}
