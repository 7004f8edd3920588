// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/repository/sqldb"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// PlanStart is the start date used by SeedPlan (a Monday).
var PlanStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// NewDB opens a migrated in-memory SQLite database closed with the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqldb.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, sqldb.AutoMigrate(db))
	t.Cleanup(func() { _ = sqldb.Close(db) })
	return db
}

// NewStore returns a GORM store on a fresh in-memory database.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	return sqldb.NewStore(NewDB(t))
}

func SeedUser(t *testing.T, store *repository.Store) uuid.UUID {
	t.Helper()
	id, err := store.Users.Create(context.Background(), &domain.User{
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)
	return id
}

// SeededRoutine is a routine with its exercises and sets in position order.
type SeededRoutine struct {
	Routine   domain.Routine
	Exercises []domain.RoutineExercise
	Sets      map[uuid.UUID][]domain.ExerciseSet // by exercise id
}

// FirstSet returns the first set of the first exercise.
func (r SeededRoutine) FirstSet() domain.ExerciseSet {
	return r.Sets[r.Exercises[0].ID][0]
}

// SeedRoutine stores a routine with two exercises of two sets each. Every set targets
// 8-12 reps at 60kg, RIR 2.
func SeedRoutine(t *testing.T, store *repository.Store, ownerID uuid.UUID, name string) SeededRoutine {
	t.Helper()
	ctx := context.Background()
	routine := domain.Routine{OwnerID: ownerID, Name: name}
	_, err := store.Routines.Create(ctx, &routine)
	require.NoError(t, err)

	seeded := SeededRoutine{Routine: routine, Sets: map[uuid.UUID][]domain.ExerciseSet{}}
	for i, exName := range []string{"Back Squat", "Bench Press"} {
		ex := domain.RoutineExercise{RoutineID: routine.ID, ExerciseName: exName, Position: i + 1}
		_, err := store.Routines.AddExercise(ctx, &ex)
		require.NoError(t, err)
		seeded.Exercises = append(seeded.Exercises, ex)
		for j := 0; j < 2; j++ {
			set := domain.ExerciseSet{
				RoutineExerciseID: ex.ID,
				Position:          j + 1,
				TargetRepsMin:     IntPtr(8),
				TargetRepsMax:     IntPtr(12),
				TargetWeight:      FloatPtr(60),
				TargetRIR:         IntPtr(2),
				Notes:             "controlled eccentric",
			}
			_, err := store.Routines.AddSet(ctx, &set)
			require.NoError(t, err)
			seeded.Sets[ex.ID] = append(seeded.Sets[ex.ID], set)
		}
	}
	return seeded
}

// SeedPlan stores a weekly plan of the given length: day 1 runs routineID, day 3 is a
// rest day, every other day is unassigned.
func SeedPlan(t *testing.T, store *repository.Store, ownerID, routineID uuid.UUID, name string, weeks int) domain.TrainingPlan {
	t.Helper()
	ctx := context.Background()
	plan := domain.TrainingPlan{
		OwnerID:              ownerID,
		Name:                 name,
		StartDate:            PlanStart,
		MicrocycleLengthDays: 7,
		TotalMicrocycles:     weeks,
	}
	_, err := store.Plans.Create(ctx, &plan)
	require.NoError(t, err)
	require.NoError(t, store.Slots.Upsert(ctx, &domain.DayPlanSlot{PlanID: plan.ID, DayNumber: 1, RoutineID: &routineID}))
	require.NoError(t, store.Slots.Upsert(ctx, &domain.DayPlanSlot{PlanID: plan.ID, DayNumber: 3, IsRestDay: true}))
	return plan
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

func StringPtr(v string) *string { return &v }

func UUIDPtr(v uuid.UUID) *uuid.UUID { return &v }
