package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteDay(t *testing.T) {
	f := newFixture(t)

	session, err := f.history.CompleteDay(f.ctx, f.owner, f.plan.ID, 8, "  top set moved fast ")
	require.NoError(t, err)
	assert.Equal(t, f.plan.ID, *session.PlanID)
	assert.Equal(t, 8, *session.PlanDay)
	assert.Equal(t, "Spring Block", session.PlanName)
	assert.Equal(t, "Push", session.RoutineName)
	assert.Equal(t, "top set moved fast", session.Notes)
	assert.Equal(t, f.now, session.PerformedAt)

	_, err = f.history.CompleteDay(f.ctx, f.owner, f.plan.ID, 8, "")
	requireKind(t, err, apperr.KindConflict)

	history, err := f.history.ListHistory(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCompleteDayRejects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		day  int
		want apperr.Kind
	}{
		{"rest day", 3, apperr.KindValidation},
		{"unassigned day", 2, apperr.KindValidation},
		{"before day one", 0, apperr.KindValidation},
		{"past the end", 29, apperr.KindOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.history.CompleteDay(f.ctx, f.owner, f.plan.ID, tt.day, "")
			requireKind(t, err, tt.want)
		})
	}
}
