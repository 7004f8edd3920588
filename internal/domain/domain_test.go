package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestIntensityFields(t *testing.T) {
	tests := []struct {
		in      Intensity
		wantRIR *int
		wantRPE *int
		str     string
	}{
		{RIR(2), intp(2), nil, "RIR 2"},
		{RPE(8), nil, intp(8), "RPE 8"},
		{RIR(0), intp(0), nil, "RIR 0"},
		{NoIntensity(), nil, nil, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			rir, rpe := tt.in.Fields()
			assert.Equal(t, tt.wantRIR, rir)
			assert.Equal(t, tt.wantRPE, rpe)
			assert.Equal(t, tt.str, tt.in.String())
		})
	}
}

func TestSetIntensityClearsTheOtherScale(t *testing.T) {
	c := &DayCustomization{CustomRIR: intp(2)}

	c.SetIntensity(RPE(8))
	assert.Nil(t, c.CustomRIR)
	assert.Equal(t, 8, *c.CustomRPE)
	assert.Equal(t, RPE(8), c.Intensity())

	c.SetIntensity(NoIntensity())
	assert.True(t, c.Intensity().IsNone())
	assert.False(t, c.HasCustomizations())
}

func TestHasCustomizationsIgnoresBlankNotes(t *testing.T) {
	blank := "   "
	note := "pause"
	assert.False(t, (&DayCustomization{CustomNotes: &blank}).HasCustomizations())
	assert.True(t, (&DayCustomization{CustomNotes: &note}).HasCustomizations())
	assert.True(t, (&DayCustomization{CustomRIR: intp(0)}).HasCustomizations())
}

func TestPlanDerivedValues(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := &TrainingPlan{StartDate: start, MicrocycleLengthDays: 7, TotalMicrocycles: 4}

	assert.Equal(t, 28, plan.TotalDurationDays())
	assert.Equal(t, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), plan.EndDate())
	assert.Equal(t, PlanStateDraft, plan.State())

	plan.IsCurrentlyActive = true
	assert.Equal(t, PlanStateCurrentlyActive, plan.State())
	plan.IsArchived = true
	assert.Equal(t, PlanStateArchived, plan.State())

	unconfigured := &TrainingPlan{StartDate: start}
	assert.Zero(t, unconfigured.TotalDurationDays())
	assert.Equal(t, start, unconfigured.EndDate())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 2, 23, 59, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
