package schedule

import (
	"alcyxob/fitness-planner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func strp(v string) *string { return &v }

func baseSet() domain.ExerciseSet {
	return domain.ExerciseSet{
		TargetRepsMin: intp(8),
		TargetRepsMax: intp(12),
		TargetWeight:  floatp(60.0),
		TargetRIR:     intp(2),
		Notes:         "controlled eccentric",
	}
}

func TestEffectiveWithoutOverrideReproducesBase(t *testing.T) {
	got := Effective(baseSet(), nil)

	assert.Equal(t, 8, *got.RepsMin)
	assert.Equal(t, 12, *got.RepsMax)
	assert.Equal(t, 60.0, *got.Weight)
	assert.Equal(t, 2, *got.RIR)
	assert.Nil(t, got.RPE)
	assert.Equal(t, "controlled eccentric", got.Notes)
	assert.False(t, got.IsCustomized)
}

// TestEffectiveWeightAndRPEOverride is the weight 70 / RPE 8 scenario on an RIR-based set.
func TestEffectiveWeightAndRPEOverride(t *testing.T) {
	custom := &domain.DayCustomization{CustomWeight: floatp(70.0), CustomRPE: intp(8)}

	got := Effective(baseSet(), custom)

	assert.Equal(t, 8, *got.RepsMin)
	assert.Equal(t, 12, *got.RepsMax)
	assert.Equal(t, 70.0, *got.Weight)
	assert.Equal(t, 8, *got.RPE)
	assert.Nil(t, got.RIR)
	assert.True(t, got.IsCustomized)
}

func TestEffectiveIntensityPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		base    domain.ExerciseSet
		custom  *domain.DayCustomization
		wantRIR *int
		wantRPE *int
	}{
		{"override rpe beats base rir", domain.ExerciseSet{TargetRIR: intp(2)}, &domain.DayCustomization{CustomRPE: intp(9)}, nil, intp(9)},
		{"override rir beats base rpe", domain.ExerciseSet{TargetRPE: intp(7)}, &domain.DayCustomization{CustomRIR: intp(1)}, intp(1), nil},
		{"override rpe wins over override rir", domain.ExerciseSet{}, &domain.DayCustomization{CustomRIR: intp(1), CustomRPE: intp(6)}, nil, intp(6)},
		{"base rpe beats base rir", domain.ExerciseSet{TargetRIR: intp(3), TargetRPE: intp(8)}, nil, nil, intp(8)},
		{"base rpe zero falls back to rir", domain.ExerciseSet{TargetRIR: intp(0), TargetRPE: intp(0)}, nil, intp(0), nil},
		{"negative base rir is ignored", domain.ExerciseSet{TargetRIR: intp(-1)}, nil, nil, nil},
		{"nothing set", domain.ExerciseSet{}, nil, nil, nil},
		{"override without intensity keeps base", domain.ExerciseSet{TargetRPE: intp(7)}, &domain.DayCustomization{CustomWeight: floatp(50)}, nil, intp(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.base, tt.custom)
			assert.Equal(t, tt.wantRIR, got.RIR)
			assert.Equal(t, tt.wantRPE, got.RPE)
			assert.False(t, got.RIR != nil && got.RPE != nil, "rir and rpe both set")
		})
	}
}

func TestEffectiveNotes(t *testing.T) {
	t.Run("blank override note keeps base and is not a customization", func(t *testing.T) {
		got := Effective(baseSet(), &domain.DayCustomization{CustomNotes: strp("   ")})
		assert.Equal(t, "controlled eccentric", got.Notes)
		assert.False(t, got.IsCustomized)
	})

	t.Run("override note is trimmed", func(t *testing.T) {
		got := Effective(baseSet(), &domain.DayCustomization{CustomNotes: strp("  pause at bottom ")})
		assert.Equal(t, "pause at bottom", got.Notes)
		assert.True(t, got.IsCustomized)
	})
}
