package schedule

import (
	"alcyxob/fitness-planner/internal/domain"
	"strings"
)

// EffectiveSet is what the user sees for a set after merging an override onto the base.
type EffectiveSet struct {
	RepsMin      *int     `json:"effectiveRepsMin,omitempty"`
	RepsMax      *int     `json:"effectiveRepsMax,omitempty"`
	Weight       *float64 `json:"effectiveWeight,omitempty"`
	RIR          *int     `json:"effectiveRir,omitempty"`
	RPE          *int     `json:"effectiveRpe,omitempty"`
	Notes        string   `json:"effectiveNotes,omitempty"`
	IsCustomized bool     `json:"isCustomized"`
}

// Effective merges custom (may be nil) onto base.
func Effective(base domain.ExerciseSet, custom *domain.DayCustomization) EffectiveSet {
	out := EffectiveSet{
		RepsMin: base.TargetRepsMin,
		RepsMax: base.TargetRepsMax,
		Weight:  base.TargetWeight,
		Notes:   base.Notes,
	}

	var override *domain.DayCustomization
	if custom != nil && custom.HasCustomizations() {
		override = custom
	}
	if override != nil {
		if override.CustomRepsMin != nil {
			out.RepsMin = override.CustomRepsMin
		}
		if override.CustomRepsMax != nil {
			out.RepsMax = override.CustomRepsMax
		}
		if override.CustomWeight != nil {
			out.Weight = override.CustomWeight
		}
		if !domain.IsBlank(override.CustomNotes) {
			out.Notes = strings.TrimSpace(*override.CustomNotes)
		}
		out.IsCustomized = true
	}

	out.RIR, out.RPE = EffectiveIntensity(base, custom).Fields()
	return out
}

// EffectiveIntensity applies the solely-one precedence: override RPE, override RIR,
// base RPE (> 0), base RIR (>= 0), none.
func EffectiveIntensity(base domain.ExerciseSet, custom *domain.DayCustomization) domain.Intensity {
	switch {
	case custom != nil && custom.CustomRPE != nil:
		return domain.RPE(*custom.CustomRPE)
	case custom != nil && custom.CustomRIR != nil:
		return domain.RIR(*custom.CustomRIR)
	case base.TargetRPE != nil && *base.TargetRPE > 0:
		return domain.RPE(*base.TargetRPE)
	case base.TargetRIR != nil && *base.TargetRIR >= 0:
		return domain.RIR(*base.TargetRIR)
	default:
		return domain.NoIntensity()
	}
}
