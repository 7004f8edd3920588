package domain

import "fmt"

// IntensityKind tells which effort scale a set is tracked with.
type IntensityKind int

const (
	IntensityNone IntensityKind = iota
	IntensityRIR                // reps in reserve, 0..10
	IntensityRPE                // rate of perceived exertion, 1..10
)

// Intensity is either RIR(n), RPE(n) or none. A set is never tracked by both.
type Intensity struct {
	kind  IntensityKind
	value int
}

func RIR(n int) Intensity { return Intensity{kind: IntensityRIR, value: n} }

func RPE(n int) Intensity { return Intensity{kind: IntensityRPE, value: n} }

func NoIntensity() Intensity { return Intensity{} }

func (i Intensity) Kind() IntensityKind { return i.kind }

func (i Intensity) Value() int { return i.value }

func (i Intensity) IsNone() bool { return i.kind == IntensityNone }

// Fields splits the intensity into the two nullable columns used on disk and on the wire.
func (i Intensity) Fields() (rir *int, rpe *int) {
	v := i.value
	switch i.kind {
	case IntensityRIR:
		return &v, nil
	case IntensityRPE:
		return nil, &v
	default:
		return nil, nil
	}
}

func (i Intensity) String() string {
	switch i.kind {
	case IntensityRIR:
		return fmt.Sprintf("RIR %d", i.value)
	case IntensityRPE:
		return fmt.Sprintf("RPE %d", i.value)
	default:
		return "none"
	}
}
