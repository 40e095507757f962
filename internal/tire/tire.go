package tire

import (
	"errors"
	"fmt"
	"math"
)

// MinSlip is the combined slip magnitude below which a tire transmits no force.
const MinSlip = 1e-8

const (
	DefaultSlope = 1.75
	DefaultMu    = 1.0
)

var ErrUnknownModel = errors.New("tire: unknown model")

// Model computes longitudinal and lateral tire force from slip and normal load.
type Model interface {
	Forces(slipX, slipY, normalLoad float64) (fx, fy float64)
}

// Linear is the unsaturated linear tire: F = Fz * Slope * s.
type Linear struct {
	Slope float64
}

func NewLinear() Linear {
	return Linear{Slope: DefaultSlope}
}

func (l Linear) Forces(slipX, slipY, normalLoad float64) (float64, float64) {
	s := math.Hypot(slipX, slipY)
	if s < MinSlip {
		return 0, 0
	}
	return split(slipX, slipY, s, normalLoad*l.Slope*s)
}

// Saturating follows the linear law until the total force reaches the
// friction circle Mu*Fz, then holds it there.
type Saturating struct {
	Slope float64
	Mu    float64
}

func NewSaturating() Saturating {
	return Saturating{Slope: DefaultSlope, Mu: DefaultMu}
}

func (m Saturating) Forces(slipX, slipY, normalLoad float64) (float64, float64) {
	s := math.Hypot(slipX, slipY)
	if s < MinSlip {
		return 0, 0
	}
	f := math.Min(normalLoad*m.Slope*s, m.Mu*math.Abs(normalLoad))
	return split(slipX, slipY, s, f)
}

// split distributes the total force along the slip direction.
func split(slipX, slipY, s, f float64) (float64, float64) {
	return slipX / s * f, slipY / s * f
}

// New builds a model by name. Zero slope or mu selects the defaults.
func New(kind string, slope, mu float64) (Model, error) {
	if slope == 0 {
		slope = DefaultSlope
	}
	if mu == 0 {
		mu = DefaultMu
	}
	if slope < 0 || mu < 0 || math.IsNaN(slope) || math.IsNaN(mu) {
		return nil, fmt.Errorf("tire: slope %g and mu %g must be non-negative", slope, mu)
	}

	switch kind {
	case "", "linear":
		return Linear{Slope: slope}, nil
	case "saturating":
		return Saturating{Slope: slope, Mu: mu}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, kind)
	}
}

// Kinds lists the model names accepted by New.
func Kinds() []string {
	return []string{"linear", "saturating"}
}
