// Package metrics summarises a simulation run from its per-step states.
package metrics

import (
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

type Metric interface {
	Name() string
	Observe(t float64, x vehicle.State, u sim.Controls)
	Value() float64
	Reset()
}

// Set fans simulator steps out to a group of metrics.
type Set []Metric

func (s Set) OnStep(t float64, x vehicle.State, u sim.Controls) {
	for _, m := range s {
		m.Observe(t, x, u)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns a fresh set of every metric for a car with params p.
func Default(p vehicle.Params) Set {
	return Set{
		NewDistance(),
		NewMaxSpeed(),
		NewMaxLateralAccel(),
		NewMaxYawRate(),
		NewMaxSideslip(),
		NewStability(DefaultSideslipLimit),
		NewEnergy(p),
		NewControlEffort(),
	}
}

var _ sim.Observer = Set(nil)
