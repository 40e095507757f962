package metrics

import (
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

// KineticEnergy of the car, translational plus yaw.
func KineticEnergy(p vehicle.Params, x vehicle.State) float64 {
	v := x.Speed()
	return 0.5*p.Mass*v*v + 0.5*p.Izz*x.PsiDot*x.PsiDot
}

// Energy reports the kinetic energy gained between the first and last
// observed step.
type Energy struct {
	params  vehicle.Params
	samples int
	first   float64
	last    float64
}

func NewEnergy(p vehicle.Params) *Energy {
	return &Energy{params: p}
}

func (e *Energy) Name() string { return "energy_gain_j" }

func (e *Energy) Observe(t float64, x vehicle.State, u sim.Controls) {
	ke := KineticEnergy(e.params, x)
	if e.samples == 0 {
		e.first = ke
	}
	e.last = ke
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.last - e.first
}

func (e *Energy) Reset() {
	e.samples = 0
	e.first = 0
	e.last = 0
}
