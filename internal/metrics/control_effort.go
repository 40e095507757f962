package metrics

import (
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

// ControlEffort is the mean of delta^2 + s_x^2 over the run.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(t float64, x vehicle.State, u sim.Controls) {
	c.sum += u.Delta*u.Delta + u.Sx*u.Sx
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
