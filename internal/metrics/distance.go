package metrics

import (
	"math"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

// Distance is the path length driven, summed between observed positions.
type Distance struct {
	started bool
	x, y    float64
	total   float64
}

func NewDistance() *Distance { return &Distance{} }

func (d *Distance) Name() string { return "distance_m" }

func (d *Distance) Observe(t float64, x vehicle.State, u sim.Controls) {
	if d.started {
		d.total += math.Hypot(x.X-d.x, x.Y-d.y)
	}
	d.started = true
	d.x, d.y = x.X, x.Y
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() { *d = Distance{} }

// MaxSpeed is the largest observed speed.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed_m_per_s" }

func (m *MaxSpeed) Observe(t float64, x vehicle.State, u sim.Controls) {
	m.max = math.Max(m.max, x.Speed())
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// MaxYawRate is the largest observed |psi_dot|.
type MaxYawRate struct {
	max float64
}

func NewMaxYawRate() *MaxYawRate { return &MaxYawRate{} }

func (m *MaxYawRate) Name() string { return "max_yaw_rate_rad_per_s" }

func (m *MaxYawRate) Observe(t float64, x vehicle.State, u sim.Controls) {
	m.max = math.Max(m.max, math.Abs(x.PsiDot))
}

func (m *MaxYawRate) Value() float64 { return m.max }
func (m *MaxYawRate) Reset()         { m.max = 0 }
