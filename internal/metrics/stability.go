package metrics

import (
	"math"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

// DefaultSideslipLimit is 10 degrees.
const DefaultSideslipLimit = 10 * math.Pi / 180

// Stability is the fraction of steps with |beta| within the limit.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t float64, x vehicle.State, u sim.Controls) {
	s.samples++
	if math.Abs(x.Sideslip()) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxSideslip is the largest observed |beta|.
type MaxSideslip struct {
	max float64
}

func NewMaxSideslip() *MaxSideslip { return &MaxSideslip{} }

func (m *MaxSideslip) Name() string { return "max_sideslip_rad" }

func (m *MaxSideslip) Observe(t float64, x vehicle.State, u sim.Controls) {
	m.max = math.Max(m.max, math.Abs(x.Sideslip()))
}

func (m *MaxSideslip) Value() float64 { return m.max }
func (m *MaxSideslip) Reset()         { m.max = 0 }

// MaxLateralAccel is the largest acceleration normal to the velocity,
// estimated from successive velocity samples.
type MaxLateralAccel struct {
	started bool
	t       float64
	vx, vy  float64
	max     float64
}

func NewMaxLateralAccel() *MaxLateralAccel { return &MaxLateralAccel{} }

func (m *MaxLateralAccel) Name() string { return "max_lateral_accel_m_per_s2" }

func (m *MaxLateralAccel) Observe(t float64, x vehicle.State, u sim.Controls) {
	if m.started && t > m.t {
		dt := t - m.t
		ax, ay := (x.Vx-m.vx)/dt, (x.Vy-m.vy)/dt
		if v := x.Speed(); v > 0 {
			// component of a perpendicular to v
			lat := math.Abs(x.Vx*ay-x.Vy*ax) / v
			m.max = math.Max(m.max, lat)
		}
	}
	m.started = true
	m.t, m.vx, m.vy = t, x.Vx, x.Vy
}

func (m *MaxLateralAccel) Value() float64 { return m.max }
func (m *MaxLateralAccel) Reset()         { *m = MaxLateralAccel{} }
