package vehicle

import "math"

// State is the instantaneous condition of the car. It is a plain value;
// copying it yields an independent snapshot.
type State struct {
	X      float64 `json:"x_m" csv:"x_m"`
	Y      float64 `json:"y_m" csv:"y_m"`
	Psi    float64 `json:"psi_rad" csv:"psi_rad"`
	Vx     float64 `json:"vx_m_per_s" csv:"vx_m_per_s"`
	Vy     float64 `json:"vy_m_per_s" csv:"vy_m_per_s"`
	PsiDot float64 `json:"psi_dot_rad_per_s" csv:"psi_dot_rad_per_s"`

	// Last applied controls, recorded for output only.
	Delta float64 `json:"delta_rad" csv:"delta_rad"`
	Sx    float64 `json:"s_x" csv:"s_x"`
}

func DefaultState() State {
	return State{Vx: 1.0, Psi: 0.5 * math.Pi}
}

// Speed returns the magnitude of the velocity vector.
func (s State) Speed() float64 {
	return math.Hypot(s.Vx, s.Vy)
}

// Sideslip returns the angle between the velocity vector and the heading,
// in (-pi, pi].
func (s State) Sideslip() float64 {
	angle := math.Atan2(s.Vx, s.Vy)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return WrapAngle(angle - s.Psi)
}

// WrapAngle maps theta into (-pi, pi] by whole turns.
func WrapAngle(theta float64) float64 {
	if theta > math.Pi {
		n := math.Ceil((theta - math.Pi) / (2 * math.Pi))
		theta -= n * 2 * math.Pi
	} else if theta < -math.Pi {
		n := math.Ceil(-(theta + math.Pi) / (2 * math.Pi))
		theta += n * 2 * math.Pi
	}
	// -pi itself is outside the half-open range
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// Advance performs one explicit Euler step. The position update uses the
// velocities held before the call.
func (s *State) Advance(ax, ay, alpha, dt float64) {
	s.X += s.Vx * dt
	s.Y += s.Vy * dt
	s.Psi += s.PsiDot * dt

	s.Vx += ax * dt
	s.Vy += ay * dt
	s.PsiDot += alpha * dt
}

func (s State) IsValid() bool {
	for _, v := range []float64{s.X, s.Y, s.Psi, s.Vx, s.Vy, s.PsiDot} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
