package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/carsim/internal/tire"
)

// StandardGravity in m/s^2.
const StandardGravity = 9.80665

// minSpeed is the speed below which yaw-rate slip terms are dropped.
const minSpeed = 1e-8

var ErrInvalidParams = errors.New("vehicle: invalid parameters")

// Params are the physical properties of the car. CGRatio is the position of
// the centre of gravity between the axles: 0 puts it on the front axle,
// 1 on the rear axle.
type Params struct {
	Wheelbase float64 `json:"wheelbase_m" yaml:"wheelbase_m"`
	Mass      float64 `json:"mass_kg" yaml:"mass_kg"`
	Izz       float64 `json:"izz_kg_m2" yaml:"izz_kg_m2"`
	CGRatio   float64 `json:"cg_ratio" yaml:"cg_ratio"`
	Gravity   float64 `json:"gravity_m_per_s2" yaml:"gravity_m_per_s2"`
}

func DefaultParams() Params {
	return Params{
		Wheelbase: 1.2,
		Mass:      163.0,
		Izz:       75.0,
		CGRatio:   0.5,
		Gravity:   StandardGravity,
	}
}

func (p Params) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidParams, name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"wheelbase", p.Wheelbase},
		{"mass", p.Mass},
		{"izz", p.Izz},
		{"gravity", p.Gravity},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	if math.IsNaN(p.CGRatio) || p.CGRatio < 0 || p.CGRatio > 1 {
		return fmt.Errorf("%w: cg_ratio must be in [0, 1], got %g", ErrInvalidParams, p.CGRatio)
	}
	return nil
}

// FrontArm is the distance from the centre of gravity to the front axle.
func (p Params) FrontArm() float64 { return p.CGRatio * p.Wheelbase }

// RearArm is the distance from the centre of gravity to the rear axle.
func (p Params) RearArm() float64 { return p.Wheelbase - p.FrontArm() }

// NormalLoads returns the static front and rear axle loads.
func (p Params) NormalLoads() (front, rear float64) {
	w := p.Mass * p.Gravity
	return w * (1 - p.CGRatio), w * p.CGRatio
}

// Forces is the breakdown of one dynamics evaluation.
type Forces struct {
	SlipFront, SlipRear float64 // lateral slip per axle
	FxFront, FyFront    float64 // front tire frame
	FxRear, FyRear      float64 // rear tire frame
	Fx, Fy, Mz          float64 // body frame
	FxGround, FyGround  float64
	Ax, Ay, Alpha       float64
}

// Car is a single-track vehicle. It exclusively owns its tire model and its
// live state.
type Car struct {
	params Params
	tire   tire.Model
	state  State
}

// New builds a car. A nil model selects a fresh linear tire.
func New(params Params, model tire.Model, initial State) (*Car, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: initial state is not finite", ErrInvalidParams)
	}
	if model == nil {
		model = tire.NewLinear()
	}
	return &Car{params: params, tire: model, state: initial}, nil
}

func (c *Car) Params() Params        { return c.params }
func (c *Car) TireModel() tire.Model { return c.tire }

// State returns a snapshot of the live state.
func (c *Car) State() State { return c.state }

// Forces evaluates the dynamics at the current state for the given steering
// angle and longitudinal slip without advancing.
func (c *Car) Forces(delta, sx float64) Forces {
	p := c.params
	st := c.state

	v := st.Speed()
	beta := st.Sideslip()

	fzFront, fzRear := p.NormalLoads()
	a, b := p.FrontArm(), p.RearArm()

	var f Forces
	f.SlipFront = delta - beta
	f.SlipRear = -beta
	if v >= minSpeed {
		f.SlipFront -= a * st.PsiDot / v
		f.SlipRear += b * st.PsiDot / v
	}

	f.FxFront, f.FyFront = c.tire.Forces(sx, f.SlipFront, fzFront)
	f.FxRear, f.FyRear = c.tire.Forces(sx, f.SlipRear, fzRear)

	sinD, cosD := math.Sincos(delta)
	frontLat := f.FxFront*sinD + f.FyFront*cosD
	f.Fx = f.FxRear + f.FxFront*cosD - f.FyFront*sinD
	f.Fy = f.FyRear + frontLat
	f.Mz = a*frontLat - b*f.FyRear

	// body longitudinal axis is (sin psi, cos psi) in ground coordinates
	sinP, cosP := math.Sincos(st.Psi)
	f.FxGround = f.Fx*sinP + f.Fy*cosP
	f.FyGround = f.Fx*cosP - f.Fy*sinP

	f.Ax = f.FxGround / p.Mass
	f.Ay = f.FyGround / p.Mass
	f.Alpha = f.Mz / p.Izz
	return f
}

// Advance applies steering angle delta and longitudinal slip sx for dt seconds.
func (c *Car) Advance(delta, sx, dt float64) {
	f := c.Forces(delta, sx)

	c.state.Delta = delta
	c.state.Sx = sx

	c.state.Advance(f.Ax, f.Ay, f.Alpha, dt)
}
