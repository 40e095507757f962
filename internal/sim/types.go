package sim

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/carsim/internal/vehicle"
)

// TimestampMode selects which instant a recorded state is paired with.
type TimestampMode int

const (
	// TimestampPostStep pairs each state with the time it describes.
	TimestampPostStep TimestampMode = iota
	// TimestampPreStep pairs each post-step state with the time before the
	// step. Older tooling wrote its output this way.
	TimestampPreStep
)

func (m TimestampMode) String() string {
	if m == TimestampPreStep {
		return "pre-step"
	}
	return "post-step"
}

// Controls are the driver inputs applied during one step.
type Controls struct {
	Delta float64 // steering angle, rad
	Sx    float64 // longitudinal slip
}

// Observer is notified after every step with the new state and the
// controls that produced it.
type Observer interface {
	OnStep(t float64, st vehicle.State, u Controls)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t float64, st vehicle.State, u Controls)

func (f ObserverFunc) OnStep(t float64, st vehicle.State, u Controls) { f(t, st, u) }

// Config describes a scenario. Steering and Slip are sampled at Times.
type Config struct {
	Dt            float64
	FinalTime     float64
	Times         []float64
	Steering      []float64
	Slip          []float64
	Timestamps    TimestampMode
	ValidateState bool
	Logger        *zerolog.Logger
}

const (
	DefaultDt        = 1e-3
	DefaultFinalTime = 15.0
	DefaultSamples   = 150
)

var ErrUnknownColumn = errors.New("sim: unknown trajectory column")

// Trajectory is the append-only output of a run. States are snapshots and
// never alias the live car state.
type Trajectory struct {
	Times  []float64
	States []vehicle.State
}

func newTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]vehicle.State, 0, capacity),
	}
}

func (tr *Trajectory) append(t float64, st vehicle.State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, st)
}

func (tr *Trajectory) Len() int { return len(tr.States) }

// Final returns the last recorded state and its time.
func (tr *Trajectory) Final() (float64, vehicle.State) {
	if len(tr.States) == 0 {
		return 0, vehicle.State{}
	}
	return tr.Times[len(tr.Times)-1], tr.States[len(tr.States)-1]
}

// Columns lists the names accepted by Column.
func Columns() []string {
	return []string{"x", "y", "psi", "vx", "vy", "psi_dot", "delta", "s_x", "speed", "beta"}
}

// Column extracts one quantity from every recorded state.
func (tr *Trajectory) Column(name string) ([]float64, error) {
	var get func(vehicle.State) float64
	switch name {
	case "x":
		get = func(s vehicle.State) float64 { return s.X }
	case "y":
		get = func(s vehicle.State) float64 { return s.Y }
	case "psi":
		get = func(s vehicle.State) float64 { return s.Psi }
	case "vx":
		get = func(s vehicle.State) float64 { return s.Vx }
	case "vy":
		get = func(s vehicle.State) float64 { return s.Vy }
	case "psi_dot":
		get = func(s vehicle.State) float64 { return s.PsiDot }
	case "delta":
		get = func(s vehicle.State) float64 { return s.Delta }
	case "s_x":
		get = func(s vehicle.State) float64 { return s.Sx }
	case "speed":
		get = vehicle.State.Speed
	case "beta":
		get = vehicle.State.Sideslip
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}

	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = get(s)
	}
	return out, nil
}
