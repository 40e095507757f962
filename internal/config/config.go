package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/carsim/internal/signal"
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/tire"
	"github.com/san-kum/carsim/internal/vehicle"
)

const (
	DefaultVx  = 1.0
	DefaultPsi = math.Pi / 2
)

var ErrUnknownTimestamps = errors.New("config: unknown timestamp mode")

// Scenario is one simulation run as stored in a YAML file.
type Scenario struct {
	Name       string           `yaml:"name,omitempty"`
	Car        vehicle.Params   `yaml:"car"`
	Tire       TireConfig       `yaml:"tire"`
	Initial    InitialState     `yaml:"initial_state"`
	Simulation SimulationConfig `yaml:"simulation"`
	Controls   ControlsConfig   `yaml:"controls"`
}

type TireConfig struct {
	Model string  `yaml:"model"`
	Slope float64 `yaml:"slope,omitempty"`
	Mu    float64 `yaml:"mu,omitempty"`
}

type InitialState struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Psi    float64 `yaml:"psi"`
	Vx     float64 `yaml:"vx"`
	Vy     float64 `yaml:"vy"`
	PsiDot float64 `yaml:"psi_dot"`
}

type SimulationConfig struct {
	Dt            float64 `yaml:"dt"`
	FinalTime     float64 `yaml:"final_time"`
	Timestamps    string  `yaml:"timestamps,omitempty"`
	ValidateState bool    `yaml:"validate_state"`
}

// ControlsConfig holds the steering (rad) and slip samples. Without Times
// the samples are spread evenly over [0, final_time]; a single value is held
// constant.
type ControlsConfig struct {
	Times    []float64 `yaml:"times,omitempty"`
	Steering []float64 `yaml:"steering"`
	Slip     []float64 `yaml:"slip"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "default",
		Car:  vehicle.DefaultParams(),
		Tire: TireConfig{Model: "linear", Slope: tire.DefaultSlope},
		Initial: InitialState{
			Psi: DefaultPsi,
			Vx:  DefaultVx,
		},
		Simulation: SimulationConfig{
			Dt:            sim.DefaultDt,
			FinalTime:     sim.DefaultFinalTime,
			ValidateState: true,
		},
		Controls: ControlsConfig{
			Times:    signal.Linspace(0, sim.DefaultFinalTime, sim.DefaultSamples),
			Steering: make([]float64, sim.DefaultSamples),
			Slip:     make([]float64, sim.DefaultSamples),
		},
	}
}

// Load validates the file against the scenario schema and decodes it over
// the defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc := DefaultScenario()
	// Controls in the file replace the default samples entirely; a file
	// without them runs with zero controls.
	sc.Controls = ControlsConfig{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be overridden safely.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Controls = ControlsConfig{
		Times:    append([]float64(nil), s.Controls.Times...),
		Steering: append([]float64(nil), s.Controls.Steering...),
		Slip:     append([]float64(nil), s.Controls.Slip...),
	}
	return &c
}

// Setup is a scenario resolved into the types the simulator works with.
type Setup struct {
	Params  vehicle.Params
	Tire    tire.Model
	Initial vehicle.State
	Sim     sim.Config
}

func (s *Setup) NewCar() (*vehicle.Car, error) {
	return vehicle.New(s.Params, s.Tire, s.Initial)
}

func (s *Setup) Simulator() (*sim.Simulator, error) {
	return sim.New(s.Sim)
}

func ParseTimestamps(name string) (sim.TimestampMode, error) {
	switch name {
	case "", "post-step":
		return sim.TimestampPostStep, nil
	case "pre-step":
		return sim.TimestampPreStep, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTimestamps, name)
	}
}

func (s *Scenario) Build() (*Setup, error) {
	if err := s.Car.Validate(); err != nil {
		return nil, err
	}
	model, err := tire.New(s.Tire.Model, s.Tire.Slope, s.Tire.Mu)
	if err != nil {
		return nil, err
	}
	mode, err := ParseTimestamps(s.Simulation.Timestamps)
	if err != nil {
		return nil, err
	}

	times, steering, slip := s.Controls.samples(s.Simulation.FinalTime)

	initial := vehicle.State{
		X:      s.Initial.X,
		Y:      s.Initial.Y,
		Psi:    s.Initial.Psi,
		Vx:     s.Initial.Vx,
		Vy:     s.Initial.Vy,
		PsiDot: s.Initial.PsiDot,
	}
	if !initial.IsValid() {
		return nil, fmt.Errorf("config: initial state is not finite")
	}

	return &Setup{
		Params:  s.Car,
		Tire:    model,
		Initial: initial,
		Sim: sim.Config{
			Dt:            s.Simulation.Dt,
			FinalTime:     s.Simulation.FinalTime,
			Times:         times,
			Steering:      steering,
			Slip:          slip,
			Timestamps:    mode,
			ValidateState: s.Simulation.ValidateState,
		},
	}, nil
}

func (c ControlsConfig) samples(final float64) (times, steering, slip []float64) {
	steering = append([]float64(nil), c.Steering...)
	slip = append([]float64(nil), c.Slip...)

	n := len(c.Times)
	if n == 0 {
		n = max(len(steering), len(slip), 2)
	}
	steering = broadcast(steering, n)
	slip = broadcast(slip, n)

	times = append([]float64(nil), c.Times...)
	if len(times) == 0 {
		times = signal.Linspace(0, final, n)
	}
	return times, steering, slip
}

// broadcast expands an empty or single-valued slice to n samples. Other
// lengths are left alone for the simulator to reject.
func broadcast(v []float64, n int) []float64 {
	if len(v) > 1 {
		return v
	}
	var x float64
	if len(v) == 1 {
		x = v[0]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = x
	}
	return out
}
