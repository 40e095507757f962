package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/carsim/internal/signal"
	"github.com/san-kum/carsim/internal/vehicle"
)

// stepSlack absorbs the rounding in FinalTime/Dt so that a final time that
// is a whole number of steps is always reached.
const stepSlack = 1e-9

// Simulator drives a car through a fixed-step scenario. It is immutable
// after construction and may run any number of cars.
type Simulator struct {
	dt            float64
	finalTime     float64
	steering      *signal.Signal
	slip          *signal.Signal
	timestamps    TimestampMode
	validateState bool
	log           zerolog.Logger
}

// New validates cfg and builds a simulator. All configuration errors are
// reported here rather than during Simulate.
func New(cfg Config) (*Simulator, error) {
	if len(cfg.Steering) != len(cfg.Slip) || len(cfg.Steering) != len(cfg.Times) {
		return nil, fmt.Errorf("%w: %d times, %d steering, %d slip",
			ErrLengthMismatch, len(cfg.Times), len(cfg.Steering), len(cfg.Slip))
	}

	steering, err := signal.New(cfg.Times, cfg.Steering)
	if err != nil {
		return nil, fmt.Errorf("steering signal: %w", err)
	}
	slip, err := signal.New(cfg.Times, cfg.Slip)
	if err != nil {
		return nil, fmt.Errorf("slip signal: %w", err)
	}

	return NewFromSignals(cfg, steering, slip)
}

// NewFromSignals builds a simulator from prepared signals. The sample
// arrays in cfg are ignored.
func NewFromSignals(cfg Config, steering, slip *signal.Signal) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	for _, sig := range []*signal.Signal{steering, slip} {
		if sig.Start() > 0 {
			return nil, fmt.Errorf("%w: first sample at %g", ErrSignalStartsLate, sig.Start())
		}
		if cfg.FinalTime > sig.End() {
			return nil, fmt.Errorf("%w: final time %g, last sample %g", ErrFinalTimeBeyondSignal, cfg.FinalTime, sig.End())
		}
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Simulator{
		dt:            cfg.Dt,
		finalTime:     cfg.FinalTime,
		steering:      steering,
		slip:          slip,
		timestamps:    cfg.Timestamps,
		validateState: cfg.ValidateState,
		log:           log,
	}, nil
}

func validateConfig(cfg Config) error {
	if math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) || cfg.Dt <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidStep, cfg.Dt)
	}
	if math.IsNaN(cfg.FinalTime) || math.IsInf(cfg.FinalTime, 0) || cfg.FinalTime < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidFinalTime, cfg.FinalTime)
	}
	return nil
}

// DefaultConfig is 150 zero-valued control samples over [0, 15] s with a
// 1 ms step and a 15 s run.
func DefaultConfig() Config {
	return Config{
		Dt:            DefaultDt,
		FinalTime:     DefaultFinalTime,
		Times:         signal.Linspace(0, DefaultFinalTime, DefaultSamples),
		Steering:      make([]float64, DefaultSamples),
		Slip:          make([]float64, DefaultSamples),
		ValidateState: true,
	}
}

func Default() *Simulator {
	s, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Simulator) Dt() float64               { return s.dt }
func (s *Simulator) FinalTime() float64        { return s.finalTime }
func (s *Simulator) Timestamps() TimestampMode { return s.timestamps }
func (s *Simulator) Steering() *signal.Signal  { return s.steering }
func (s *Simulator) Slip() *signal.Signal      { return s.slip }

// Steps is the number of integration steps a run takes: one per step time
// t = i*Dt with t <= FinalTime.
func (s *Simulator) Steps() int {
	return int(math.Floor(s.finalTime/s.dt+stepSlack)) + 1
}

// ControlsAt interpolates both control signals at t.
func (s *Simulator) ControlsAt(t float64) (Controls, error) {
	delta, err := s.steering.At(t)
	if err != nil {
		return Controls{}, err
	}
	sx, err := s.slip.At(t)
	if err != nil {
		return Controls{}, err
	}
	return Controls{Delta: delta, Sx: sx}, nil
}

// Simulate advances car from its current state to the final time and
// returns the trajectory. The first entry is the state before any step at
// t=0. On error the partial trajectory is returned alongside it.
func (s *Simulator) Simulate(ctx context.Context, car *vehicle.Car, observers ...Observer) (*Trajectory, error) {
	steps := s.Steps()
	traj := newTrajectory(steps + 1)
	traj.append(0, car.State())

	s.log.Debug().
		Int("steps", steps).
		Float64("dt", s.dt).
		Float64("final_time", s.finalTime).
		Str("timestamps", s.timestamps.String()).
		Msg("simulation started")

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return traj, ctx.Err()
		default:
		}

		t := math.Min(float64(i)*s.dt, s.finalTime)

		u, err := s.ControlsAt(t)
		if err != nil {
			return traj, &StepError{Step: i, Time: t, State: car.State(), Wrapped: err}
		}

		car.Advance(u.Delta, u.Sx, s.dt)
		st := car.State()

		if s.validateState && !st.IsValid() {
			return traj, &StepError{Step: i, Time: t, State: st, Wrapped: ErrInvalidState}
		}

		recorded := t
		if s.timestamps == TimestampPostStep {
			recorded = float64(i+1) * s.dt
		}
		traj.append(recorded, st)

		for _, obs := range observers {
			obs.OnStep(recorded, st, u)
		}
	}

	_, final := traj.Final()
	s.log.Debug().
		Int("states", traj.Len()).
		Float64("x_m", final.X).
		Float64("y_m", final.Y).
		Msg("simulation finished")

	return traj, nil
}
