// Package automation runs scripted batches of scenarios.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/carsim/internal/config"
	"github.com/san-kum/carsim/internal/metrics"
	"github.com/san-kum/carsim/internal/sim"
)

var ErrNoSteps = errors.New("automation: playlist has no steps")

// Playlist is a named list of scenario runs.
type Playlist struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset or scenario file and overrides selected fields.
// Nil fields keep the base value.
type Step struct {
	Preset    string   `yaml:"preset"`
	Config    string   `yaml:"config"`
	Vx        *float64 `yaml:"vx"`
	FinalTime *float64 `yaml:"final_time"`
	Dt        *float64 `yaml:"dt"`
	SteerDeg  *float64 `yaml:"steer_deg"`
	Slip      *float64 `yaml:"slip"`
	Tire      string   `yaml:"tire"`
	SaveAs    string   `yaml:"save_as"`
}

type Result struct {
	Name       string
	Scenario   *config.Scenario
	Setup      *config.Setup
	Trajectory *sim.Trajectory
	Metrics    map[string]float64
}

// LoadPlaylist loads a playlist from a YAML file
func LoadPlaylist(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// Scenario resolves the step into a full scenario.
func (s Step) Scenario() (*config.Scenario, error) {
	sc := config.DefaultScenario()
	switch {
	case s.Config != "":
		var err error
		if sc, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	case s.Preset != "":
		if sc = config.GetPreset(s.Preset); sc == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if s.Vx != nil {
		sc.Initial.Vx = *s.Vx
	}
	if s.FinalTime != nil {
		sc.Simulation.FinalTime = *s.FinalTime
	}
	if s.Dt != nil {
		sc.Simulation.Dt = *s.Dt
	}
	if s.SteerDeg != nil || s.Slip != nil {
		steer, slip := first(sc.Controls.Steering), first(sc.Controls.Slip)
		if s.SteerDeg != nil {
			steer = *s.SteerDeg * math.Pi / 180
		}
		if s.Slip != nil {
			slip = *s.Slip
		}
		sc.Controls = config.ControlsConfig{Steering: []float64{steer}, Slip: []float64{slip}}
	}
	if s.Tire != "" {
		sc.Tire.Model = s.Tire
	}
	if s.SaveAs != "" {
		sc.Name = s.SaveAs
	}
	return sc, nil
}

func first(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// Run executes every step concurrently. Results keep the step order.
func Run(ctx context.Context, pl *Playlist) ([]Result, error) {
	if len(pl.Steps) == 0 {
		return nil, ErrNoSteps
	}

	results := make([]Result, len(pl.Steps))
	jobs := make([]sim.Job, len(pl.Steps))
	sets := make([]metrics.Set, len(pl.Steps))
	for i, step := range pl.Steps {
		sc, err := step.Scenario()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		setup, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		s, err := setup.Simulator()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		sets[i] = metrics.Default(setup.Params)
		jobs[i] = sim.Job{Sim: s, NewCar: setup.NewCar, Observers: []sim.Observer{sets[i]}}
		results[i] = Result{Name: sc.Name, Scenario: sc, Setup: setup}
	}

	trajs, err := sim.Batch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for i, tr := range trajs {
		results[i].Trajectory = tr
		results[i].Metrics = sets[i].Values()
	}
	return results, nil
}
