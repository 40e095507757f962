package config

import (
	"math"
	"sort"

	"github.com/san-kum/carsim/internal/signal"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func preset(name string, vx, dt, final float64, controls ControlsConfig) *Scenario {
	sc := DefaultScenario()
	sc.Name = name
	sc.Initial.Vx = vx
	sc.Simulation.Dt = dt
	sc.Simulation.FinalTime = final
	sc.Controls = controls
	return sc
}

func slalomControls(final, amplitude, period float64, samples int) ControlsConfig {
	times := signal.Linspace(0, final, samples)
	steering := make([]float64, samples)
	for i, t := range times {
		steering[i] = amplitude * math.Sin(2*math.Pi*t/period)
	}
	return ControlsConfig{Times: times, Steering: steering, Slip: []float64{0.02}}
}

var Presets = map[string]*Scenario{
	"default": DefaultScenario(),
	"straight": preset("straight", 10, 1e-3, 10,
		ControlsConfig{Steering: []float64{0}, Slip: []float64{0}}),
	"accelerate": preset("accelerate", 1, 1e-3, 10,
		ControlsConfig{Steering: []float64{0, 0}, Slip: []float64{0, 0.1}}),
	// Heading grows clockwise, so a counter-clockwise circle steers negative.
	"circle_left": preset("circle_left", 10, 1e-3, 20,
		ControlsConfig{Steering: []float64{deg(-3)}, Slip: []float64{0.02}}),
	"circle_right": preset("circle_right", 10, 1e-3, 20,
		ControlsConfig{Steering: []float64{deg(3)}, Slip: []float64{0.02}}),
	"convergence": preset("convergence", 25, 5e-3, 25,
		ControlsConfig{Steering: []float64{deg(3), deg(3)}, Slip: []float64{0, 0.2}}),
	"slalom": preset("slalom", 10, 1e-3, 20, slalomControls(20, deg(3), 4, 81)),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	return sc.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
