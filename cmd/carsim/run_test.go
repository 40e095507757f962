package main

import (
	"math"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carsim/internal/sim"
)

func scenarioCmd(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	configFile = ""
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().Float64Var(&dt, "dt", 0, "")
	cmd.Flags().Float64Var(&finalTime, "time", 0, "")
	cmd.Flags().Float64Var(&vx, "vx", 0, "")
	cmd.Flags().Float64Var(&steerDeg, "steer-deg", 0, "")
	cmd.Flags().Float64Var(&slip, "slip", 0, "")
	cmd.Flags().StringVar(&tireModel, "tire", "", "")
	cmd.Flags().BoolVar(&legacyTimestamps, "legacy-timestamps", false, "")
	for name, value := range set {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestLoadScenarioPreset(t *testing.T) {
	sc, err := loadScenario(scenarioCmd(t, nil), []string{"circle_right"})
	require.NoError(t, err)
	assert.Equal(t, "circle_right", sc.Name)
	assert.InDelta(t, 3*math.Pi/180, sc.Controls.Steering[0], 1e-15)
}

func TestLoadScenarioUnknownPreset(t *testing.T) {
	_, err := loadScenario(scenarioCmd(t, nil), []string{"drift"})
	assert.ErrorContains(t, err, "unknown preset")
}

func TestLoadScenarioFlagsOverride(t *testing.T) {
	cmd := scenarioCmd(t, map[string]string{
		"vx":                "12",
		"time":              "3",
		"steer-deg":         "2",
		"tire":              "saturating",
		"legacy-timestamps": "true",
	})
	sc, err := loadScenario(cmd, []string{"accelerate"})
	require.NoError(t, err)

	assert.Equal(t, 12.0, sc.Initial.Vx)
	assert.Equal(t, 3.0, sc.Simulation.FinalTime)
	assert.Equal(t, "saturating", sc.Tire.Model)
	assert.Empty(t, sc.Controls.Times)
	assert.InDelta(t, 2*math.Pi/180, sc.Controls.Steering[0], 1e-15)
	assert.Equal(t, []float64{0}, sc.Controls.Slip)

	setup, err := sc.Build()
	require.NoError(t, err)
	assert.Equal(t, sim.TimestampPreStep, setup.Sim.Timestamps)
	_, err = setup.Simulator()
	assert.NoError(t, err)
}

func TestColorPrinter(t *testing.T) {
	require.NotNil(t, colors, "errors before flag parsing need a printer")

	before := colors
	plain := newColorPrinter(true)
	assert.Same(t, before, colors)
	assert.Equal(t, "error: boom", plain.Red("error: boom"))
	assert.Equal(t, "ok", plain.Green("ok"))
}
