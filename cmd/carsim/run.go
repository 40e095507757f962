package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/carsim/internal/analysis"
	"github.com/san-kum/carsim/internal/config"
	"github.com/san-kum/carsim/internal/metrics"
	"github.com/san-kum/carsim/internal/storage"
)

// loadScenario resolves the preset argument and --config file, then applies
// any flags the user set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if len(args) > 0 {
		sc = config.GetPreset(args[0])
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	// Config file overrides the preset
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && fileCfg.Name == "default" {
			fileCfg.Name = sc.Name
		}
		sc = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		sc.Simulation.Dt = dt
	}
	if flags.Changed("time") {
		sc.Simulation.FinalTime = finalTime
	}
	if flags.Changed("vx") {
		sc.Initial.Vx = vx
	}
	// Either control flag replaces both profiles with constants.
	if flags.Changed("steer-deg") || flags.Changed("slip") {
		steering, sx := first(sc.Controls.Steering), first(sc.Controls.Slip)
		if flags.Changed("steer-deg") {
			steering = steerDeg * math.Pi / 180
		}
		if flags.Changed("slip") {
			sx = slip
		}
		sc.Controls = config.ControlsConfig{Steering: []float64{steering}, Slip: []float64{sx}}
	}
	if flags.Changed("tire") {
		sc.Tire.Model = tireModel
	}
	if flags.Changed("legacy-timestamps") && legacyTimestamps {
		sc.Simulation.Timestamps = "pre-step"
	}
	return sc, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	setup, err := sc.Build()
	if err != nil {
		return err
	}
	setup.Sim.Logger = &log

	s, err := setup.Simulator()
	if err != nil {
		return err
	}
	car, err := setup.NewCar()
	if err != nil {
		return err
	}

	set := metrics.Default(setup.Params)
	log.Info().Str("scenario", sc.Name).Int("steps", s.Steps()).Msg("running simulation")
	start := time.Now()

	tr, err := s.Simulate(cmd.Context(), car, set)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	_, final := tr.Final()
	rows := [][2]string{
		{"scenario", sc.Name},
		{"tire", tireName(sc)},
		{"steps", fmt.Sprintf("%d (dt=%g)", s.Steps(), s.Dt())},
		{"elapsed", elapsed.Round(time.Microsecond).String()},
		{"final position (m)", fmt.Sprintf("(%.3f, %.3f)", final.X, final.Y)},
		{"final heading (rad)", fmt.Sprintf("%.4f", final.Psi)},
		{"final speed (m/s)", fmt.Sprintf("%.3f", final.Speed())},
	}

	if !noSave {
		st := storage.New(dataDir, storage.WithLogger(log))
		if err := st.Init(); err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.Save(storage.Run{
			Preset:     sc.Name,
			Dt:         s.Dt(),
			FinalTime:  s.FinalTime(),
			Tire:       tireName(sc),
			Timestamps: s.Timestamps(),
			Car:        setup.Params,
			Metrics:    set.Values(),
			Trajectory: tr,
		})
		if err != nil {
			return err
		}
		rows = append([][2]string{{"run id", runID}}, rows...)
	}

	fmt.Println(summary("carsim run", rows, set.Values()))
	return nil
}

func first(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func tireName(sc *config.Scenario) string {
	if sc.Tire.Model == "" {
		return "linear"
	}
	return sc.Tire.Model
}

func compareSteps(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"convergence"}
	}
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	setup, err := sc.Build()
	if err != nil {
		return err
	}

	study, err := analysis.Convergence(cmd.Context(), setup.Sim, setup.NewCar, levels)
	if err != nil {
		return err
	}

	fmt.Printf("step refinement: %s (T=%gs)\n\n", sc.Name, setup.Sim.FinalTime)
	fmt.Printf("%-12s %-10s %-14s %-14s %-12s %s\n", "DT", "STEPS", "FINAL X", "FINAL Y", "|dX|", "ORDER")
	for _, lvl := range study.Levels {
		diff, order := "-", "-"
		if !math.IsNaN(lvl.DiffX) {
			diff = fmt.Sprintf("%.6f", lvl.DiffX)
		}
		if !math.IsNaN(lvl.Order) {
			order = fmt.Sprintf("%.3f", lvl.Order)
			if math.Abs(lvl.Order-1) < 0.25 {
				order = colors.Green(order)
			} else {
				order = colors.Yellow(order)
			}
		}
		fmt.Printf("%-12g %-10d %-14.6f %-14.6f %-12s %s\n", lvl.Dt, lvl.Steps, lvl.FinalX, lvl.FinalY, diff, order)
	}

	fmt.Println()
	if study.Converging() {
		fmt.Println(colors.Green(fmt.Sprintf("converging, mean observed order %.3f", study.MeanOrder())))
	} else {
		fmt.Println(colors.Red("differences do not shrink with the step size"))
	}
	return nil
}
