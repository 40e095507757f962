package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/carsim/internal/config"
	"github.com/san-kum/carsim/internal/metrics"
	"github.com/san-kum/carsim/internal/optim"
	"github.com/san-kum/carsim/internal/sim"
)

var (
	steerGrid []float64
	slipGrid  []float64
	metric    string
	maximize  bool
	top       int
)

func sweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search constant steering and slip for the best metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().Float64SliceVar(&steerGrid, "steer-deg", []float64{0, 1, 2, 3, 4, 5}, "steering angles to try (deg)")
	cmd.Flags().Float64SliceVar(&slipGrid, "slip", []float64{0, 0.05, 0.1}, "slip values to try")
	cmd.Flags().StringVar(&metric, "metric", "max_sideslip_rad", "metric to optimise")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	cmd.Flags().IntVar(&top, "top", 5, "number of results to show")
	return cmd
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	base := config.DefaultScenario()
	if len(args) > 0 {
		base = config.GetPreset(args[0])
		if base == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if base, err = config.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	grid, err := optim.NewGridSearch([]string{"steer_deg", "slip"}, [][]float64{steerGrid, slipGrid})
	if err != nil {
		return err
	}

	build := func(c optim.Candidate) (sim.Job, metrics.Set, error) {
		sc := base.Clone()
		sc.Controls = config.ControlsConfig{
			Steering: []float64{c["steer_deg"] * math.Pi / 180},
			Slip:     []float64{c["slip"]},
		}
		setup, err := sc.Build()
		if err != nil {
			return sim.Job{}, nil, err
		}
		s, err := setup.Simulator()
		if err != nil {
			return sim.Job{}, nil, err
		}
		return sim.Job{Sim: s, NewCar: setup.NewCar}, metrics.Default(setup.Params), nil
	}

	objective := optim.MetricObjective(metric)
	if maximize {
		objective = optim.Negate(objective)
	}

	evals, err := grid.Search(cmd.Context(), build, objective)
	if err != nil {
		return err
	}
	if _, ok := evals[0].Metrics[metric]; !ok {
		return fmt.Errorf("unknown metric: %s", metric)
	}

	goal := "minimising"
	if maximize {
		goal = "maximising"
	}
	fmt.Printf("sweep: %s, %d candidates, %s %s\n\n", base.Name, len(evals), goal, metric)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSTEER (DEG)\tSLIP\t"+metric)
	for i, e := range evals[:min(top, len(evals))] {
		rank := fmt.Sprintf("%d", i+1)
		if i == 0 {
			rank = colors.Green(rank)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%.6g\n", rank, e.Params["steer_deg"], e.Params["slip"], e.Metrics[metric])
	}
	return w.Flush()
}
