package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/carsim/internal/config"
	"github.com/san-kum/carsim/internal/logging"
)

var (
	dataDir  string
	logLevel string
	noColor  bool

	// run flags
	configFile       string
	dt               float64
	finalTime        float64
	vx               float64
	steerDeg         float64
	slip             float64
	tireModel        string
	legacyTimestamps bool
	noSave           bool

	// inspection flags
	columns      []string
	exportFormat string
	outputPath   string
	xColumn      string
	yColumn      string
	presetFilter string
	levels       int

	log zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "carsim",
		Short:         "planar single-track vehicle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(os.Stderr, logLevel, true)
			colors = newColorPrinter(noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".carsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colour output")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "time step (s)")
	runCmd.Flags().Float64Var(&finalTime, "time", 0, "final time (s)")
	runCmd.Flags().Float64Var(&vx, "vx", 0, "initial forward speed (m/s)")
	runCmd.Flags().Float64Var(&steerDeg, "steer-deg", 0, "constant steering angle (deg)")
	runCmd.Flags().Float64Var(&slip, "slip", 0, "constant longitudinal slip")
	runCmd.Flags().StringVar(&tireModel, "tire", "", "tire model (linear, saturating)")
	runCmd.Flags().BoolVar(&legacyTimestamps, "legacy-timestamps", false, "pair states with the time before each step")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&presetFilter, "preset", "", "only runs of this preset")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run columns in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"x", "y", "speed", "beta"}, "columns to plot")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase plot of two columns",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xColumn, "x", "beta", "column for the x axis")
	phaseCmd.Flags().StringVar(&yColumn, "y", "psi_dot", "column for the y axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&yColumn, "column", "psi_dot", "column to analyse")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (csv, json, svg, png, html)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout; required for png)")
	exportCmd.Flags().StringSliceVar(&columns, "columns", nil, "columns for html charts")

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "step-refinement study of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareSteps,
	}
	compareCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	compareCmd.Flags().IntVar(&levels, "levels", 4, "number of step sizes")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				sc := config.GetPreset(name)
				fmt.Printf("  %-14s vx=%-5g T=%-5g dt=%g\n", name, sc.Initial.Vx, sc.Simulation.FinalTime, sc.Simulation.Dt)
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "check a scenario file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE:  validateScenario,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, compareCmd, sweepCommand(), batchCommand(), deleteCmd, presetsCmd, validateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, colors.Red("error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
