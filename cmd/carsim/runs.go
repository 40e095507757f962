package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/carsim/internal/analysis"
	"github.com/san-kum/carsim/internal/config"
	"github.com/san-kum/carsim/internal/export"
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/storage"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, storage.WithLogger(log))
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir, storage.WithLogger(log))
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no states", runID)
	}
	return meta, tr, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Catalog().Runs(presetFilter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFINAL\tDT\tTIRE\tFINAL X\tFINAL Y\tSPEED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%gs\t%s\t%.3f\t%.3f\t%.3f\n",
			colors.Cyan(e.ID),
			e.Preset,
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.FinalTime,
			e.Dt,
			e.Tire,
			e.FinalX,
			e.FinalY,
			e.FinalSpeed,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"run id", meta.ID},
		{"preset", meta.Preset},
		{"created", meta.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"steps", fmt.Sprintf("%d (dt=%g, T=%g)", meta.Steps, meta.Dt, meta.FinalTime)},
		{"tire", meta.Tire},
		{"timestamps", meta.Timestamps},
		{"car", fmt.Sprintf("L=%gm m=%gkg Izz=%g cg=%g", meta.Car.Wheelbase, meta.Car.Mass, meta.Car.Izz, meta.Car.CGRatio)},
		{"final position (m)", fmt.Sprintf("(%.3f, %.3f)", meta.Final.X, meta.Final.Y)},
		{"final speed (m/s)", fmt.Sprintf("%.3f", meta.Final.Speed())},
	}
	fmt.Println(summary("run "+meta.ID, rows, meta.Metrics))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", tr.Len())

	for _, name := range columns {
		data, err := tr.Column(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait, err := analysis.NewPhasePortrait(tr, xColumn, yColumn)
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x: %s  y: %s\n\n", xColumn, yColumn)
	fmt.Print(portrait.ASCII(80, 24))

	minX, maxX, minY, maxY := portrait.Bounds()
	fmt.Printf("\n%s: [%.4f, %.4f]  %s: [%.4f, %.4f]\n", xColumn, minX, maxX, yColumn, minY, maxY)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data, err := tr.Column(yColumn)
	if err != nil {
		return err
	}
	freqs, power, err := analysis.PowerSpectrum(data, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("column: %s\n\n", yColumn)

	// The interesting part of a vehicle spectrum sits well below Nyquist.
	plotData := power[:max(len(power)/50, 2)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), 0 to %.2f hz", yColumn, freqs[len(plotData)-1])),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if exportFormat == "png" {
		if outputPath == "" {
			return fmt.Errorf("png export needs --output")
		}
		return export.PNG(tr, "x", "y", outputPath)
	}

	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "csv":
		return storage.WriteCSV(w, tr)
	case "json":
		data := export.NewData(tr, meta.Dt, meta.FinalTime)
		data.ID = meta.ID
		data.Preset = meta.Preset
		data.Metrics = meta.Metrics
		return export.JSON(w, data)
	case "svg":
		return export.WriteSVG(w, tr, 800, 800)
	case "html":
		return export.HTML(w, meta.ID, tr, columns...)
	default:
		return fmt.Errorf("unknown format: %s (csv, json, svg, png, html)", exportFormat)
	}
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Println(colors.Yellow("deleted " + args[0]))
	return nil
}

func validateScenario(cmd *cobra.Command, args []string) error {
	sc, err := config.Load(args[0])
	if err != nil {
		return err
	}
	setup, err := sc.Build()
	if err != nil {
		return err
	}
	if _, err := setup.Simulator(); err != nil {
		return err
	}
	fmt.Println(colors.Green(args[0] + ": ok"))
	return nil
}
