package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/carsim/internal/automation"
	"github.com/san-kum/carsim/internal/storage"
)

func batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [playlist]",
		Short: "run every scenario of a playlist file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	pl, err := automation.LoadPlaylist(args[0])
	if err != nil {
		return err
	}

	log.Info().Str("playlist", pl.Name).Int("steps", len(pl.Steps)).Msg("running playlist")
	results, err := automation.Run(cmd.Context(), pl)
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	fmt.Printf("playlist: %s\n", pl.Name)
	if pl.Description != "" {
		fmt.Println(pl.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCENARIO\tRUN ID\tFINAL X\tFINAL Y\tSPEED\tDISTANCE")
	for i, r := range results {
		runID := "-"
		if st != nil {
			runID, err = st.Save(storage.Run{
				Preset:     r.Name,
				Dt:         r.Setup.Sim.Dt,
				FinalTime:  r.Setup.Sim.FinalTime,
				Tire:       tireName(r.Scenario),
				Timestamps: r.Setup.Sim.Timestamps,
				Car:        r.Setup.Params,
				Metrics:    r.Metrics,
				Trajectory: r.Trajectory,
			})
			if err != nil {
				return err
			}
		}
		_, final := r.Trajectory.Final()
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\n",
			i+1, r.Name, colors.Cyan(runID), final.X, final.Y, final.Speed(), r.Metrics["distance_m"])
	}
	return w.Flush()
}
