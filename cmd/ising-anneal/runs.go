package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/n0madic/go-ising-anneal/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List stored runs or show one run",
	Long: `Without arguments runs lists the most recent stored runs. With a run id it
prints that run's record, samples and energies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := viper.GetString("db")
		if dbPath == "" {
			return errors.New("no run store configured (use --db or ISING_ANNEAL_DB)")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if len(args) == 1 {
			rec, res, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, map[string]any{
				"run":      rec,
				"samples":  res.Samples,
				"energies": res.Energies,
			})
		}

		runs, err := st.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if format == "json" || format == "yaml" {
			return writeOutput(cmd.OutOrStdout(), format, runs)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tPROBLEM\tN\tSAMPLES\tSWEEPS\tMIN ENERGY")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%g\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Problem,
				r.NumVariables, r.NumSamples, r.NumSweeps, r.MinEnergy)
		}
		return tw.Flush()
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs listed (0 lists all)")
	runsCmd.Flags().String("format", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(runsCmd)
}
