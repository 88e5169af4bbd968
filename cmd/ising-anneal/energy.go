package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n0madic/go-ising-anneal/internal/problemfile"
)

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Evaluate the energy of a spin assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		problemPath, _ := cmd.Flags().GetString("problem")
		spinsArg, _ := cmd.Flags().GetString("spins")

		pf, err := problemfile.Load(problemPath)
		if err != nil {
			return err
		}
		p, err := pf.Problem()
		if err != nil {
			return err
		}
		spins, err := problemfile.ParseSpins(spinsArg)
		if err != nil {
			return err
		}
		e, err := p.Energy(spins)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%g\n", e)
		return nil
	},
}

func init() {
	energyCmd.Flags().String("problem", "", "problem file (YAML or JSON)")
	energyCmd.Flags().String("spins", "", `spin assignment, "1,-1,1" or "+-+"`)
	_ = energyCmd.MarkFlagRequired("problem")
	_ = energyCmd.MarkFlagRequired("spins")

	rootCmd.AddCommand(energyCmd)
}
