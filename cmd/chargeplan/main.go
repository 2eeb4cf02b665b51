// Package main provides the chargeplan CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "chargeplan",
		Short: "EV charging-station placement via QUBO",
		Long: `Chargeplan encodes a city grid of points of interest and charging stations
as a QUBO, solves it on a hosted hybrid solver, and maps the lowest-energy
configuration back to charging-station coordinates.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newPlaceCmd(),
		newMatrixCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
