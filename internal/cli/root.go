// Package cli implements the tcf command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tcf",
	Short: "tcf — Tu Cocina Fácil backend",
	Long: `tcf is the backend for Tu Cocina Fácil, the weekly meal planner.
It serves the REST API: accounts, profiles, AI menu generation, shopping
lists, and the points/levels/badges progression engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
