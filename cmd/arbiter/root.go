package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "Arbiter - lending-governance decision service",
	Long: `Arbiter evaluates small-business loan applications through a
deterministic policy checklist, a heuristic risk estimate, and a content
analysis of the stated loan purpose.

Arbitration produces one of two dispositions: automatic approval, or
deferral to a human reviewer. The engine never declines on its own; a
declined outcome only exists as a reviewer's decision. Every finalized
decision is written to an append-only audit log.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
