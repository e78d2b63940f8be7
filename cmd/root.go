// Package cmd implements the command-line interface for fkorder using Cobra.
// It defines the root command and all subcommands (order, inspect, script,
// export, version).
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avinashkm/fkorder/internal/config"
)

// Version is the current version of fkorder, set at build time via ldflags.
var Version = "0.0.1"

var rootCmd = &cobra.Command{
	Use:   "fkorder",
	Short: "Compute FK-safe insert and delete orderings for PostgreSQL tables",
	Long: `fkorder analyzes the foreign key relationships of a set of tables and
produces a total order safe for batch INSERT (parents before children) and
the reverse order for batch DELETE. Cycles are detected, reported and broken
deterministically instead of failing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; ignore it when absent.
		_ = godotenv.Load()
		return config.Init()
	},
}

// Execute runs the root command and returns any error encountered.
// This is called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fkorder v%s\n", Version)
	},
}
