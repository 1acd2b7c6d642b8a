package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "tokenpulse - token signal scoring and emission pipeline",
	Long: `tokenpulse Unified CLI

Discovers candidate tokens from upstream market providers, scores and
gates them, and emits ranked signals to persistence and notification
sinks.

Usage:
  go run ./cmd/pulse [command]

Examples:
  go run ./cmd/pulse run
  go run ./cmd/pulse scan
  go run ./cmd/pulse api
  go run ./cmd/pulse status`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
