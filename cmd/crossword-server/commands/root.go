// Package commands implements the crossword-server CLI surface (spec 6.3).
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crossword-server",
	Short: "Crossword Extravaganza match server",
	Long: `crossword-server hosts Crossword Extravaganza: a two-player
competitive crossword game played over a line-oriented TCP protocol.`,
}

// Execute runs the root command; child commands register themselves on it in
// their init functions. Called once from main.main.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}
