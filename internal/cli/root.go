// Package cli wires the daemon's cobra commands.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "daylined",
	Short: "Behavioral inference daemon for planned-day tracking",
	Long: "daylined watches foreground activity, infers how much of each planned\n" +
		"task got done, learns from your corrections, and keeps goals and\n" +
		"achievements up to date.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dayline", "config.yaml")
	}
	return filepath.Join(home, ".dayline", "config.yaml")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoryCmd)
}
