// Package main implements the tally CLI tool.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/task"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:          "tally",
	Short:        "Tally - a small personal task tracker",
	SilenceUsage: true,
}

var (
	rootDBPath     string
	rootConfigPath string
	rootLogLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "Task database path (default ~/.local/share/tally/tasks.db)")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Config file to use instead of ./tally.toml")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// exitCodeFor distinguishes bad input and missing tasks from other failures.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, task.ErrValidation):
		return 2
	case errors.Is(err, task.ErrNotFound):
		return 3
	default:
		return 1
	}
}
