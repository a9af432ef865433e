package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/internal/markdown"
	"github.com/amonks/tally/internal/ui"
	"github.com/amonks/tally/task"
)

// tally stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress and streak",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

// tally summary
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize completed tasks with a language model",
	Long: `Summarize completed tasks with a language model.

Needs OPENAI_API_KEY (or [assist] api-key in tally.toml). Without it, or
when the model can't be reached, a fixed fallback message is printed.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

const progressBarWidth = 20

func init() {
	rootCmd.AddCommand(statsCmd, summaryCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats()
	if err != nil {
		return err
	}
	if statsJSON {
		return encodeJSONToStdout(stats)
	}
	fmt.Print(formatStats(stats))
	return nil
}

func formatStats(stats task.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total:     %d\n", stats.Total)
	fmt.Fprintf(&b, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(&b, "Pending:   %d\n", stats.Pending)
	overdue := fmt.Sprintf("%d", stats.Overdue)
	if stats.Overdue > 0 {
		overdue = ui.Overdue(overdue)
	}
	fmt.Fprintf(&b, "Overdue:   %s\n", overdue)
	fmt.Fprintf(&b, "Progress:  %s\n", ui.ProgressBar(stats.Progress, progressBarWidth))
	fmt.Fprintf(&b, "Streak:    %s\n", formatStreak(stats.Streak))
	return b.String()
}

func formatStreak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	completed, err := a.store.List(task.ListOptions{Filter: task.FilterCompleted})
	if err != nil {
		return err
	}
	client, err := a.assistClient()
	if err != nil {
		return err
	}

	summary := client.Summarize(cmd.Context(), completed)
	fmt.Println(markdown.Wrap(summary, min(ui.TerminalWidth(taskDetailLineWidth), taskDetailLineWidth), 0))
	return nil
}
