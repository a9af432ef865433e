package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/internal/listflags"
	"github.com/amonks/tally/internal/ui"
	"github.com/amonks/tally/task"
)

// tally list
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var listOpts listflags.Options

func init() {
	rootCmd.AddCommand(listCmd)

	listflags.Add(listCmd, &listOpts)
	setFlagAliases(listCmd.Flags(), listFlagAliases)
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := listOpts.ListOptions()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.store.List(opts)
	if err != nil {
		return err
	}

	if listOpts.JSON {
		return encodeJSONToStdout(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	fmt.Print(formatTaskTable(tasks, a.store.Now()))
	return nil
}

func formatTaskTable(tasks []task.Task, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "PRI", "CATEGORY", "STATUS", "DUE", "AGE", "TITLE"}, len(tasks))
	for _, t := range tasks {
		title := ui.TruncateCell(t.Title)
		if t.Completed {
			title = ui.Done(title)
		}
		builder.AddRow(
			ui.ID(t.ID),
			priorityShort(t.Priority),
			t.Category,
			formatStatus(t, now),
			formatDueCell(t, now),
			ui.FormatTimeAgo(t.CreatedAt, now),
			title,
		)
	}
	return builder.String()
}

// priorityShort returns a short representation of priority.
func priorityShort(p int) string {
	return "P" + strconv.Itoa(p)
}
