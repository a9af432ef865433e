package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/tally/internal/age"
	"github.com/amonks/tally/internal/markdown"
	"github.com/amonks/tally/internal/ui"
	"github.com/amonks/tally/task"
)

const taskDetailLineWidth = 80

// formatTaskDetail renders every field of a task.
func formatTaskDetail(t task.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:        %s\n", ui.ID(t.ID))
	fmt.Fprintf(&b, "Title:     %s\n", t.Title)
	fmt.Fprintf(&b, "Category:  %s\n", t.Category)
	fmt.Fprintf(&b, "Priority:  %s (%d)\n", task.PriorityName(t.Priority), t.Priority)
	fmt.Fprintf(&b, "Status:    %s\n", formatStatus(t, now))
	fmt.Fprintf(&b, "Due:       %s\n", formatDueCell(t, now))
	fmt.Fprintf(&b, "Created:   %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))

	if t.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if open, ok := age.Open(t.CreatedAt, t.CompletedAt, now); ok {
		label := "Open:"
		if t.CompletedAt != nil {
			label = "Took:"
		}
		fmt.Fprintf(&b, "%-11s%s\n", label, ui.FormatDurationShort(open))
	}

	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", ui.Heading("Description:"), formatTaskDescription(t.Description))
	}
	return b.String()
}

func formatTaskDescription(value string) string {
	rendered := markdown.SafeRender(taskDetailLineWidth, 2, []byte(value))
	if len(rendered) == 0 {
		return "-"
	}
	return string(rendered)
}

func formatStatus(t task.Task, now time.Time) string {
	switch {
	case t.Completed:
		return ui.Done(t.StatusName())
	case t.IsOverdue(now):
		return ui.Overdue("overdue")
	default:
		return t.StatusName()
	}
}

func formatDueCell(t task.Task, now time.Time) string {
	due := ui.FormatDue(t.DueDate, now)
	if t.IsOverdue(now) {
		return ui.Overdue(due)
	}
	return due
}
