package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/tally/task"
)

// FallbackSummary is returned when no summary can be generated.
const FallbackSummary = "Summary unavailable right now. Your completed tasks are still saved."

// NothingCompletedSummary is returned when there is nothing to summarize.
const NothingCompletedSummary = "No completed tasks yet."

const summarizePrompt = `You write a short, encouraging progress summary (at most four sentences)
for someone reviewing the tasks they finished. Mention themes, not every task.`

// maxSummaryTasks caps how many tasks are sent to the model.
const maxSummaryTasks = 50

// Summarize describes the completed tasks among tasks in a few sentences.
func (c *Client) Summarize(ctx context.Context, tasks []task.Task) string {
	completed := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		return NothingCompletedSummary
	}
	task.SortTasks(completed, task.SortCreatedDesc)
	if len(completed) > maxSummaryTasks {
		completed = completed[:maxSummaryTasks]
	}

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: summarizePrompt},
		{Role: "user", Content: describeTasks(completed)},
	}, false)
	if err != nil {
		c.logger.WithError(err).Warn("progress summary unavailable")
		return FallbackSummary
	}
	return content
}

func describeTasks(tasks []task.Task) string {
	var b strings.Builder
	b.WriteString("Completed tasks:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s [%s]", t.Title, t.Category)
		if t.CompletedAt != nil {
			fmt.Fprintf(&b, " on %s", t.CompletedAt.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
