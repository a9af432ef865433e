// Package listflags registers the task listing flags shared by commands.
package listflags

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/task"
)

// Options holds parsed listing flags.
type Options struct {
	Filter    task.Filter
	Sort      task.Sort
	Category  string
	Query     string
	Overdue   bool
	Pending   bool
	Completed bool
	JSON      bool
}

// Add registers the listing flags on cmd, writing into opts.
func Add(cmd *cobra.Command, opts *Options) {
	if opts.Filter == "" {
		opts.Filter = task.FilterAll
	}
	if opts.Sort == "" {
		opts.Sort = task.SortCreatedDesc
	}

	flags := cmd.Flags()
	flags.Var(&opts.Filter, "filter", "Filter by status (all, pending, completed)")
	flags.Var(&opts.Sort, "sort", "Sort order (created-desc, created-asc, due, priority)")
	flags.StringVarP(&opts.Category, "category", "c", "", "Only tasks in this category")
	flags.StringVarP(&opts.Query, "query", "q", "", "Only tasks whose title or description contains this text")
	flags.BoolVar(&opts.Overdue, "overdue", false, "Only overdue tasks")
	flags.BoolVar(&opts.Pending, "pending", false, "Shorthand for --filter pending")
	flags.BoolVar(&opts.Completed, "completed", false, "Shorthand for --filter completed")
	flags.BoolVar(&opts.JSON, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("filter", "pending", "completed")
}

// ListOptions converts the flags into a store query.
func (opts *Options) ListOptions() (task.ListOptions, error) {
	filter := opts.Filter
	switch {
	case opts.Pending && opts.Completed:
		return task.ListOptions{}, fmt.Errorf("%w: --pending and --completed are exclusive", task.ErrInvalidFilter)
	case opts.Pending:
		filter = task.FilterPending
	case opts.Completed:
		filter = task.FilterCompleted
	}

	return task.ListOptions{
		Filter:      filter,
		Sort:        opts.Sort,
		Category:    opts.Category,
		Query:       opts.Query,
		OverdueOnly: opts.Overdue,
	}, nil
}
