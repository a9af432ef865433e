package listflags

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/task"
)

func parse(t *testing.T, args ...string) (*Options, error) {
	t.Helper()

	cmd := &cobra.Command{Use: "list"}
	opts := &Options{}
	Add(cmd, opts)
	if err := cmd.ParseFlags(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func TestDefaults(t *testing.T) {
	opts, err := parse(t)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := opts.ListOptions()
	if err != nil {
		t.Fatalf("ListOptions: %v", err)
	}
	want := task.ListOptions{Filter: task.FilterAll, Sort: task.SortCreatedDesc}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFlags(t *testing.T) {
	opts, err := parse(t, "--filter", "Completed", "--sort", "due-date", "-c", "work", "-q", "report", "--overdue", "--json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := opts.ListOptions()
	if err != nil {
		t.Fatalf("ListOptions: %v", err)
	}
	want := task.ListOptions{
		Filter:      task.FilterCompleted,
		Sort:        task.SortDueDateAsc,
		Category:    "work",
		Query:       "report",
		OverdueOnly: true,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if !opts.JSON {
		t.Errorf("expected --json to be set")
	}
}

func TestShorthands(t *testing.T) {
	opts, err := parse(t, "--pending")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := opts.ListOptions()
	if err != nil || got.Filter != task.FilterPending {
		t.Errorf("expected pending filter, got %+v, %v", got, err)
	}

	opts = &Options{Pending: true, Completed: true}
	if _, err := opts.ListOptions(); !errors.Is(err, task.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestInvalidValues(t *testing.T) {
	if _, err := parse(t, "--filter", "done"); err == nil {
		t.Error("expected error for invalid filter")
	}
	if _, err := parse(t, "--sort", "alphabetical"); err == nil {
		t.Error("expected error for invalid sort")
	}
}
