package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/pflag"

	"github.com/amonks/tally/task"
)

func TestParseTaskID(t *testing.T) {
	cases := map[string]int64{
		"1":     1,
		" 42 ":  42,
		"#7":    7,
		"00012": 12,
	}
	for input, want := range cases {
		got, err := parseTaskID(input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %d, got %d", input, want, got)
		}
	}

	for _, input := range []string{"", "abc", "0", "-3", "1.5"} {
		if _, err := parseTaskID(input); !errors.Is(err, task.ErrValidation) {
			t.Errorf("%q: expected validation error, got %v", input, err)
		}
	}
}

func TestParseTaskIDs_StopsAtFirstBadID(t *testing.T) {
	if _, err := parseTaskIDs([]string{"1", "x", "3"}); err == nil {
		t.Fatal("expected error")
	}
	ids, err := parseTaskIDs([]string{"3", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("expected [3 1], got %v", ids)
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{task.ErrEmptyTitle, 2},
		{fmt.Errorf("wrapped: %w", task.ErrInvalidPriority), 2},
		{fmt.Errorf("%w: 4", task.ErrNotFound), 3},
		{fmt.Errorf("%w: disk full", task.ErrStorage), 1},
		{errors.New("other"), 1},
	}
	for _, tc := range cases {
		if got := exitCodeFor(tc.err); got != tc.want {
			t.Errorf("exitCodeFor(%v) = %d, expected %d", tc.err, got, tc.want)
		}
	}
}

func TestShouldUseEditEditor(t *testing.T) {
	cases := []struct {
		name        string
		hasFlags    bool
		edit        bool
		noEdit      bool
		interactive bool
		want        bool
	}{
		{"edit flag wins", true, true, false, false, true},
		{"no-edit flag", false, false, true, true, false},
		{"flags skip editor", true, false, false, true, false},
		{"interactive default", false, false, false, true, true},
		{"non-interactive default", false, false, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldUseEditEditor(tc.hasFlags, tc.edit, tc.noEdit, tc.interactive); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestResolveDue(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	logger, hook := test.NewNullLogger()

	if got := resolveDue("  ", now, logger); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}

	got := resolveDue("2024-01-12", now, logger)
	want := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("expected no warnings")
	}

	if got := resolveDue("whenever it suits", now, logger); got != nil {
		t.Errorf("expected nil for unparseable input, got %v", got)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "ignoring due date" {
		t.Errorf("expected a warning for unparseable input")
	}
}

func TestResolveDescriptionFromStdin(t *testing.T) {
	got, err := resolveDescriptionFromStdin("-", strings.NewReader("from stdin\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from stdin" {
		t.Errorf("expected %q, got %q", "from stdin", got)
	}

	got, err = resolveDescriptionFromStdin("literal", strings.NewReader("ignored"))
	if err != nil || got != "literal" {
		t.Errorf("expected literal description, got %q, %v", got, err)
	}
}

func TestSetFlagAliases(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var filter task.Filter
	flags.Var(&filter, "filter", "")
	setFlagAliases(flags, listFlagAliases)

	if err := flags.Parse([]string{"--status", "completed"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filter != task.FilterCompleted {
		t.Errorf("expected alias to set filter, got %q", filter)
	}
}

func TestFormatTaskTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	doneAt := now.Add(-time.Hour)

	tasks := []task.Task{
		{ID: 1, Title: "Write report", Category: "Work", Priority: 2, DueDate: &yesterday, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 12, Title: "Gym", Category: "Health", Priority: 3, Completed: true, CompletedAt: &doneAt, CreatedAt: now.Add(-48 * time.Hour)},
	}

	output := formatTaskTable(tasks, now)
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[0], "ID  PRI  CATEGORY  STATUS     DUE") {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"P2", "Work", "overdue", "2024-01-09 (yesterday)", "2h ago", "Write report"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("expected %q in row %q", want, lines[1])
		}
	}
	for _, want := range []string{"12", "Health", "completed", "2d ago", "Gym"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("expected %q in row %q", want, lines[2])
		}
	}
}

func TestFormatTaskDetail(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)

	output := formatTaskDetail(task.Task{
		ID:        5,
		Title:     "Dentist",
		Category:  "Health",
		Priority:  1,
		DueDate:   &due,
		CreatedAt: now,
	}, now)

	for _, want := range []string{
		"ID:        5\n",
		"Priority:  urgent (1)\n",
		"Status:    pending\n",
		"Due:       2024-01-12 (in 2d)\n",
		"Created:   2024-01-10 09:00:00\n",
		"Open:      0s\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Completed:") || strings.Contains(output, "Description:") {
		t.Errorf("expected optional sections to be omitted:\n%s", output)
	}
}

func TestFormatTaskDetail_Completed(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	created := now.Add(-50 * time.Hour)
	completed := now.Add(-2 * time.Hour)

	output := formatTaskDetail(task.Task{
		ID:          6,
		Title:       "File taxes",
		Category:    "Finance",
		Priority:    3,
		Completed:   true,
		CompletedAt: &completed,
		CreatedAt:   created,
	}, now)

	for _, want := range []string{
		"Completed: 2024-01-10 07:00:00\n",
		"Took:      2d\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Open:") {
		t.Errorf("expected no open duration for completed task:\n%s", output)
	}
}

func TestFormatStats(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	output := formatStats(task.Stats{Total: 4, Completed: 2, Pending: 2, Overdue: 1, Progress: 50, Streak: 3})

	for _, want := range []string{
		"Total:     4\n",
		"Overdue:   1\n",
		"Progress:  [##########----------] 50%\n",
		"Streak:    3 days\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in:\n%s", want, output)
		}
	}
}

func TestFormatStreak(t *testing.T) {
	cases := map[int]string{0: "0 days", 1: "1 day", 5: "5 days"}
	for days, want := range cases {
		if got := formatStreak(days); got != want {
			t.Errorf("formatStreak(%d) = %q, expected %q", days, got, want)
		}
	}
}

func TestVersionString(t *testing.T) {
	if got := versionString(); got != "tally dev (commit unknown)" {
		t.Errorf("unexpected version %q", got)
	}
}
