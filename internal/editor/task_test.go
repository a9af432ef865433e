package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amonks/tally/task"
)

func TestRenderTaskTOML_Create(t *testing.T) {
	data := DefaultCreateData(task.DefaultCategoryRules)
	content, err := RenderTaskTOML(data)
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	if !strings.Contains(content, `title = ""`) {
		t.Error("expected empty title")
	}
	if !strings.Contains(content, `category = "Auto"`) {
		t.Error("expected default category 'Auto'")
	}
	if !strings.Contains(content, "Work, Study, Health, Personal, Other") {
		t.Error("expected category list in comment")
	}
	if !strings.Contains(content, "priority = 3") {
		t.Error("expected default priority 3")
	}
	if !strings.Contains(content, "---") {
		t.Error("expected frontmatter separator")
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "completed = ") {
			t.Error("completed should not be present for create")
		}
	}
}

func TestRenderTaskTOML_Update(t *testing.T) {
	due := time.Date(2024, 1, 12, 17, 0, 0, 0, time.UTC)
	existing := &task.Task{
		ID:          7,
		Title:       `Say "hi"`,
		Category:    "Work",
		Priority:    task.PriorityHigh,
		DueDate:     &due,
		Completed:   true,
		Description: "A test description",
	}

	content, err := RenderTaskTOML(DataFromTask(existing, task.DefaultCategoryRules))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	for _, want := range []string{
		`title = "Say \"hi\""`,
		`category = "Work"`,
		"priority = 2",
		`due = "2024-01-12 17:00"`,
		"completed = true",
		"---\nA test description",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in rendered template:\n%s", want, content)
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	existing := &task.Task{
		ID:          3,
		Title:       "Write report",
		Category:    "Study",
		Priority:    task.PriorityLow,
		Description: "Line one\n\nLine two",
	}

	content, err := RenderTaskTOML(DataFromTask(existing, task.DefaultCategoryRules))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}
	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}

	if parsed.Title != existing.Title || parsed.Category != "Study" || parsed.Priority != task.PriorityLow {
		t.Errorf("unexpected parse result %+v", parsed)
	}
	if parsed.Description != existing.Description {
		t.Errorf("description = %q, expected %q", parsed.Description, existing.Description)
	}
	if parsed.Due != "" {
		t.Errorf("due = %q, expected empty", parsed.Due)
	}
	if parsed.Completed == nil || *parsed.Completed {
		t.Errorf("expected completed = false, got %v", parsed.Completed)
	}
}

func TestParseTaskTOML(t *testing.T) {
	content := `title = "  Buy milk  "
category = "Personal"
priority = 1
due = "tomorrow 5pm"
---

Semi-skimmed.
`
	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Title != "Buy milk" {
		t.Errorf("title = %q", parsed.Title)
	}
	if parsed.Due != "tomorrow 5pm" {
		t.Errorf("due = %q", parsed.Due)
	}
	if parsed.Description != "Semi-skimmed." {
		t.Errorf("description = %q", parsed.Description)
	}
	if parsed.Completed != nil {
		t.Errorf("expected completed to be unset")
	}
}

func TestParseTaskTOML_NoSeparator(t *testing.T) {
	parsed, err := ParseTaskTOML(`title = "Only frontmatter"`)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Priority != task.PriorityMedium {
		t.Errorf("priority = %d, expected default", parsed.Priority)
	}
	if parsed.Description != "" {
		t.Errorf("description = %q, expected empty", parsed.Description)
	}
}

func TestParseTaskTOML_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"empty title", "title = \"   \"\n---\n", task.ErrEmptyTitle},
		{"bad priority", "title = \"x\"\npriority = 9\n---\n", task.ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTaskTOML(tc.content)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := ParseTaskTOML("title = \n---\n"); err == nil {
		t.Error("expected TOML syntax error")
	}
}

func TestToCreateOptions(t *testing.T) {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	parsed := &ParsedTask{Title: "x", Category: "Auto", Priority: 2, Due: "feb 1", Description: "d"}

	opts := parsed.ToCreateOptions(&due)
	if opts.Category != "Auto" || opts.Description != "d" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Priority == nil || *opts.Priority != 2 {
		t.Errorf("priority = %v", opts.Priority)
	}
	if opts.DueDate == nil || !opts.DueDate.Equal(due) {
		t.Errorf("due = %v", opts.DueDate)
	}
}

func TestToUpdateOptions_DueHandling(t *testing.T) {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	cleared := (&ParsedTask{Title: "x", Priority: 3}).ToUpdateOptions(nil)
	if !cleared.ClearDueDate || cleared.DueDate != nil {
		t.Errorf("expected empty due to clear, got %+v", cleared)
	}
	if cleared.Category != nil {
		t.Errorf("expected empty category to be left alone")
	}

	set := (&ParsedTask{Title: "x", Priority: 3, Due: "feb 1"}).ToUpdateOptions(&due)
	if set.ClearDueDate || set.DueDate == nil || !set.DueDate.Equal(due) {
		t.Errorf("expected due to be set, got %+v", set)
	}

	kept := (&ParsedTask{Title: "x", Priority: 3, Due: "someday maybe"}).ToUpdateOptions(nil)
	if kept.ClearDueDate || kept.DueDate != nil {
		t.Errorf("expected unresolved due to be left alone, got %+v", kept)
	}
}
