package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decodeFields(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		t.Fatalf("failed to decode fields: %v", err)
	}
	return fields
}

func TestParseFields(t *testing.T) {
	opts, err := ParseFields(decodeFields(t, `{
		"title": "New title",
		"description": null,
		"priority": 2,
		"due_date": "2024-02-01T10:00:00Z",
		"completed": true,
		"completed_at": "2024-01-09T08:00:00Z"
	}`))
	if err != nil {
		t.Fatalf("failed to parse fields: %v", err)
	}

	if opts.Title == nil || *opts.Title != "New title" {
		t.Errorf("expected title, got %v", opts.Title)
	}
	if opts.Description == nil || *opts.Description != "" {
		t.Errorf("expected null description to empty it, got %v", opts.Description)
	}
	if opts.Priority == nil || *opts.Priority != 2 {
		t.Errorf("expected priority 2, got %v", opts.Priority)
	}
	wantDue := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	if opts.DueDate == nil || !opts.DueDate.Equal(wantDue) {
		t.Errorf("expected due %v, got %v", wantDue, opts.DueDate)
	}
	if opts.Completed == nil || !*opts.Completed {
		t.Errorf("expected completed true, got %v", opts.Completed)
	}
	if opts.CompletedAt == nil {
		t.Errorf("expected completed_at")
	}
	if opts.Category != nil {
		t.Errorf("expected category to be untouched, got %q", *opts.Category)
	}
}

func TestParseFields_NullDueDateClears(t *testing.T) {
	opts, err := ParseFields(decodeFields(t, `{"due_date": null, "category": null}`))
	if err != nil {
		t.Fatalf("failed to parse fields: %v", err)
	}
	if !opts.ClearDueDate || opts.DueDate != nil {
		t.Errorf("expected due date to be cleared, got %+v", opts)
	}
	if opts.Category == nil || *opts.Category != CategoryAuto {
		t.Errorf("expected null category to re-infer, got %v", opts.Category)
	}
}

func TestParseFields_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "id", body: `{"id": 4}`, want: ErrImmutableField},
		{name: "created_at", body: `{"created_at": "2024-01-01T00:00:00Z"}`, want: ErrImmutableField},
		{name: "unknown", body: `{"status": "done"}`, want: ErrUnknownField},
		{name: "sql in key", body: `{"title = 'x'; --": "y"}`, want: ErrUnknownField},
		{name: "null title", body: `{"title": null}`, want: ErrEmptyTitle},
		{name: "bad priority type", body: `{"priority": "high"}`, want: ErrValidation},
		{name: "bad date", body: `{"due_date": "tomorrow"}`, want: ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFields(decodeFields(t, tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStore_UpdateWithParsedFields(t *testing.T) {
	store, _ := openTestStore(t)

	due := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	created := mustCreate(t, store, "Read chapter", CreateOptions{DueDate: &due})

	opts, err := ParseFields(decodeFields(t, `{"due_date": null, "priority": 1}`))
	if err != nil {
		t.Fatalf("failed to parse fields: %v", err)
	}
	updated, err := store.Update(created.ID, opts)
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", updated.DueDate)
	}
	if updated.Priority != 1 {
		t.Errorf("expected priority 1, got %d", updated.Priority)
	}
}
