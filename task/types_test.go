package task

import (
	"errors"
	"testing"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		input string
		want  int
		err   bool
	}{
		{input: "1", want: 1},
		{input: " 5 ", want: 5},
		{input: "urgent", want: PriorityUrgent},
		{input: "High", want: PriorityHigh},
		{input: "MEDIUM", want: PriorityMedium},
		{input: "low", want: PriorityLow},
		{input: "someday", want: PrioritySomeday},
		{input: "0", err: true},
		{input: "6", err: true},
		{input: "critical", err: true},
		{input: "", err: true},
	}

	for _, tc := range cases {
		got, err := ParsePriority(tc.input)
		if tc.err {
			if !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("%q: expected ErrInvalidPriority, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.input, tc.want, got)
		}
	}
}

func TestPriorityName(t *testing.T) {
	for p := PriorityMin; p <= PriorityMax; p++ {
		if PriorityName(p) == "unknown" {
			t.Errorf("expected a name for priority %d", p)
		}
	}
	if got := PriorityName(0); got != "unknown" {
		t.Errorf("expected 'unknown', got %q", got)
	}
}

func TestParseFilter(t *testing.T) {
	cases := map[string]Filter{
		"":          FilterAll,
		"all":       FilterAll,
		"Pending":   FilterPending,
		"completed": FilterCompleted,
	}
	for input, want := range cases {
		got, err := ParseFilter(input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %q, got %q", input, want, got)
		}
	}

	if _, err := ParseFilter("open"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestParseSort(t *testing.T) {
	cases := map[string]Sort{
		"":             SortCreatedDesc,
		"created-desc": SortCreatedDesc,
		"newest":       SortCreatedDesc,
		"created-asc":  SortCreatedAsc,
		"oldest":       SortCreatedAsc,
		"due":          SortDueDateAsc,
		"due-date":     SortDueDateAsc,
		"Priority":     SortPriorityAsc,
	}
	for input, want := range cases {
		got, err := ParseSort(input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %q, got %q", input, want, got)
		}
	}

	if _, err := ParseSort("title"); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("expected ErrInvalidSort, got %v", err)
	}
}

func TestFilterFlagValue(t *testing.T) {
	var f Filter
	if f.String() != "all" {
		t.Errorf("expected zero filter to print 'all', got %q", f.String())
	}
	if err := f.Set("pending"); err != nil {
		t.Fatalf("failed to set filter: %v", err)
	}
	if f != FilterPending {
		t.Errorf("expected pending, got %q", f)
	}
	if err := f.Set("nope"); err == nil {
		t.Errorf("expected error for invalid filter")
	}
}

func TestSortFlagValue(t *testing.T) {
	var s Sort
	if s.String() != "created-desc" {
		t.Errorf("expected zero sort to print 'created-desc', got %q", s.String())
	}
	if err := s.Set("due"); err != nil {
		t.Fatalf("failed to set sort: %v", err)
	}
	if s != SortDueDateAsc {
		t.Errorf("expected due, got %q", s)
	}
}
