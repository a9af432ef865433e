package task

import (
	"fmt"
	"strconv"

	internalstrings "github.com/amonks/tally/internal/strings"
	"github.com/amonks/tally/internal/validation"
)

// Priority constants for tasks.
const (
	PriorityUrgent  = 1
	PriorityHigh    = 2
	PriorityMedium  = 3 // default
	PriorityLow     = 4
	PrioritySomeday = 5

	PriorityMin = 1
	PriorityMax = 5
)

// PriorityName returns a human-readable name for the priority level.
func PriorityName(p int) string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PrioritySomeday:
		return "someday"
	default:
		return "unknown"
	}
}

// ParsePriority accepts a priority number or name, case-insensitively.
func ParsePriority(value string) (int, error) {
	value = internalstrings.NormalizeLowerTrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if err := ValidatePriority(n); err != nil {
			return 0, err
		}
		return n, nil
	}
	for p := PriorityMin; p <= PriorityMax; p++ {
		if PriorityName(p) == value {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: got %q", ErrInvalidPriority, value)
}

// PriorityPtr returns a pointer to the provided priority.
func PriorityPtr(priority int) *int {
	return &priority
}

// MaxTitleLength is the maximum allowed length for a task title.
const MaxTitleLength = 500

// Filter selects tasks by completion state.
type Filter string

const (
	// FilterAll selects every task (default).
	FilterAll Filter = "all"

	// FilterPending selects tasks that are not completed.
	FilterPending Filter = "pending"

	// FilterCompleted selects completed tasks.
	FilterCompleted Filter = "completed"
)

// ValidFilters returns all valid filter values.
func ValidFilters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterCompleted}
}

// IsValid returns true if the filter is a known valid value.
func (f Filter) IsValid() bool {
	for _, valid := range ValidFilters() {
		if f == valid {
			return true
		}
	}
	return false
}

// Matches reports whether the task passes the filter.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// ParseFilter converts user input into a Filter. Empty input yields FilterAll.
func ParseFilter(value string) (Filter, error) {
	value = internalstrings.NormalizeLowerTrimSpace(value)
	if value == "" {
		return FilterAll, nil
	}
	f := Filter(value)
	if !f.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidFilter, f, ValidFilters())
	}
	return f, nil
}

// String implements pflag.Value.
func (f *Filter) String() string {
	if f == nil || *f == "" {
		return string(FilterAll)
	}
	return string(*f)
}

// Set implements pflag.Value.
func (f *Filter) Set(value string) error {
	parsed, err := ParseFilter(value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Filter) Type() string {
	return "filter"
}

// Sort orders a task listing.
type Sort string

const (
	// SortCreatedDesc orders newest first (default).
	SortCreatedDesc Sort = "created-desc"

	// SortCreatedAsc orders oldest first.
	SortCreatedAsc Sort = "created-asc"

	// SortDueDateAsc orders by due date with unscheduled tasks last.
	SortDueDateAsc Sort = "due"

	// SortPriorityAsc orders urgent tasks first.
	SortPriorityAsc Sort = "priority"
)

// ValidSorts returns all valid sort values.
func ValidSorts() []Sort {
	return []Sort{SortCreatedDesc, SortCreatedAsc, SortDueDateAsc, SortPriorityAsc}
}

// IsValid returns true if the sort is a known valid value.
func (s Sort) IsValid() bool {
	for _, valid := range ValidSorts() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseSort converts user input into a Sort. Empty input yields SortCreatedDesc.
func ParseSort(value string) (Sort, error) {
	value = internalstrings.NormalizeLowerTrimSpace(value)
	switch value {
	case "":
		return SortCreatedDesc, nil
	case "created", "newest":
		return SortCreatedDesc, nil
	case "oldest":
		return SortCreatedAsc, nil
	case "due-date", "due_date":
		return SortDueDateAsc, nil
	}
	s := Sort(value)
	if !s.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidSort, s, ValidSorts())
	}
	return s, nil
}

// String implements pflag.Value.
func (s *Sort) String() string {
	if s == nil || *s == "" {
		return string(SortCreatedDesc)
	}
	return string(*s)
}

// Set implements pflag.Value.
func (s *Sort) Set(value string) error {
	parsed, err := ParseSort(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Sort) Type() string {
	return "sort"
}
