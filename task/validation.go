package task

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrValidation is the root of every input validation failure.
	ErrValidation = errors.New("invalid task")

	// ErrNotFound is returned when a task with the given ID doesn't exist.
	ErrNotFound = errors.New("task not found")

	// ErrStorage wraps failures of the underlying database.
	ErrStorage = errors.New("task storage failure")
)

var (
	// ErrEmptyTitle is returned when a task title is blank.
	ErrEmptyTitle = fmt.Errorf("%w: title cannot be empty", ErrValidation)

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = fmt.Errorf("%w: title exceeds maximum length", ErrValidation)

	// ErrInvalidPriority is returned when priority is outside the valid range.
	ErrInvalidPriority = fmt.Errorf("%w: priority must be between 1 and 5", ErrValidation)

	// ErrInvalidCategory is returned when a category is not a known label.
	ErrInvalidCategory = fmt.Errorf("%w: unknown category", ErrValidation)

	// ErrImmutableField is returned when an update targets id or created_at.
	ErrImmutableField = fmt.Errorf("%w: field cannot be changed", ErrValidation)

	// ErrUnknownField is returned when an update names a field the store doesn't have.
	ErrUnknownField = fmt.Errorf("%w: unknown field", ErrValidation)

	// ErrCompletedAtWithoutCompletion is returned when completed_at is set on a pending task.
	ErrCompletedAtWithoutCompletion = fmt.Errorf("%w: pending task cannot have completed_at", ErrValidation)

	// ErrInvalidFilter is returned for an unknown list filter.
	ErrInvalidFilter = fmt.Errorf("%w: invalid filter", ErrValidation)

	// ErrInvalidSort is returned for an unknown list sort.
	ErrInvalidSort = fmt.Errorf("%w: invalid sort", ErrValidation)

	// ErrInvalidCategoryRules is returned for a keyword table with unusable names.
	ErrInvalidCategoryRules = fmt.Errorf("%w: invalid category rules", ErrValidation)
)

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, n, MaxTitleLength)
	}
	return nil
}

// ValidatePriority checks if the priority is valid.
func ValidatePriority(priority int) error {
	if priority < PriorityMin || priority > PriorityMax {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, priority)
	}
	return nil
}

// ValidateTask checks the consistency of a fully populated task.
func ValidateTask(t *Task) error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	if t.Category == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	if !t.Completed && t.CompletedAt != nil {
		return ErrCompletedAtWithoutCompletion
	}
	if t.Completed && t.CompletedAt == nil {
		return fmt.Errorf("%w: completed task must have completed_at", ErrValidation)
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
