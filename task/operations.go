package task

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	internalstrings "github.com/amonks/tally/internal/strings"
	"github.com/amonks/tally/internal/validation"
)

// CreateOptions configures a new task.
type CreateOptions struct {
	// Description provides additional context.
	Description string

	// Category is a known label. Empty or CategoryAuto infers it from the text.
	Category string

	// Priority is the urgency level (1-5). Defaults to PriorityMedium (3) when nil.
	Priority *int

	// DueDate is an optional deadline.
	DueDate *time.Time
}

// Create creates a new pending task with the given title.
func (s *Store) Create(title string, opts CreateOptions) (*Task, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}

	priority := PriorityMedium
	if opts.Priority != nil {
		if err := ValidatePriority(*opts.Priority); err != nil {
			return nil, err
		}
		priority = *opts.Priority
	}

	description := strings.TrimSpace(opts.Description)
	category, err := resolveCategory(s.rules, opts.Category, title, description)
	if err != nil {
		return nil, err
	}

	t := Task{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		DueDate:     copyTime(opts.DueDate),
		CreatedAt:   s.Now(),
	}

	err = s.withTx("create task", func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"INSERT INTO tasks (title, description, category, priority, due_date, completed, created_at, completed_at) VALUES (?, ?, ?, ?, ?, 0, ?, NULL)",
			t.Title, nullString(t.Description), t.Category, t.Priority, formatNullTime(t.DueDate), formatTime(t.CreatedAt),
		)
		if err != nil {
			return storageError("insert task", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return storageError("insert task", err)
		}
		t.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(id int64) (*Task, error) {
	return getTask(s.db, id)
}

// UpdateOptions configures fields to update on a task.
// Nil pointers mean "don't update this field".
type UpdateOptions struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *int
	DueDate     *time.Time
	Completed   *bool
	CompletedAt *time.Time

	// ClearDueDate removes the due date.
	ClearDueDate bool

	// ID and CreatedAt are immutable; setting either fails with ErrImmutableField.
	ID        *int64
	CreatedAt *time.Time
}

// column is a writable column of the tasks table.
type column string

const (
	columnTitle       column = "title"
	columnDescription column = "description"
	columnCategory    column = "category"
	columnPriority    column = "priority"
	columnDueDate     column = "due_date"
	columnCompleted   column = "completed"
	columnCompletedAt column = "completed_at"
)

type assignment struct {
	column column
	value  any
}

// Update applies the supplied fields to the task with the given ID and
// returns the result. Nothing is written when the task doesn't exist or the
// update is invalid.
func (s *Store) Update(id int64, opts UpdateOptions) (*Task, error) {
	if opts.ID != nil {
		return nil, fmt.Errorf("%w: id", ErrImmutableField)
	}
	if opts.CreatedAt != nil {
		return nil, fmt.Errorf("%w: created_at", ErrImmutableField)
	}
	if opts.DueDate != nil && opts.ClearDueDate {
		return nil, fmt.Errorf("%w: due_date cannot be both set and cleared", ErrValidation)
	}

	var updated Task
	err := s.withTx("update task", func(tx *sql.Tx) error {
		current, err := getTask(tx, id)
		if err != nil {
			return err
		}

		next, changes, err := s.applyUpdate(*current, opts)
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			query, args := updateStatement(id, changes)
			if _, err := tx.Exec(query, args...); err != nil {
				return storageError("update task", err)
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) applyUpdate(t Task, opts UpdateOptions) (Task, []assignment, error) {
	var changes []assignment

	if opts.Title != nil {
		title := strings.TrimSpace(*opts.Title)
		if err := ValidateTitle(title); err != nil {
			return t, nil, err
		}
		t.Title = title
		changes = append(changes, assignment{columnTitle, title})
	}
	if opts.Description != nil {
		t.Description = strings.TrimSpace(*opts.Description)
		changes = append(changes, assignment{columnDescription, nullString(t.Description)})
	}
	if opts.Priority != nil {
		if err := ValidatePriority(*opts.Priority); err != nil {
			return t, nil, err
		}
		t.Priority = *opts.Priority
		changes = append(changes, assignment{columnPriority, t.Priority})
	}
	if opts.Category != nil {
		category, err := resolveCategory(s.rules, *opts.Category, t.Title, t.Description)
		if err != nil {
			return t, nil, err
		}
		t.Category = category
		changes = append(changes, assignment{columnCategory, category})
	}
	switch {
	case opts.ClearDueDate:
		t.DueDate = nil
		changes = append(changes, assignment{columnDueDate, nil})
	case opts.DueDate != nil:
		t.DueDate = copyTime(opts.DueDate)
		changes = append(changes, assignment{columnDueDate, formatNullTime(t.DueDate)})
	}

	completed := t.Completed
	if opts.Completed != nil {
		completed = *opts.Completed
	}
	switch {
	case completed && !t.Completed:
		at := s.Now()
		if opts.CompletedAt != nil {
			at = opts.CompletedAt.Round(0)
		}
		t.Completed = true
		t.CompletedAt = &at
		changes = append(changes,
			assignment{columnCompleted, true},
			assignment{columnCompletedAt, formatTime(at)},
		)
	case !completed && t.Completed:
		if opts.CompletedAt != nil {
			return t, nil, ErrCompletedAtWithoutCompletion
		}
		t.Completed = false
		t.CompletedAt = nil
		changes = append(changes,
			assignment{columnCompleted, false},
			assignment{columnCompletedAt, nil},
		)
	case completed:
		if opts.CompletedAt != nil {
			t.CompletedAt = copyTime(opts.CompletedAt)
			changes = append(changes, assignment{columnCompletedAt, formatNullTime(t.CompletedAt)})
		}
	default:
		if opts.CompletedAt != nil {
			return t, nil, ErrCompletedAtWithoutCompletion
		}
	}

	if err := ValidateTask(&t); err != nil {
		return t, nil, err
	}
	return t, changes, nil
}

func updateStatement(id int64, changes []assignment) (string, []any) {
	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, change := range changes {
		sets = append(sets, string(change.column)+" = ?")
		args = append(args, change.value)
	}
	args = append(args, id)
	return "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?", args
}

// Complete marks a task as completed. Completing a completed task keeps its
// original completed_at.
func (s *Store) Complete(id int64) (*Task, error) {
	return s.Update(id, UpdateOptions{Completed: BoolPtr(true)})
}

// Reopen marks a task as pending and clears completed_at.
func (s *Store) Reopen(id int64) (*Task, error) {
	return s.Update(id, UpdateOptions{Completed: BoolPtr(false)})
}

// Delete permanently removes the task with the given ID.
func (s *Store) Delete(id int64) error {
	return s.withTx("delete task", func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return storageError("delete task", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return storageError("delete task", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil
	})
}

// ListOptions configures a task listing.
type ListOptions struct {
	// Filter selects by completion state. Defaults to FilterAll.
	Filter Filter

	// Sort orders the result. Defaults to SortCreatedDesc.
	Sort Sort

	// Category keeps tasks in this category (case-insensitive).
	Category string

	// Query keeps tasks whose title or description contains it (case-insensitive).
	Query string

	// OverdueOnly keeps overdue tasks.
	OverdueOnly bool
}

// List returns the tasks matching opts in the requested order.
func (s *Store) List(opts ListOptions) ([]Task, error) {
	filter := opts.Filter
	if filter == "" {
		filter = FilterAll
	}
	if !filter.IsValid() {
		return nil, validation.FormatInvalidValueError(ErrInvalidFilter, filter, ValidFilters())
	}
	sortBy := opts.Sort
	if sortBy == "" {
		sortBy = SortCreatedDesc
	}
	if !sortBy.IsValid() {
		return nil, validation.FormatInvalidValueError(ErrInvalidSort, sortBy, ValidSorts())
	}

	tasks, err := s.readTasks()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	category := strings.TrimSpace(opts.Category)
	query := internalstrings.NormalizeLowerTrimSpace(opts.Query)

	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		if opts.OverdueOnly && !t.IsOverdue(now) {
			continue
		}
		filtered = append(filtered, t)
	}

	SortTasks(filtered, sortBy)
	return filtered, nil
}

// SortTasks orders tasks in place.
//
// Created sorts break ties by ID. SortDueDateAsc puts tasks without a due date
// last and breaks ties by ID. SortPriorityAsc breaks ties by creation time.
func SortTasks(tasks []Task, by Sort) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(by, tasks[i], tasks[j])
	})
}

func taskLess(by Sort, a, b Task) bool {
	switch by {
	case SortCreatedAsc:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	case SortDueDateAsc:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.ID < b.ID
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	case SortPriorityAsc:
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
}

// BoolPtr returns a pointer to the provided bool.
func BoolPtr(value bool) *bool {
	return &value
}

// StringPtr returns a pointer to the provided string.
func StringPtr(value string) *string {
	return &value
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.Round(0)
	return &c
}
