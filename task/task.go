// Package task implements a single-user task tracker backed by SQLite.
//
// Tasks live in one "tasks" table. The store is constructed explicitly with
// Open and owned by its caller; every mutation runs in its own transaction.
//
// The public API mirrors the CLI commands:
//   - Create, Update, Complete, Reopen, Delete for the task lifecycle
//   - Get, List for querying
//   - Stats, Progress, Streak for derived metrics
package task

import "time"

// Task represents a single trackable to-do item.
type Task struct {
	// ID is assigned by the store, increases monotonically, and is never reused.
	ID int64 `json:"id"`

	// Title is the short summary of the task (max 500 chars).
	Title string `json:"title"`

	// Description provides additional context about the task.
	Description string `json:"description,omitempty"`

	// Category is one of the configured category labels or CategoryOther.
	Category string `json:"category"`

	// Priority is the urgency level (1=urgent, 5=someday).
	Priority int `json:"priority"`

	// DueDate is when the task should be finished (nil if unscheduled).
	DueDate *time.Time `json:"due_date,omitempty"`

	// Completed reports whether the task is done.
	Completed bool `json:"completed"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the task was completed (nil while pending).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StatusName returns "completed" or "pending".
func (t Task) StatusName() string {
	if t.Completed {
		return "completed"
	}
	return "pending"
}
