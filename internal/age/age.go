// Package age measures how long tasks stay open.
package age

import "time"

// Open returns how long a task has been open: from createdAt until
// completedAt when it is set, otherwise until now. Spans that would be
// negative clamp to zero. ok is false when createdAt is unknown.
func Open(createdAt time.Time, completedAt *time.Time, now time.Time) (time.Duration, bool) {
	if createdAt.IsZero() {
		return 0, false
	}

	end := now
	if completedAt != nil && !completedAt.IsZero() {
		end = *completedAt
	}
	if end.Before(createdAt) {
		return 0, true
	}
	return end.Sub(createdAt), true
}
