package task

import (
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func openTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()

	clock := newTestClock()
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"), OpenOptions{Now: clock.Now})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store, clock
}

func mustCreate(t *testing.T, store *Store, title string, opts CreateOptions) *Task {
	t.Helper()

	created, err := store.Create(title, opts)
	if err != nil {
		t.Fatalf("failed to create task %q: %v", title, err)
	}
	return created
}

func taskIDs(tasks []Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func timePtr(t time.Time) *time.Time {
	return &t
}
