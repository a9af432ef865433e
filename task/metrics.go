package task

import (
	"math"
	"time"
)

// IsOverdue reports whether the task is pending with a due date on a calendar
// day before now's. The due date's day is read in its own zone.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return civilDateOf(*t.DueDate).before(civilDateOf(now))
}

// Progress returns the rounded percentage of completed tasks, or 0 for none.
func Progress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(tasks))))
}

// Streak counts consecutive calendar days, ending today, on which at least
// one task was completed. Days are taken in now's location.
func Streak(tasks []Task, now time.Time) int {
	loc := now.Location()
	days := make(map[civilDate]struct{})
	for _, t := range tasks {
		if t.CompletedAt == nil {
			continue
		}
		days[civilDateOf(t.CompletedAt.In(loc))] = struct{}{}
	}

	streak := 0
	for cursor := dayOf(now, loc); ; cursor = cursor.AddDate(0, 0, -1) {
		if _, ok := days[civilDateOf(cursor)]; !ok {
			return streak
		}
		streak++
	}
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilDateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

func (d civilDate) before(other civilDate) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// dayOf returns midnight of t's calendar day in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Stats summarizes the whole task collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Progress  int `json:"progress"`
	Streak    int `json:"streak"`
}

// ComputeStats derives Stats from tasks at the given time.
func ComputeStats(tasks []Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	stats.Progress = Progress(tasks)
	stats.Streak = Streak(tasks, now)
	return stats
}

// Stats computes metrics over every stored task using the store clock.
func (s *Store) Stats() (Stats, error) {
	tasks, err := s.readTasks()
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(tasks, s.Now()), nil
}
