package ui

import (
	"fmt"
	"time"
)

// FormatTimeAgo returns a compact age string like "2m ago".
func FormatTimeAgo(then time.Time, now time.Time) string {
	if then.IsZero() {
		return "-"
	}
	return FormatDurationShort(now.Sub(then)) + " ago"
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	duration = duration.Truncate(time.Second)
	seconds := int64(duration.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd", days)
}

// FormatDue describes a due date relative to now's calendar day, e.g.
// "2024-01-12 (in 2d)". A nil due date renders as "-".
func FormatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	local := due.In(now.Location())
	return local.Format("2006-01-02") + " (" + relativeDay(DaysBetween(now, local)) + ")"
}

// DaysBetween counts calendar days from a to b in a's location.
func DaysBetween(a, b time.Time) int {
	loc := a.Location()
	ay, am, ad := a.Date()
	by, bm, bd := b.In(loc).Date()
	start := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func relativeDay(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd ago", -days)
	}
}
