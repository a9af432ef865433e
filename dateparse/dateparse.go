// Package dateparse turns user-entered due dates into timestamps.
//
// Explicit layouts are tried first; anything else goes through natural
// language parsing that resolves ambiguous phrases ("friday", "march 3")
// to the next matching moment after the reference time.
package dateparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

// ErrUnparseable is returned when text isn't recognized as a date.
var ErrUnparseable = errors.New("unrecognized date")

// Layouts are the explicit formats accepted before natural language parsing.
var Layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
}

// Parse interprets text relative to ref. It returns ErrUnparseable when text
// has no date in it; callers treat that as "no due date".
func Parse(text string, ref time.Time) (*time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnparseable)
	}

	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, text, ref.Location()); err == nil {
			return &t, nil
		}
	}

	t, err := naturaldate.Parse(text, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnparseable, text, err)
	}
	// The parser hands back the reference time for input it skipped entirely.
	if t.Equal(ref) && !refersToNow(text) {
		return nil, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	t = t.Round(0)
	return &t, nil
}

func refersToNow(text string) bool {
	switch strings.ToLower(text) {
	case "now", "right now", "today":
		return true
	}
	return false
}
