package ui

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Faint(true)
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	barFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	barEmptyStyle = lipgloss.NewStyle().Faint(true)
)

// ColorEnabled reports whether stdout should receive ANSI styling.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, value string) string {
	if value == "" || !ColorEnabled() {
		return value
	}
	return style.Render(value)
}

// Overdue highlights text for an overdue task.
func Overdue(value string) string { return render(overdueStyle, value) }

// Done dims text for a completed task.
func Done(value string) string { return render(doneStyle, value) }

// ID highlights a task ID.
func ID(id int64) string { return render(idStyle, fmt.Sprintf("%d", id)) }

// Heading emphasizes a section title.
func Heading(value string) string { return render(headingStyle, value) }

// ProgressBar draws percent (0-100) as a bar width cells wide, followed by
// the percentage.
func ProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	if width < 1 {
		width = 1
	}
	filled := int(math.Round(float64(width) * float64(percent) / 100))
	bar := render(barFullStyle, strings.Repeat("#", filled)) +
		render(barEmptyStyle, strings.Repeat("-", width-filled))
	return fmt.Sprintf("[%s] %d%%", bar, percent)
}

// TerminalWidth returns the stdout width, or fallback when it isn't a terminal.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
