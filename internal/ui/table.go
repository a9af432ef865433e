// Package ui formats task data for the terminal.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// CellMaxWidth is the widest a truncated cell is allowed to be.
const CellMaxWidth = 50

const cellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row ...string) {
	builder.rows = append(builder.rows, row)
}

// Len returns the number of rows added so far.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as columns separated by two spaces.
// Widths ignore ANSI styling. The last column is never padded.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, headers)
	all = append(all, rows...)

	widths := make([]int, len(headers))
	for r, row := range all {
		normalized := make([]string, len(row))
		for i, cell := range row {
			normalized[i] = normalizeCell(cell)
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(normalized[i]))
			}
		}
		all[r] = normalized
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			padding := 2
			if i < len(widths) {
				padding += widths[i] - lipgloss.Width(cell)
			}
			builder.WriteString(strings.Repeat(" ", padding))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateCell flattens line breaks and limits the visible width of value.
func TruncateCell(value string) string {
	value = normalizeCell(value)
	if lipgloss.Width(value) <= CellMaxWidth {
		return value
	}
	return truncate.StringWithTail(value, CellMaxWidth, cellEllipsis)
}

func normalizeCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
