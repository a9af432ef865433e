// Package markdown renders task descriptions and summaries for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	internalstrings "github.com/amonks/tally/internal/strings"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text for terminal output, wrapped to width and
// shifted right by indent spaces. It returns nil for blank input.
func Render(width, indentBy int, input []byte) []byte {
	value := clean(input)
	if value == "" {
		return nil
	}
	renderWidth := max(width-max(indentBy, 0), 1)

	rendered := value
	if r := markdownRenderer(renderWidth); r != nil {
		if formatted, err := r.Render(value); err == nil {
			rendered = formatted
		}
	}
	return finish(rendered, indentBy)
}

// SafeRender is Render that falls back to the plain input if rendering panics.
func SafeRender(width, indentBy int, input []byte) (out []byte) {
	defer func() {
		if recover() != nil {
			out = finish(clean(input), indentBy)
		}
	}()
	return Render(width, indentBy, input)
}

// Wrap word-wraps plain text to width and indents every line.
func Wrap(text string, width, indentBy int) string {
	value := clean([]byte(text))
	if value == "" {
		return ""
	}
	wrapped := wordwrap.String(value, max(width-max(indentBy, 0), 1))
	if indentBy > 0 {
		wrapped = indent.String(wrapped, uint(indentBy))
	}
	return wrapped
}

func clean(input []byte) string {
	value := internalstrings.NormalizeNewlines(string(input))
	value = internalstrings.TrimTrailingNewlines(value)
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return value
}

func finish(rendered string, indentBy int) []byte {
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	if strings.TrimSpace(rendered) == "" {
		return nil
	}
	if indentBy > 0 {
		rendered = indent.String(rendered, uint(indentBy))
	}
	return []byte(rendered)
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}
