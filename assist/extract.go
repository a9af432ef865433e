package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/tally/dateparse"
)

// Extraction holds task fields pulled out of free text.
type Extraction struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Notes   string     `json:"notes"`
}

const extractPrompt = `You turn a single to-do written in plain language into JSON.
Reply with one JSON object with the keys:
  "title": a short imperative title,
  "due": the deadline exactly as the user phrased it, or "" if none,
  "notes": any remaining detail, or "".
Today is %s.`

type extractReply struct {
	Title string `json:"title"`
	Due   string `json:"due"`
	Notes string `json:"notes"`
}

// Extract splits text into a title, an optional due date and notes. When the
// model can't help, the result is the text itself as the title.
func (c *Client) Extract(ctx context.Context, text string) Extraction {
	text = strings.TrimSpace(text)
	fallback := Extraction{Title: text}
	if text == "" {
		return fallback
	}

	ref := c.now()
	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(extractPrompt, ref.Format("Monday, 2006-01-02 15:04 MST"))},
		{Role: "user", Content: text},
	}, true)
	if err != nil {
		c.logger.WithError(err).Warn("task extraction unavailable")
		return fallback
	}

	var reply extractReply
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &reply); err != nil {
		c.logger.WithError(err).Warn("task extraction returned invalid JSON")
		return fallback
	}
	title := strings.TrimSpace(reply.Title)
	if title == "" {
		c.logger.Warn("task extraction returned no title")
		return fallback
	}

	extraction := Extraction{
		Title: title,
		Notes: strings.TrimSpace(reply.Notes),
	}
	if due := strings.TrimSpace(reply.Due); due != "" {
		parsed, err := dateparse.Parse(due, ref)
		if err != nil {
			c.logger.WithError(err).WithField("due", due).Warn("ignoring extracted due date")
		} else {
			extraction.DueDate = parsed
		}
	}
	return extraction
}

// stripCodeFence removes a surrounding ``` block some models add to JSON.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
