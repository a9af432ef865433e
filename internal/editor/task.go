package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/tally/task"
)

// TaskData represents the data used to render the TOML template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	// ID is the task ID (only for updates).
	ID int64
	// Title is the task title.
	Title string
	// Category is a category label or "Auto".
	Category string
	// Categories lists the accepted labels for the template comment.
	Categories []string
	// Priority is the task priority (1-5).
	Priority int
	// Due is the due date as text.
	Due string
	// Completed is the completion state (only for updates).
	Completed bool
	// Description is the task description.
	Description string
}

// DefaultCreateData returns TaskData with default values for creating a new task.
func DefaultCreateData(rules []task.CategoryRule) TaskData {
	return TaskData{
		Category:   task.CategoryAuto,
		Categories: task.CategoryNames(rules),
		Priority:   task.PriorityMedium,
	}
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t *task.Task, rules []task.CategoryRule) TaskData {
	data := TaskData{
		IsUpdate:    true,
		ID:          t.ID,
		Title:       t.Title,
		Category:    t.Category,
		Categories:  task.CategoryNames(rules),
		Priority:    t.Priority,
		Completed:   t.Completed,
		Description: t.Description,
	}
	if t.DueDate != nil {
		data.Due = t.DueDate.Format("2006-01-02 15:04")
	}
	return data
}

var taskTemplate = template.Must(template.New("task").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`title = {{ printf "%q" .Title }}
category = {{ printf "%q" .Category }} # Auto, {{ join .Categories ", " }}
priority = {{ .Priority }} # 1=urgent, 2=high, 3=medium, 4=low, 5=someday
due = {{ printf "%q" .Due }} # e.g. "2024-03-01", "tomorrow 5pm", "next friday"; empty for none
{{- if .IsUpdate }}
completed = {{ .Completed }}
{{- end }}
---
{{ .Description }}
`))

// RenderTaskTOML renders the task data as a TOML string for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask represents the parsed result from the TOML editor output.
type ParsedTask struct {
	Title       string `toml:"title"`
	Category    string `toml:"category"`
	Priority    int    `toml:"priority"`
	Due         string `toml:"due"`
	Completed   *bool  `toml:"completed"`
	Description string `toml:"-"`
}

// ParseTaskTOML parses the TOML content from the editor.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	parsed := ParsedTask{Priority: task.PriorityMedium}
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Category = strings.TrimSpace(parsed.Category)
	parsed.Due = strings.TrimSpace(parsed.Due)
	parsed.Description = strings.TrimSpace(body)

	if err := task.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if err := task.ValidatePriority(parsed.Priority); err != nil {
		return nil, err
	}

	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	frontmatter := strings.Join(lines[:separatorIndex], "\n")
	body := strings.Join(lines[separatorIndex+1:], "\n")
	return frontmatter, body
}

// EditTaskWithData opens the editor with pre-populated data and returns the parsed result.
func EditTaskWithData(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "tally-task-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseTaskTOML(string(edited))
}

// ToCreateOptions converts a ParsedTask to task.CreateOptions. due is the
// already resolved Due text.
func (p *ParsedTask) ToCreateOptions(due *time.Time) task.CreateOptions {
	return task.CreateOptions{
		Description: p.Description,
		Category:    p.Category,
		Priority:    task.PriorityPtr(p.Priority),
		DueDate:     due,
	}
}

// ToUpdateOptions converts a ParsedTask to task.UpdateOptions. An empty Due
// clears the due date; a Due that couldn't be resolved (due == nil) keeps it.
func (p *ParsedTask) ToUpdateOptions(due *time.Time) task.UpdateOptions {
	title := p.Title
	description := p.Description
	priority := p.Priority
	opts := task.UpdateOptions{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		Completed:   p.Completed,
	}
	if p.Category != "" {
		category := p.Category
		opts.Category = &category
	}
	switch {
	case p.Due == "":
		opts.ClearDueDate = true
	case due != nil:
		opts.DueDate = due
	}
	return opts
}
