package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Field names accepted by ParseFields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldDueDate     = "due_date"
	FieldCompleted   = "completed"
	FieldCompletedAt = "completed_at"

	FieldID        = "id"
	FieldCreatedAt = "created_at"
)

// ParseFields decodes a partial update given as a JSON object keyed by field
// name. Only the writable fields are accepted; "id" and "created_at" fail with
// ErrImmutableField and anything else with ErrUnknownField. Null clears
// due_date and description; a null category re-infers it.
func ParseFields(fields map[string]json.RawMessage) (UpdateOptions, error) {
	var opts UpdateOptions

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := fields[name]
		null := isNull(raw)
		var err error
		switch name {
		case FieldID, FieldCreatedAt:
			return UpdateOptions{}, fmt.Errorf("%w: %s", ErrImmutableField, name)
		case FieldTitle:
			if null {
				return UpdateOptions{}, ErrEmptyTitle
			}
			opts.Title = new(string)
			err = json.Unmarshal(raw, opts.Title)
		case FieldDescription:
			opts.Description = new(string)
			if !null {
				err = json.Unmarshal(raw, opts.Description)
			}
		case FieldCategory:
			opts.Category = StringPtr(CategoryAuto)
			if !null {
				err = json.Unmarshal(raw, opts.Category)
			}
		case FieldPriority:
			if null {
				return UpdateOptions{}, fmt.Errorf("%w: got null", ErrInvalidPriority)
			}
			opts.Priority = new(int)
			err = json.Unmarshal(raw, opts.Priority)
		case FieldDueDate:
			if null {
				opts.ClearDueDate = true
				continue
			}
			opts.DueDate = new(time.Time)
			err = json.Unmarshal(raw, opts.DueDate)
		case FieldCompleted:
			if null {
				return UpdateOptions{}, fmt.Errorf("%w: completed cannot be null", ErrValidation)
			}
			opts.Completed = new(bool)
			err = json.Unmarshal(raw, opts.Completed)
		case FieldCompletedAt:
			if null {
				continue
			}
			opts.CompletedAt = new(time.Time)
			err = json.Unmarshal(raw, opts.CompletedAt)
		default:
			return UpdateOptions{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if err != nil {
			return UpdateOptions{}, fmt.Errorf("%w: %s: %v", ErrValidation, name, err)
		}
	}
	return opts, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
