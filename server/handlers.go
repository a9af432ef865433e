package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/amonks/tally/dateparse"
	"github.com/amonks/tally/task"
)

type errorResponse struct {
	Error string `json:"error"`
}

type listRequest struct {
	Filter   string `json:"filter"`
	Sort     string `json:"sort"`
	Category string `json:"category"`
	Query    string `json:"query"`
	Overdue  bool   `json:"overdue"`
}

type listResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type idRequest struct {
	ID int64 `json:"id"`
}

type taskResponse struct {
	Task *task.Task `json:"task"`
}

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    *int       `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	// DueText is parsed as a natural-language date when DueDate is unset.
	DueText string `json:"due_text"`
	// Assist splits Title into title, due date and notes with the model.
	Assist bool `json:"assist"`
}

type updateRequest struct {
	ID     int64                      `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type statsResponse struct {
	Stats task.Stats `json:"stats"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type emptyResponse struct{}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload listRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	filter, err := task.ParseFilter(payload.Filter)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	sortBy, err := task.ParseSort(payload.Sort)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	tasks, err := s.store.List(task.ListOptions{
		Filter:      filter,
		Sort:        sortBy,
		Category:    payload.Category,
		Query:       payload.Query,
		OverdueOnly: payload.Overdue,
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Tasks: tasks})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload idRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	t, err := s.store.Get(payload.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: t})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload createRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	title := payload.Title
	description := payload.Description
	due := payload.DueDate

	// Enrichment happens before the store is touched.
	if payload.Assist && strings.TrimSpace(title) != "" {
		extraction := s.assist.Extract(r.Context(), title)
		title = extraction.Title
		if strings.TrimSpace(description) == "" {
			description = extraction.Notes
		}
		if due == nil && payload.DueText == "" {
			due = extraction.DueDate
		}
	}
	if due == nil && strings.TrimSpace(payload.DueText) != "" {
		parsed, err := dateparse.Parse(payload.DueText, s.store.Now())
		if err != nil {
			s.requestLogger(r).WithError(err).WithField("due_text", payload.DueText).Warn("ignoring due date")
		} else {
			due = parsed
		}
	}

	created, err := s.store.Create(title, task.CreateOptions{
		Description: description,
		Category:    payload.Category,
		Priority:    payload.Priority,
		DueDate:     due,
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: created})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload updateRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	opts, err := task.ParseFields(payload.Fields)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	updated, err := s.store.Update(payload.ID, opts)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: updated})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload idRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.store.Delete(payload.ID); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyResponse{})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	stats, err := s.store.Stats()
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: stats})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	tasks, err := s.store.List(task.ListOptions{Filter: task.FilterCompleted})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: s.assist.Summarize(r.Context(), tasks)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
