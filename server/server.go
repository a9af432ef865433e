// Package server exposes a task store over a small JSON RPC API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/amonks/tally/assist"
	"github.com/amonks/tally/task"
)

// Assistant enriches task input. *assist.Client implements it.
type Assistant interface {
	Extract(ctx context.Context, text string) assist.Extraction
	Summarize(ctx context.Context, tasks []task.Task) string
}

// ServerOptions configures a server.
type ServerOptions struct {
	Store *task.Store

	// Assist defaults to a disabled client, which always falls back.
	Assist Assistant

	Logger log.FieldLogger

	// AllowedOrigins enables CORS for these origins. Empty disables CORS.
	AllowedOrigins []string

	// Registry collects metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
}

// Server handles task RPCs.
type Server struct {
	store          *task.Store
	assist         Assistant
	logger         log.FieldLogger
	allowedOrigins []string
	registry       *prometheus.Registry
	metrics        *metrics
}

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-Id"

	shutdownTimeout = 5 * time.Second
)

// NewServer creates a server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	assistant := opts.Assist
	if assistant == nil {
		assistant = assist.New(assist.Options{Logger: logger})
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(registry, opts.Store)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return &Server{
		store:          opts.Store,
		assist:         assistant,
		logger:         logger,
		allowedOrigins: opts.AllowedOrigins,
		registry:       registry,
		metrics:        m,
	}, nil
}

// Handler returns the HTTP handler for task RPCs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/list", s.handleList)
	mux.HandleFunc("/tasks/get", s.handleGet)
	mux.HandleFunc("/tasks/create", s.handleCreate)
	mux.HandleFunc("/tasks/update", s.handleUpdate)
	mux.HandleFunc("/tasks/delete", s.handleDelete)
	mux.HandleFunc("/tasks/stats", s.handleStats)
	mux.HandleFunc("/tasks/summary", s.handleSummary)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	if len(s.allowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
		}).Handler(handler)
	}
	return s.logHandler(s.recoverHandler(handler))
}

// Serve runs the server on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.WithField("addr", addr).Info("serving task API")

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer, ok := w.(*responseTracker)
		if !ok {
			writer = &responseTracker{ResponseWriter: w}
		}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.requestLogger(r).WithField("panic", recovered).Errorf("panic handling request\n%s", debug.Stack())
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

type requestIDKey struct{}

func (s *Server) logHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		writer := &responseTracker{ResponseWriter: w}
		next.ServeHTTP(writer, r)

		status := writer.Status()
		s.metrics.observe(r.URL.Path, status, time.Since(start))
		s.requestLogger(r).WithFields(log.Fields{
			"status":   status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) requestLogger(r *http.Request) log.FieldLogger {
	fields := log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		fields["request_id"] = id
	}
	return s.logger.WithFields(fields)
}

func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps store errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, task.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, statusFor(err), err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	entry := s.requestLogger(r).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
	status      int
}

func (w *responseTracker) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(data)
}

func (w *responseTracker) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Status returns the written status code, or 200 if nothing was written.
func (w *responseTracker) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
