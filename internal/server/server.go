// Package server registers the HTTP API and maps store results and
// errors onto JSON responses. It carries no query logic of its own:
// parameter interpretation lives in the query package and execution in
// the store.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spetr/todoquery/internal/query"
	"github.com/spetr/todoquery/internal/store"
	"github.com/spetr/todoquery/pkg/types"
)

// Server handles the read-only todo API.
type Server struct {
	store store.TodoStore
	log   *slog.Logger
	mux   *http.ServeMux
}

// New builds the server around an injected store.
func New(st store.TodoStore, log *slog.Logger) *Server {
	s := &Server{store: st, log: log, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/todos/{id}", s.getTodo)
	s.mux.HandleFunc("GET /api/todos", s.listTodos)
	s.mux.HandleFunc("GET /api/todosByOwner", s.todosByOwner)
	s.mux.HandleFunc("GET /api/todosByCategory", s.todosByCategory)
	s.mux.HandleFunc("GET /api/health", s.health)

	return s
}

// ServeHTTP dispatches through the mux with request logging around it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.mux.ServeHTTP(rec, r)

	s.log.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, todo)
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	filter, sort, err := query.ParseList(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	todos, err := s.store.List(r.Context(), filter, sort)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, todos)
}

func (s *Server) todosByOwner(w http.ResponseWriter, r *http.Request) {
	s.grouped(w, r, query.OwnerGrouping(r.URL.Query()))
}

func (s *Server) todosByCategory(w http.ResponseWriter, r *http.Request) {
	s.grouped(w, r, query.CategoryGrouping(r.URL.Query()))
}

func (s *Server) grouped(w http.ResponseWriter, r *http.Request, spec query.GroupSpec) {
	groups, err := s.store.Group(r.Context(), spec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses: validation
// failures and malformed ids are client errors, a missing record is
// not found, and everything else is a store failure surfaced as-is.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case types.IsValidation(err), errors.Is(err, types.ErrMalformedID):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrTodoNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error("store failure", "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
