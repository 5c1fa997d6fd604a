// Package api is the minimal read-only HTTP surface: a health probe and a
// task listing. All mutation goes through the CLI; a single-writer store
// must not take writes from two fronts.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dandori/dandori/internal/graph"
	"github.com/dandori/dandori/internal/ops"
	"github.com/dandori/dandori/internal/task"
)

// Server is the HTTP API server.
type Server struct {
	session *ops.Session
	log     *slog.Logger
	mux     *http.ServeMux
}

// New creates a Server on an open session.
func New(session *ops.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		session: session,
		log:     logger,
		mux:     http.NewServeMux(),
	}
	s.routes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /tasks", s.handleTaskList)
	s.mux.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	filter := ops.ListFilter{
		Status: task.Status(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
		Topo:   r.URL.Query().Get("order") == "topo",
	}

	switch r.URL.Query().Get("archived") {
	case "true", "1":
		archived := true
		filter.Archived = &archived
	case "false", "0", "":
		archived := false
		filter.Archived = &archived
	case "all":
		// No archive filter.
	}

	tasks := s.session.List(filter)
	if tasks == nil {
		tasks = []*task.Task{}
	}

	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.session.Get(r.PathValue("id"))
	if errors.Is(err, graph.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())

		return
	}

	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write json", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("api listening", "addr", addr)

	return http.ListenAndServe(addr, s)
}
