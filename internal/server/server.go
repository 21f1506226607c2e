// Package server exposes the pipelines and the job store over a small JSON
// API, meant for a local UI or curl. Pipeline triggers return a task id
// immediately; progress is polled on the tasks endpoints.
package server

import (
	"log/slog"
	"net/http"

	"github.com/kwhitfield/jobradar/internal/model"
	"github.com/kwhitfield/jobradar/internal/task"
)

// Server routes API requests. Pipeline runs are injected as task.RunFunc so
// the server never holds pipeline dependencies itself.
type Server struct {
	router   *http.ServeMux
	store    model.JobStore
	tracker  *task.Tracker
	discover task.RunFunc
	score    task.RunFunc
	logger   *slog.Logger
}

// NewServer wires the routes.
func NewServer(store model.JobStore, tracker *task.Tracker, discover, score task.RunFunc, logger *slog.Logger) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		store:    store,
		tracker:  tracker,
		discover: discover,
		score:    score,
		logger:   logger,
	}

	s.router.HandleFunc("POST /api/scrape", s.handleScrape)
	s.router.HandleFunc("POST /api/score", s.handleScore)
	s.router.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.router.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.router.HandleFunc("DELETE /api/tasks/{id}", s.handleCancelTask)
	s.router.HandleFunc("GET /api/jobs", s.handleListJobs)
	s.router.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	s.router.HandleFunc("PUT /api/jobs/{id}/status", s.handleUpdateStatus)
	s.router.HandleFunc("PUT /api/jobs/{id}/notes", s.handleUpdateNotes)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
	s.router.HandleFunc("GET /api/export.csv", s.handleExportCSV)

	return s
}

// Handler returns the routing handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("api listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
