// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/pkg/logger"
)

const defaultMaxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitDependencies
	ResultsDependencies
}

// Server wires HTTP routes for the voting API.
type Server struct {
	basePath     string
	maxBodyBytes int64
	logger       logger.Logger

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	resultsHandler     *ResultsHandler
}

// Option configures a Server.
type Option func(*Server)

// WithBasePath sets the prefix for the submissions and results routes.
func WithBasePath(p string) Option {
	return func(s *Server) {
		s.basePath = p
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		basePath:     "/api",
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.submissionsHandler = NewSubmissionsHandler(deps, s.maxBodyBytes, s.logger)
	s.resultsHandler = NewResultsHandler(deps, s.logger)
	return s
}

// Route returns the full path for an API resource under the base path.
func (s *Server) Route(resource string) string {
	return path.Join("/", s.basePath, resource)
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc(s.Route("submissions"), MetricsMiddleware(s.submissionsHandler.HandleSubmissions, "submissions"))
	mux.HandleFunc(s.Route("results"), MetricsMiddleware(s.resultsHandler.HandleResults, "results"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, op string, allowed ...string) {
	logger.Get().Debug(r.Context(), "method not allowed",
		logger.String("method", r.Method),
		logger.Error(NewKind(op, ErrMethodNotAllowed)))
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// submissionRequest mirrors the POST /submissions body.
type submissionRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Reason   string `json:"reason"`
}

func (r submissionRequest) input() model.SubmissionInput {
	return model.SubmissionInput(r)
}
