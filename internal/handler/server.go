// Package handler implements the HTTP handlers for the Viewpoint Explorer API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, viewpoint.go, ...) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// ViewpointServicer defines the catalogue operations the viewpoint handlers
// depend on. Defining the interface here (in the consumer package) lets
// handler tests inject a mock without touching the database or service layer.
type ViewpointServicer interface {
	List(ctx context.Context, f domain.ViewpointFilter) ([]domain.Viewpoint, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Viewpoint, error)
}

// ErrorReporter receives every error that ends in a 500.
// *telemetry.Reporter satisfies it; nil disables reporting.
type ErrorReporter interface {
	CaptureRequestError(r *http.Request, operation string, err error)
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	viewpoints ViewpointServicer
	reporter   ErrorReporter
}

// NewServer constructs the Server with all its dependencies.
// reporter may be nil.
func NewServer(viewpoints ViewpointServicer, reporter ErrorReporter) *Server {
	return &Server{viewpoints: viewpoints, reporter: reporter}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS, metrics) is installed by the caller around it.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("route not found"))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/api/viewpoints", s.ListViewpoints)
	r.Get("/api/viewpoints/{id}", s.GetViewpoint)

	return r
}
