package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/compliance"
	"github.com/artachobruno/athletespace/internal/models"
	"github.com/artachobruno/athletespace/internal/storage"
)

// Store is the persistence surface the handlers need. *storage.DB
// satisfies it; tests substitute an in-memory implementation.
type Store interface {
	InsertWorkout(ctx context.Context, w models.Workout) error
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
	InsertExecution(ctx context.Context, e storage.Execution) (bool, error)
	QueryExecutions(ctx context.Context, workoutID uuid.UUID) ([]storage.Execution, error)
	UpsertCompliance(ctx context.Context, executionID, workoutID uuid.UUID,
		summary compliance.WorkoutComplianceSummary, steps []compliance.StepComplianceResult) error
	GetCompliance(ctx context.Context, executionID uuid.UUID) (*storage.ComplianceReport, error)
	QueryRecentCompliance(ctx context.Context, since time.Time, limit int) ([]storage.ComplianceReport, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Post("/api/v1/workouts/{id}/executions", s.handleCreateExecution)
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/workouts/{id}/timeline", s.handleWorkoutTimeline)
	s.router.Get("/api/v1/workouts/{id}/executions", s.handleQueryExecutions)
	s.router.Get("/api/v1/executions/{id}/compliance", s.handleGetCompliance)
	s.router.Get("/api/v1/compliance/recent", s.handleRecentCompliance)
}

// SetMCP mounts an MCP transport handler under /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}
