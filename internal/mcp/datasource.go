package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
	"github.com/artachobruno/athletespace/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
	QueryExecutions(ctx context.Context, workoutID uuid.UUID) ([]storage.Execution, error)
	GetCompliance(ctx context.Context, executionID uuid.UUID) (*storage.ComplianceReport, error)
	QueryRecentCompliance(ctx context.Context, since time.Time, limit int) ([]storage.ComplianceReport, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
