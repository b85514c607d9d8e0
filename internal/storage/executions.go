package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
)

// Execution is a recorded attempt at a planned workout: where the telemetry
// came from, when it started, and the telemetry itself.
type Execution struct {
	ID        uuid.UUID               `json:"id"`
	WorkoutID uuid.UUID               `json:"workout_id"`
	Source    string                  `json:"source"`
	StartedAt time.Time               `json:"started_at"`
	Telemetry *models.TelemetryStream `json:"telemetry,omitempty"`
}

// InsertExecution stores an execution with its telemetry as JSON. Returns
// true if inserted, false if the execution already exists.
func (db *DB) InsertExecution(ctx context.Context, e Execution) (bool, error) {
	raw, err := json.Marshal(e.Telemetry)
	if err != nil {
		return false, fmt.Errorf("encoding telemetry: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO executions (id, workout_id, source, started_at, telemetry)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT DO NOTHING`,
		e.ID, e.WorkoutID, e.Source, e.StartedAt, raw)
	if err != nil {
		return false, fmt.Errorf("inserting execution: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetExecution retrieves an execution with its telemetry decoded.
func (db *DB) GetExecution(ctx context.Context, id uuid.UUID) (*Execution, error) {
	var e Execution
	var raw []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, source, started_at, telemetry FROM executions WHERE id = $1`, id).
		Scan(&e.ID, &e.WorkoutID, &e.Source, &e.StartedAt, &raw)
	if err != nil {
		return nil, fmt.Errorf("querying execution: %w", err)
	}
	if len(raw) > 0 {
		e.Telemetry = &models.TelemetryStream{}
		if err := json.Unmarshal(raw, e.Telemetry); err != nil {
			return nil, fmt.Errorf("decoding telemetry: %w", err)
		}
	}
	return &e, nil
}

// QueryExecutions lists executions recorded against a workout, newest first,
// without telemetry payloads.
func (db *DB) QueryExecutions(ctx context.Context, workoutID uuid.UUID) ([]Execution, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, source, started_at FROM executions
		 WHERE workout_id = $1 ORDER BY started_at DESC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var result []Execution
	for rows.Next() {
		var e Execution
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Source, &e.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning execution: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
