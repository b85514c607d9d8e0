package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
)

// InsertWorkout inserts a planned workout and its steps in one transaction.
// Step rows carry the full wire JSON so the duration/target unions survive
// storage unchanged.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning workout insert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, sport, name, scheduled) VALUES ($1,$2,$3,$4)`,
		w.ID, w.Sport, w.Name, w.Scheduled)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for _, step := range w.Steps {
		raw, err := json.Marshal(step)
		if err != nil {
			return fmt.Errorf("encoding step %d: %w", step.Order, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_steps (id, workout_id, step_order, step_type, step_json)
			 VALUES ($1,$2,$3,$4,$5)`,
			step.ID, w.ID, step.Order, string(step.Type), raw)
		if err != nil {
			return fmt.Errorf("inserting step %d: %w", step.Order, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout insert: %w", err)
	}
	return nil
}

// GetWorkout retrieves a planned workout with its steps in order.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, sport, name, scheduled FROM workouts WHERE id = $1`, id).
		Scan(&w.ID, &w.Sport, &w.Name, &w.Scheduled)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT step_json FROM workout_steps WHERE workout_id = $1 ORDER BY step_order ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying workout steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		var step models.WorkoutStep
		if err := json.Unmarshal(raw, &step); err != nil {
			return nil, fmt.Errorf("decoding step: %w", err)
		}
		w.Steps = append(w.Steps, step)
	}
	return &w, rows.Err()
}

// QueryWorkouts retrieves planned workouts scheduled in a time range,
// without their steps.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, sport, name, scheduled FROM workouts
		 WHERE scheduled >= $1 AND scheduled < $2
		 ORDER BY scheduled ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Sport, &w.Name, &w.Scheduled); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// QueryWorkoutsWithSteps retrieves scheduled workouts in a range with their
// steps attached, for the matcher.
func (db *DB) QueryWorkoutsWithSteps(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	headers, err := db.QueryWorkouts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	result := make([]models.Workout, 0, len(headers))
	for _, h := range headers {
		full, err := db.GetWorkout(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, *full)
	}
	return result, nil
}
