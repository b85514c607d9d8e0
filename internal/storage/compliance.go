package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/compliance"
)

// ComplianceReport is a stored whole-workout verdict with its step results.
type ComplianceReport struct {
	ExecutionID uuid.UUID                           `json:"execution_id"`
	WorkoutID   uuid.UUID                           `json:"workout_id"`
	Summary     compliance.WorkoutComplianceSummary `json:"summary"`
	Steps       []compliance.StepComplianceResult   `json:"steps"`
	ComputedAt  time.Time                           `json:"computed_at"`
}

// UpsertCompliance stores the summary and per-step results for an execution
// in one transaction, replacing any prior computation. The engine is pure,
// so recomputing and overwriting is always safe.
func (db *DB) UpsertCompliance(ctx context.Context, executionID, workoutID uuid.UUID,
	summary compliance.WorkoutComplianceSummary, steps []compliance.StepComplianceResult) error {

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning compliance upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_compliance (execution_id, workout_id, overall_compliance_pct, total_pause_seconds, completed, computed_at)
		 VALUES ($1,$2,$3,$4,$5,now())
		 ON CONFLICT (execution_id) DO UPDATE SET
		   overall_compliance_pct = EXCLUDED.overall_compliance_pct,
		   total_pause_seconds = EXCLUDED.total_pause_seconds,
		   completed = EXCLUDED.completed,
		   computed_at = now()`,
		executionID, workoutID, summary.OverallCompliancePct, summary.TotalPauseSeconds, summary.Completed)
	if err != nil {
		return fmt.Errorf("upserting workout compliance: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM step_compliance WHERE execution_id = $1`, executionID)
	if err != nil {
		return fmt.Errorf("clearing step compliance: %w", err)
	}

	if len(steps) > 0 {
		query := `INSERT INTO step_compliance (execution_id, step_id, step_order, duration_seconds,
		 time_in_range_seconds, overshoot_seconds, undershoot_seconds, pause_seconds, compliance_pct) VALUES `
		args := make([]any, 0, len(steps)*9)
		valueStrings := make([]string, 0, len(steps))
		for i, s := range steps {
			base := i * 9
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
			))
			args = append(args, executionID, s.StepID, s.Order, s.DurationSeconds,
				s.TimeInRangeSeconds, s.OvershootSeconds, s.UndershootSeconds, s.PauseSeconds, s.CompliancePct)
		}
		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting step compliance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing compliance upsert: %w", err)
	}
	return nil
}

// GetCompliance retrieves the stored report for an execution.
func (db *DB) GetCompliance(ctx context.Context, executionID uuid.UUID) (*ComplianceReport, error) {
	report := &ComplianceReport{ExecutionID: executionID}
	err := db.Pool.QueryRow(ctx,
		`SELECT workout_id, overall_compliance_pct, total_pause_seconds, completed, computed_at
		 FROM workout_compliance WHERE execution_id = $1`, executionID).
		Scan(&report.WorkoutID, &report.Summary.OverallCompliancePct,
			&report.Summary.TotalPauseSeconds, &report.Summary.Completed, &report.ComputedAt)
	if err != nil {
		return nil, fmt.Errorf("querying workout compliance: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT step_id, step_order, duration_seconds, time_in_range_seconds,
		 overshoot_seconds, undershoot_seconds, pause_seconds, compliance_pct
		 FROM step_compliance WHERE execution_id = $1 ORDER BY step_order ASC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("querying step compliance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s compliance.StepComplianceResult
		if err := rows.Scan(&s.StepID, &s.Order, &s.DurationSeconds, &s.TimeInRangeSeconds,
			&s.OvershootSeconds, &s.UndershootSeconds, &s.PauseSeconds, &s.CompliancePct); err != nil {
			return nil, fmt.Errorf("scanning step compliance: %w", err)
		}
		report.Steps = append(report.Steps, s)
	}
	return report, rows.Err()
}

// QueryRecentCompliance lists stored summaries computed since a cutoff,
// newest first.
func (db *DB) QueryRecentCompliance(ctx context.Context, since time.Time, limit int) ([]ComplianceReport, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT execution_id, workout_id, overall_compliance_pct, total_pause_seconds, completed, computed_at
		 FROM workout_compliance WHERE computed_at >= $1
		 ORDER BY computed_at DESC LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent compliance: %w", err)
	}
	defer rows.Close()

	var result []ComplianceReport
	for rows.Next() {
		var r ComplianceReport
		if err := rows.Scan(&r.ExecutionID, &r.WorkoutID, &r.Summary.OverallCompliancePct,
			&r.Summary.TotalPauseSeconds, &r.Summary.Completed, &r.ComputedAt); err != nil {
			return nil, fmt.Errorf("scanning compliance summary: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
