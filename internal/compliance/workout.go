package compliance

import "github.com/artachobruno/athletespace/internal/models"

// completedStepFraction is the share of steps that must have nonzero
// duration for the workout to count as completed.
const completedStepFraction = 0.8

// WorkoutComplianceSummary is the whole-workout verdict. It is recomputed
// fresh on every invocation; the caller decides whether to persist it or
// diff it against a stored value.
type WorkoutComplianceSummary struct {
	OverallCompliancePct float64 `json:"overall_compliance_pct"`
	TotalPauseSeconds    int     `json:"total_pause_seconds"`
	Completed            bool    `json:"completed"`
}

// AggregateWorkout folds per-step results into a duration-weighted overall
// score. A workout with zero total duration is vacuously compliant, and a
// workout with zero steps is vacuously completed.
func AggregateWorkout(results []StepComplianceResult) WorkoutComplianceSummary {
	summary := WorkoutComplianceSummary{OverallCompliancePct: 1.0, Completed: true}

	var weighted float64
	totalDuration := 0
	nonzero := 0
	for _, r := range results {
		summary.TotalPauseSeconds += r.PauseSeconds
		weighted += r.CompliancePct * float64(r.DurationSeconds)
		totalDuration += r.DurationSeconds
		if r.DurationSeconds > 0 {
			nonzero++
		}
	}

	if totalDuration > 0 {
		summary.OverallCompliancePct = weighted / float64(totalDuration)
	}
	if len(results) > 0 {
		summary.Completed = float64(nonzero) >= completedStepFraction*float64(len(results))
	}
	return summary
}

// ComputeWorkout runs the full pipeline: build the timeline, score every
// step against its window, and aggregate. The only error is a step whose
// duration cannot be placed on the time axis.
func ComputeWorkout(steps []models.WorkoutStep, stream *models.TelemetryStream) ([]StepComplianceResult, WorkoutComplianceSummary, error) {
	segments, err := BuildTimeline(steps)
	if err != nil {
		return nil, WorkoutComplianceSummary{}, err
	}

	byOrder := make(map[int]models.WorkoutStep, len(steps))
	for _, s := range steps {
		byOrder[s.Order] = s
	}

	results := make([]StepComplianceResult, 0, len(segments))
	for _, seg := range segments {
		results = append(results, ComputeStep(byOrder[seg.Order], stream, seg.StartSecond, seg.EndSecond))
	}
	return results, AggregateWorkout(results), nil
}
