package compliance

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
)

// TimelineSegment is the time window a step occupies inside the planned
// session. The interval is half-open: [StartSecond, EndSecond).
type TimelineSegment struct {
	StepID      uuid.UUID       `json:"step_id"`
	Order       int             `json:"order"`
	StepType    models.StepType `json:"step_type"`
	StartSecond int             `json:"start_second"`
	EndSecond   int             `json:"end_second"`
	Target      models.Target   `json:"-"`
}

// UnsupportedStepTypeError is the engine's only failure mode: a step whose
// duration is not time-based was passed to the timeline builder. Distance
// and open-ended steps cannot be placed on a seconds axis.
type UnsupportedStepTypeError struct {
	Order    int
	Duration models.Duration
}

func (e *UnsupportedStepTypeError) Error() string {
	return fmt.Sprintf("step %d: duration %s is not time-based, cannot build timeline", e.Order, durationName(e.Duration))
}

func durationName(d models.Duration) string {
	switch d.(type) {
	case models.TimeDuration:
		return "time"
	case models.DistanceDuration:
		return "distance"
	case models.OpenDuration:
		return "open"
	}
	return "missing"
}

// BuildTimeline converts ordered steps into contiguous, non-overlapping
// segments by cursor accumulation: the first segment starts at 0, each
// segment ends where the next begins, and the last ends at the summed
// duration. Steps are processed in ascending Order.
func BuildTimeline(steps []models.WorkoutStep) ([]TimelineSegment, error) {
	ordered := make([]models.WorkoutStep, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	segments := make([]TimelineSegment, 0, len(ordered))
	cursor := 0
	for _, step := range ordered {
		td, ok := step.Duration.(models.TimeDuration)
		if !ok {
			return nil, &UnsupportedStepTypeError{Order: step.Order, Duration: step.Duration}
		}
		segments = append(segments, TimelineSegment{
			StepID:      step.ID,
			Order:       step.Order,
			StepType:    step.Type,
			StartSecond: cursor,
			EndSecond:   cursor + td.Seconds,
			Target:      step.Target,
		})
		cursor += td.Seconds
	}
	return segments, nil
}
