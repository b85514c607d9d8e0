package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepType labels the role of a step inside a structured workout.
type StepType string

const (
	StepWarmup   StepType = "warmup"
	StepSteady   StepType = "steady"
	StepInterval StepType = "interval"
	StepRecovery StepType = "recovery"
	StepCooldown StepType = "cooldown"
	StepFree     StepType = "free"
)

// Valid reports whether t is one of the known step types.
func (t StepType) Valid() bool {
	switch t {
	case StepWarmup, StepSteady, StepInterval, StepRecovery, StepCooldown, StepFree:
		return true
	}
	return false
}

// Target metric names. Only pace, hr, and power have live telemetry
// channels; anything else (rpe) has no data to compare against.
const (
	MetricPace  = "pace"
	MetricHR    = "hr"
	MetricPower = "power"
	MetricRPE   = "rpe"
)

// Duration is the prescribed extent of a workout step. Exactly one of the
// three variants applies: a fixed time, a fixed distance, or open-ended.
type Duration interface {
	isDuration()
}

// TimeDuration prescribes a step lasting a fixed number of seconds.
type TimeDuration struct {
	Seconds int
}

// DistanceDuration prescribes a step covering a fixed number of meters.
type DistanceDuration struct {
	Meters int
}

// OpenDuration prescribes a step the athlete ends manually.
type OpenDuration struct{}

func (TimeDuration) isDuration()     {}
func (DistanceDuration) isDuration() {}
func (OpenDuration) isDuration()     {}

// Target is the prescribed intensity of a step over a named metric.
// A nil Target means the step has no prescription.
type Target interface {
	isTarget()
	// TargetMetric returns the metric name the target is expressed in.
	TargetMetric() string
}

// SingleTarget prescribes a single value (e.g. hold 250 W).
type SingleTarget struct {
	Metric string
	Value  float64
}

// RangeTarget prescribes an inclusive band (e.g. pace between 4:30 and 5:00).
type RangeTarget struct {
	Metric string
	Min    float64
	Max    float64
}

func (SingleTarget) isTarget() {}
func (RangeTarget) isTarget()  {}

func (t SingleTarget) TargetMetric() string { return t.Metric }
func (t RangeTarget) TargetMetric() string  { return t.Metric }

// WorkoutStep is one ordered unit of a planned workout. Steps are created
// by the planning layer and never mutated once a computation has used them.
type WorkoutStep struct {
	ID       uuid.UUID
	Order    int
	Type     StepType
	Duration Duration
	Target   Target
}

// Workout is a planned structured session: a sport plus its ordered steps.
type Workout struct {
	ID        uuid.UUID     `json:"id"`
	Sport     string        `json:"sport"`
	Name      string        `json:"name"`
	Scheduled time.Time     `json:"scheduled"`
	Steps     []WorkoutStep `json:"steps"`
}

// TotalPlannedSeconds sums the time-based step durations. Distance and
// open steps contribute nothing.
func (w Workout) TotalPlannedSeconds() int {
	total := 0
	for _, s := range w.Steps {
		if d, ok := s.Duration.(TimeDuration); ok {
			total += d.Seconds
		}
	}
	return total
}

// ValidateSteps checks the structural invariants the planning layer must
// uphold: at least implicitly contiguous, strictly increasing order values,
// known step types, and non-negative extents.
func ValidateSteps(steps []WorkoutStep) error {
	for i, s := range steps {
		if !s.Type.Valid() {
			return fmt.Errorf("step %d: unknown step type %q", i, s.Type)
		}
		if i > 0 && s.Order <= steps[i-1].Order {
			return fmt.Errorf("step %d: order %d not strictly increasing", i, s.Order)
		}
		switch d := s.Duration.(type) {
		case TimeDuration:
			if d.Seconds < 0 {
				return fmt.Errorf("step %d: negative duration %ds", i, d.Seconds)
			}
		case DistanceDuration:
			if d.Meters < 0 {
				return fmt.Errorf("step %d: negative distance %dm", i, d.Meters)
			}
		case OpenDuration:
		case nil:
			return fmt.Errorf("step %d: missing duration", i)
		}
		if t, ok := s.Target.(RangeTarget); ok && t.Min > t.Max {
			return fmt.Errorf("step %d: target range min %g > max %g", i, t.Min, t.Max)
		}
	}
	return nil
}
