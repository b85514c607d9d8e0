package compliance

import (
	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
)

// StepComplianceResult is the scored outcome of one step. The four bucket
// fields sum to DurationSeconds up to the integer truncation applied once
// per result, at the very end of the computation.
type StepComplianceResult struct {
	StepID             uuid.UUID `json:"step_id"`
	Order              int       `json:"order"`
	DurationSeconds    int       `json:"duration_seconds"`
	TimeInRangeSeconds int       `json:"time_in_range_seconds"`
	OvershootSeconds   int       `json:"overshoot_seconds"`
	UndershootSeconds  int       `json:"undershoot_seconds"`
	PauseSeconds       int       `json:"pause_seconds"`
	CompliancePct      float64   `json:"compliance_pct"`
}

// windowSample pairs a stream index with its elapsed-seconds timestamp.
// The original index is kept so classification can read the other channels
// at the same instant.
type windowSample struct {
	index int
	t     float64
}

// ComputeStep scores one step against the telemetry recorded inside its
// timeline window [windowStart, windowEnd). A window with no usable
// telemetry scores as fully compliant: a tracking gap is indistinguishable
// from a missing recording and must not read as non-compliance.
func ComputeStep(step models.WorkoutStep, stream *models.TelemetryStream, windowStart, windowEnd int) StepComplianceResult {
	result := StepComplianceResult{
		StepID:          step.ID,
		Order:           step.Order,
		DurationSeconds: windowEnd - windowStart,
	}

	window := sliceWindow(stream, windowStart, windowEnd)
	if len(window) == 0 {
		result.TimeInRangeSeconds = result.DurationSeconds
		result.CompliancePct = 1.0
		return result
	}

	var inRange, overshoot, undershoot, pause, total float64
	for i := range window {
		w := sampleWeight(window, i, float64(windowStart), float64(windowEnd))
		switch ClassifySample(window[i].index, step.Target, stream) {
		case ClassPause:
			pause += w
		case ClassInRange:
			inRange += w
		case ClassOvershoot:
			overshoot += w
		case ClassUndershoot:
			undershoot += w
		}
		total += w
	}

	active := total - pause
	if active > 0 {
		result.CompliancePct = inRange / active
	} else {
		// Fully paused window: zero active time cannot be non-compliant.
		result.CompliancePct = 1.0
	}
	if result.CompliancePct > 1.0 {
		result.CompliancePct = 1.0
	}

	// Truncate once, here, rather than during accumulation.
	result.TimeInRangeSeconds = int(inRange)
	result.OvershootSeconds = int(overshoot)
	result.UndershootSeconds = int(undershoot)
	result.PauseSeconds = int(pause)
	return result
}

// sliceWindow selects the indices whose time sample falls in
// [windowStart, windowEnd), preserving order and dropping indices whose
// time is missing.
func sliceWindow(stream *models.TelemetryStream, windowStart, windowEnd int) []windowSample {
	n := stream.Len()
	var window []windowSample
	for i := 0; i < n; i++ {
		t, ok := stream.At(models.ChannelTime, i)
		if !ok {
			continue
		}
		if t >= float64(windowStart) && t < float64(windowEnd) {
			window = append(window, windowSample{index: i, t: t})
		}
	}
	return window
}

// sampleWeight returns the seconds sample i of the window stands for, by
// midpoint interpolation against its neighbors: each sample covers from the
// midpoint with its predecessor to the midpoint with its successor, with
// the window edges closing the first and last spans. A degenerate span
// (out-of-order timestamps) falls back to one second.
func sampleWeight(window []windowSample, i int, windowStart, windowEnd float64) float64 {
	n := len(window)
	var w float64
	switch {
	case n == 1:
		w = windowEnd - windowStart
	case i == 0:
		w = midpoint(window[0].t, window[1].t) - windowStart
	case i == n-1:
		w = windowEnd - midpoint(window[n-2].t, window[n-1].t)
	default:
		w = midpoint(window[i].t, window[i+1].t) - midpoint(window[i-1].t, window[i].t)
	}
	if w <= 0 {
		return 1.0
	}
	return w
}

func midpoint(a, b float64) float64 {
	return (a + b) / 2.0
}
