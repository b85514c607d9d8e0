package compliance

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/artachobruno/athletespace/internal/models"
)

// paceRangeStep builds a steady step targeting a pace band.
func paceRangeStep(min, max float64) models.WorkoutStep {
	return models.WorkoutStep{
		ID:       uuid.New(),
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 300},
		Target:   models.RangeTarget{Metric: models.MetricPace, Min: min, Max: max},
	}
}

// TestComputeStepAlternatingPace is the half-in-band scenario: ten samples
// 30s apart alternating between an in-band pace of 4.7 and an out-of-band
// 5.5 against a 4.5-5.0 min/km target, no pauses. Every sample weighs 30s,
// so compliance lands at exactly one half.
func TestComputeStepAlternatingPace(t *testing.T) {
	times := make([]*float64, 10)
	velocities := make([]*float64, 10)
	cadences := make([]*float64, 10)
	for i := 0; i < 10; i++ {
		times[i] = fptr(float64(15 + 30*i))
		pace := 4.7
		if i%2 == 1 {
			pace = 5.5
		}
		velocities[i] = fptr(velocityForPace(pace))
		cadences[i] = fptr(90)
	}
	stream := &models.TelemetryStream{Time: times, VelocitySmooth: velocities, Cadence: cadences}

	result := ComputeStep(paceRangeStep(4.5, 5.0), stream, 0, 300)

	if result.DurationSeconds != 300 {
		t.Errorf("duration = %d, want 300", result.DurationSeconds)
	}
	if math.Abs(result.CompliancePct-0.5) > 1e-9 {
		t.Errorf("compliance = %v, want 0.5", result.CompliancePct)
	}
	if result.TimeInRangeSeconds != 150 {
		t.Errorf("in_range = %d, want 150", result.TimeInRangeSeconds)
	}
	if result.OvershootSeconds != 150 {
		t.Errorf("overshoot = %d, want 150", result.OvershootSeconds)
	}
	if result.PauseSeconds != 0 || result.UndershootSeconds != 0 {
		t.Errorf("pause = %d, undershoot = %d, want 0/0", result.PauseSeconds, result.UndershootSeconds)
	}
}

// TestComputeStepNoTimeChannel is the tracking-gap scenario: a 600s window
// with no time channel at all scores as fully compliant, because absent
// telemetry is indistinguishable from a recording gap.
func TestComputeStepNoTimeChannel(t *testing.T) {
	stream := &models.TelemetryStream{Heartrate: fseq(150, 151, 152)}
	step := models.WorkoutStep{
		ID:       uuid.New(),
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 600},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}

	result := ComputeStep(step, stream, 0, 600)

	want := StepComplianceResult{
		StepID:             step.ID,
		Order:              1,
		DurationSeconds:    600,
		TimeInRangeSeconds: 600,
		CompliancePct:      1.0,
	}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

// TestComputeStepNoSamplesInWindow verifies the vacuous result when every
// time sample falls outside the window.
func TestComputeStepNoSamplesInWindow(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(600, 610, 620),
		Heartrate: fseq(150, 150, 150),
	}
	result := ComputeStep(paceRangeStep(4.5, 5.0), stream, 0, 300)
	if result.TimeInRangeSeconds != 300 || result.CompliancePct != 1.0 {
		t.Errorf("in_range = %d, compliance = %v, want 300, 1.0", result.TimeInRangeSeconds, result.CompliancePct)
	}
}

// TestComputeStepSingleSample verifies that a lone sample stands for the
// whole window.
func TestComputeStepSingleSample(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(42),
		Heartrate: fseq(150),
		Cadence:   fseq(90),
	}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 300},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 300)
	if result.TimeInRangeSeconds != 300 {
		t.Errorf("in_range = %d, want 300 (single sample covers the window)", result.TimeInRangeSeconds)
	}
}

// TestComputeStepEdgeWeights verifies the first/last midpoint weights:
// with samples at 10s and 20s in a [0,100) window, the first stands for
// [0,15) and the last for [15,100).
func TestComputeStepEdgeWeights(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(10, 20),
		Heartrate: fseq(150, 170), // first in band, second above it
		Cadence:   fseq(90, 90),
	}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepInterval,
		Duration: models.TimeDuration{Seconds: 100},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 100)
	if result.TimeInRangeSeconds != 15 {
		t.Errorf("in_range = %d, want 15", result.TimeInRangeSeconds)
	}
	if result.OvershootSeconds != 85 {
		t.Errorf("overshoot = %d, want 85", result.OvershootSeconds)
	}
	if math.Abs(result.CompliancePct-0.15) > 1e-9 {
		t.Errorf("compliance = %v, want 0.15", result.CompliancePct)
	}
}

// TestComputeStepNonPositiveWeightClamp verifies that out-of-order
// timestamps, which would produce a non-positive midpoint span, fall back
// to a one-second weight instead of going negative.
func TestComputeStepNonPositiveWeightClamp(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(30, 20, 10),
		Heartrate: fseq(150, 150, 150),
		Cadence:   fseq(90, 90, 90),
	}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 100},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 100)
	// first: mid(30,20)-0 = 25; interior clamps to 1; last: 100-mid(20,10) = 85.
	if result.TimeInRangeSeconds != 111 {
		t.Errorf("in_range = %d, want 111", result.TimeInRangeSeconds)
	}
	if result.CompliancePct != 1.0 {
		t.Errorf("compliance = %v, want 1.0", result.CompliancePct)
	}
}

// TestComputeStepPauseExcludedFromActiveTime verifies that paused weight
// leaves the compliance denominator: half the samples paused and the other
// half in band still scores 1.0.
func TestComputeStepPauseExcludedFromActiveTime(t *testing.T) {
	times := make([]*float64, 10)
	cadences := make([]*float64, 10)
	hrs := make([]*float64, 10)
	for i := 0; i < 10; i++ {
		times[i] = fptr(float64(15 + 30*i))
		hrs[i] = fptr(150)
		if i%2 == 0 {
			cadences[i] = fptr(0)
		} else {
			cadences[i] = fptr(90)
		}
	}
	stream := &models.TelemetryStream{Time: times, Cadence: cadences, Heartrate: hrs}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 300},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 300)
	if result.PauseSeconds != 150 {
		t.Errorf("pause = %d, want 150", result.PauseSeconds)
	}
	if result.TimeInRangeSeconds != 150 {
		t.Errorf("in_range = %d, want 150", result.TimeInRangeSeconds)
	}
	if result.CompliancePct != 1.0 {
		t.Errorf("compliance = %v, want 1.0 (pauses excluded from denominator)", result.CompliancePct)
	}
}

// TestComputeStepFullyPaused verifies the zero-active-time policy: a window
// where the athlete never moved is vacuously compliant.
func TestComputeStepFullyPaused(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:    fseq(10, 20, 30),
		Cadence: fseq(0, 0, 0),
	}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepRecovery,
		Duration: models.TimeDuration{Seconds: 60},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 100, Max: 120},
	}
	result := ComputeStep(step, stream, 0, 60)
	if result.CompliancePct != 1.0 {
		t.Errorf("compliance = %v, want 1.0", result.CompliancePct)
	}
	if result.PauseSeconds != 60 {
		t.Errorf("pause = %d, want 60", result.PauseSeconds)
	}
}

// TestComputeStepBucketSumProperty asserts the conservation property: the
// four buckets sum to the window duration within a tolerance bounded by
// the sample count (one truncation per bucket).
func TestComputeStepBucketSumProperty(t *testing.T) {
	n := 37
	times := make([]*float64, n)
	hrs := make([]*float64, n)
	cadences := make([]*float64, n)
	for i := 0; i < n; i++ {
		times[i] = fptr(float64(i)*7.3 + 2.1)
		hrs[i] = fptr(float64(120 + (i*13)%60))
		cad := 80.0
		if i%9 == 0 {
			cad = 0
		}
		cadences[i] = fptr(cad)
	}
	stream := &models.TelemetryStream{Time: times, Heartrate: hrs, Cadence: cadences}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepInterval,
		Duration: models.TimeDuration{Seconds: 270},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 270)

	sum := result.TimeInRangeSeconds + result.OvershootSeconds + result.UndershootSeconds + result.PauseSeconds
	if diff := result.DurationSeconds - sum; diff < 0 || diff > n {
		t.Errorf("bucket sum %d vs duration %d: off by %d, tolerance %d", sum, result.DurationSeconds, diff, n)
	}
	if result.CompliancePct < 0 || result.CompliancePct > 1 {
		t.Errorf("compliance %v out of [0,1]", result.CompliancePct)
	}
}

// TestComputeStepIdempotent verifies purity: identical inputs produce
// identical outputs on repeated calls.
func TestComputeStepIdempotent(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(5, 35, 65, 95, 125),
		Heartrate: fseq(145, 155, 165, 150, 140),
		Cadence:   fseq(90, 90, 0, 90, 90),
	}
	step := models.WorkoutStep{
		ID:       uuid.New(),
		Order:    2,
		Type:     models.StepInterval,
		Duration: models.TimeDuration{Seconds: 150},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	first := ComputeStep(step, stream, 0, 150)
	second := ComputeStep(step, stream, 0, 150)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ across calls: %+v vs %+v", first, second)
	}
}

// TestComputeStepDropsGapTimes verifies that indices with a missing time
// sample are dropped from the window rather than counted at zero.
func TestComputeStepDropsGapTimes(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      []*float64{fptr(10), nil, fptr(50)},
		Heartrate: fseq(150, 150, 170),
		Cadence:   fseq(90, 90, 90),
	}
	step := models.WorkoutStep{
		Order:    1,
		Type:     models.StepSteady,
		Duration: models.TimeDuration{Seconds: 100},
		Target:   models.RangeTarget{Metric: models.MetricHR, Min: 140, Max: 160},
	}
	result := ComputeStep(step, stream, 0, 100)
	// Window keeps indices 0 and 2: first covers [0,30), last [30,100).
	if result.TimeInRangeSeconds != 30 {
		t.Errorf("in_range = %d, want 30", result.TimeInRangeSeconds)
	}
	if result.OvershootSeconds != 70 {
		t.Errorf("overshoot = %d, want 70", result.OvershootSeconds)
	}
}
