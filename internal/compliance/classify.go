package compliance

import "github.com/artachobruno/athletespace/internal/models"

// SampleClass is the verdict for one telemetry instant against one step.
type SampleClass int

const (
	ClassPause SampleClass = iota
	ClassInRange
	ClassOvershoot
	ClassUndershoot
)

// String returns the class name used in logs and test output.
func (c SampleClass) String() string {
	switch c {
	case ClassPause:
		return "pause"
	case ClassInRange:
		return "in_range"
	case ClassOvershoot:
		return "overshoot"
	case ClassUndershoot:
		return "undershoot"
	}
	return "unknown"
}

const (
	// PauseSpeedEpsilon is the speed in m/s below which the athlete is
	// considered stopped even if the recorder kept sampling.
	PauseSpeedEpsilon = 0.1

	// SingleValueRelTolerance is the relative band around a single-value
	// target inside which a sample still counts as on target.
	SingleValueRelTolerance = 0.01

	// SingleValueMinTolerance floors the tolerance so targets near zero
	// keep a usable band.
	SingleValueMinTolerance = 0.01
)

// ClassifySample classifies the telemetry at index i against a step target.
// The pause check runs first and is independent of the target: a sample can
// be paused on a step with no target at all. Missing telemetry never counts
// against the athlete — an absent target or an unresolvable metric both
// classify as in range.
func ClassifySample(i int, target models.Target, stream *models.TelemetryStream) SampleClass {
	if cad, ok := stream.At(models.ChannelCadence, i); ok && cad == 0 {
		return ClassPause
	}
	if v, ok := stream.At(models.ChannelVelocity, i); ok && v < PauseSpeedEpsilon {
		return ClassPause
	}

	if target == nil {
		return ClassInRange
	}

	value, ok := ResolveMetric(target.TargetMetric(), i, stream)
	if !ok {
		return ClassInRange
	}

	switch t := target.(type) {
	case models.RangeTarget:
		switch {
		case value >= t.Min && value <= t.Max:
			return ClassInRange
		case value > t.Max:
			return ClassOvershoot
		default:
			return ClassUndershoot
		}
	case models.SingleTarget:
		tol := SingleValueRelTolerance * abs(t.Value)
		if tol < SingleValueMinTolerance {
			tol = SingleValueMinTolerance
		}
		diff := value - t.Value
		switch {
		case abs(diff) <= tol:
			return ClassInRange
		case diff > 0:
			return ClassOvershoot
		default:
			return ClassUndershoot
		}
	}
	return ClassInRange
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
