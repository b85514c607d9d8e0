// Package compliance turns a planned workout and the telemetry recorded
// against it into a deterministic per-step and whole-workout verdict.
// Everything here is a pure function of its inputs: no I/O, no clock, no
// randomness, so distinct workouts can be scored concurrently without
// synchronization as long as each call gets its own input snapshot.
package compliance

import (
	"math"

	"github.com/artachobruno/athletespace/internal/models"
)

// metersPerKM converts a velocity in m/s to a pace in minutes per kilometer.
const metersPerKM = 1000.0

// ResolveMetric maps a target metric name onto its telemetry channel and
// returns the value at index i in the units targets are expressed in.
// The second return is false when the metric has no channel, the channel
// has no usable sample at i, or the value cannot be converted meaningfully
// (a velocity of zero has no pace).
func ResolveMetric(metric string, i int, stream *models.TelemetryStream) (float64, bool) {
	switch metric {
	case models.MetricPace:
		v, ok := stream.At(models.ChannelVelocity, i)
		if !ok || v <= 0 {
			// pace = 1000/(v*60) diverges as v approaches zero; a
			// non-positive velocity means there is no meaningful pace.
			return 0, false
		}
		pace := metersPerKM / (v * 60.0)
		if math.IsNaN(pace) || math.IsInf(pace, 0) {
			return 0, false
		}
		return pace, true
	case models.MetricHR:
		return stream.At(models.ChannelHeartrate, i)
	case models.MetricPower:
		return stream.At(models.ChannelWatts, i)
	}
	// rpe and any other metric name have no telemetry channel.
	return 0, false
}
