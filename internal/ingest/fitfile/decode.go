// Package fitfile decodes activity FIT files into telemetry streams.
//
// Record messages carry sentinel values for absent fields (MaxUint8 for
// heart rate and cadence, MaxUint16 for power, non-finite scaled values
// for speed and altitude). Those become nil samples so downstream
// consumers see gaps rather than garbage readings.
package fitfile

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"

	"github.com/artachobruno/athletespace/internal/models"
)

// Result is a decoded activity: its telemetry on an elapsed-seconds time
// axis plus the session metadata needed to match it against a plan.
type Result struct {
	Sport     string
	StartTime time.Time
	Stream    *models.TelemetryStream
}

// DecodeFile reads and decodes the FIT file at path.
func DecodeFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes an activity FIT file from r. Files without record
// messages yield an empty stream.
func Decode(r io.Reader) (*Result, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("reading activity file: %w", err)
	}

	res := &Result{Stream: &models.TelemetryStream{}}
	if len(activity.Sessions) > 0 {
		session := activity.Sessions[0]
		res.Sport = fmt.Sprint(session.Sport)
		if !session.StartTime.IsZero() && !fit.IsBaseTime(session.StartTime) {
			res.StartTime = session.StartTime
		}
	}

	start := res.StartTime
	for _, rec := range activity.Records {
		if rec.Timestamp.IsZero() || fit.IsBaseTime(rec.Timestamp) {
			continue
		}
		if start.IsZero() {
			start = rec.Timestamp
		}
		appendRecord(res.Stream, rec, start)
	}
	if res.StartTime.IsZero() {
		res.StartTime = start
	}
	return res, nil
}

// appendRecord appends one sample per channel so all channels stay
// index-aligned with the time axis.
func appendRecord(stream *models.TelemetryStream, rec *fit.RecordMsg, start time.Time) {
	elapsed := rec.Timestamp.Sub(start).Seconds()
	stream.Time = append(stream.Time, &elapsed)
	stream.Heartrate = append(stream.Heartrate, sample(extractHeartRate(rec)))
	stream.VelocitySmooth = append(stream.VelocitySmooth, sample(extractSpeed(rec)))
	stream.Watts = append(stream.Watts, sample(extractPower(rec)))
	stream.Cadence = append(stream.Cadence, sample(extractCadence(rec)))
	stream.Altitude = append(stream.Altitude, sample(extractAltitude(rec)))
}

func sample(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func extractPower(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

// extractCadence prefers the fractional cadence field when present.
func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	cad256 := rec.GetCadence256Scaled()
	if isFinite(cad256) && cad256 > 0 {
		return cad256, true
	}
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.Cadence), true
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func extractAltitude(rec *fit.RecordMsg) (float64, bool) {
	alt := rec.GetEnhancedAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	alt = rec.GetAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	return 0, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
