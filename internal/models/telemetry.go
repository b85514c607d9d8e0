package models

import "math"

// Telemetry channel names, as they appear on the Strava streams API.
// Time is the alignment axis: elapsed seconds since activity start.
const (
	ChannelTime      = "time"
	ChannelHeartrate = "heartrate"
	ChannelVelocity  = "velocity_smooth"
	ChannelWatts     = "watts"
	ChannelCadence   = "cadence"
	ChannelAltitude  = "altitude"
)

// TelemetryStream holds the recorded channels of one activity, index-aligned
// on Time. A whole channel may be nil (never recorded) and any individual
// sample may be nil (a gap at that index).
type TelemetryStream struct {
	Time           []*float64 `json:"time"`
	Heartrate      []*float64 `json:"heartrate,omitempty"`
	VelocitySmooth []*float64 `json:"velocity_smooth,omitempty"`
	Watts          []*float64 `json:"watts,omitempty"`
	Cadence        []*float64 `json:"cadence,omitempty"`
	Altitude       []*float64 `json:"altitude,omitempty"`
}

// StreamFromChannels builds a TelemetryStream from a channel-name keyed map,
// the shape telemetry arrives in from upstream providers. Unknown channel
// names are ignored.
func StreamFromChannels(channels map[string][]*float64) *TelemetryStream {
	s := &TelemetryStream{}
	for name, data := range channels {
		switch name {
		case ChannelTime:
			s.Time = data
		case ChannelHeartrate:
			s.Heartrate = data
		case ChannelVelocity:
			s.VelocitySmooth = data
		case ChannelWatts:
			s.Watts = data
		case ChannelCadence:
			s.Cadence = data
		case ChannelAltitude:
			s.Altitude = data
		}
	}
	return s
}

// Channel returns the samples for a channel name, or nil if the channel is
// absent or the name is unknown.
func (s *TelemetryStream) Channel(name string) []*float64 {
	if s == nil {
		return nil
	}
	switch name {
	case ChannelTime:
		return s.Time
	case ChannelHeartrate:
		return s.Heartrate
	case ChannelVelocity:
		return s.VelocitySmooth
	case ChannelWatts:
		return s.Watts
	case ChannelCadence:
		return s.Cadence
	case ChannelAltitude:
		return s.Altitude
	}
	return nil
}

// At returns the sample of a channel at index i. The second return is false
// when the channel is absent, the index is out of bounds, or the sample is
// missing or non-finite.
func (s *TelemetryStream) At(name string, i int) (float64, bool) {
	data := s.Channel(name)
	if i < 0 || i >= len(data) || data[i] == nil {
		return 0, false
	}
	v := *data[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Len returns the number of indices on the alignment axis.
func (s *TelemetryStream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Time)
}

// Empty reports whether the stream carries no alignable samples at all.
func (s *TelemetryStream) Empty() bool {
	return s.Len() == 0
}
