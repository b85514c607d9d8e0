package models

import (
	"math"
	"testing"
)

func p(v float64) *float64 { return &v }

// TestStreamFromChannels verifies the wire-map constructor picks up known
// channels and ignores unknown ones.
func TestStreamFromChannels(t *testing.T) {
	s := StreamFromChannels(map[string][]*float64{
		"time":            {p(0), p(1)},
		"heartrate":       {p(140), p(141)},
		"velocity_smooth": {p(3.2), p(3.3)},
		"watts":           {p(200), nil},
		"cadence":         {p(88), p(89)},
		"altitude":        {p(120), p(121)},
		"grade_smooth":    {p(1.5), p(1.6)},
	})
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
	if s.Heartrate == nil || s.VelocitySmooth == nil || s.Watts == nil || s.Cadence == nil || s.Altitude == nil {
		t.Error("known channel dropped during construction")
	}
	if s.Channel("grade_smooth") != nil {
		t.Error("unknown channel should not be reachable")
	}
}

// TestStreamAt covers the absent cases the classifier depends on: nil
// stream, missing channel, out-of-bounds, gaps, and non-finite values.
func TestStreamAt(t *testing.T) {
	s := &TelemetryStream{
		Time:      []*float64{p(0), p(1), p(2), p(3)},
		Heartrate: []*float64{p(150), nil, p(math.NaN()), p(math.Inf(1))},
	}

	if v, ok := s.At(ChannelHeartrate, 0); !ok || v != 150 {
		t.Errorf("At(0) = %v, %v; want 150, true", v, ok)
	}
	for i := 1; i < 4; i++ {
		if _, ok := s.At(ChannelHeartrate, i); ok {
			t.Errorf("At(%d): want absent (gap or non-finite)", i)
		}
	}
	if _, ok := s.At(ChannelWatts, 0); ok {
		t.Error("missing channel should be absent")
	}
	if _, ok := s.At(ChannelHeartrate, 99); ok {
		t.Error("out-of-bounds index should be absent")
	}

	var nilStream *TelemetryStream
	if _, ok := nilStream.At(ChannelTime, 0); ok {
		t.Error("nil stream should be absent")
	}
	if nilStream.Len() != 0 || !nilStream.Empty() {
		t.Error("nil stream should be empty")
	}
}
