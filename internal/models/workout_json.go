package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire form of a step. Duration and Target are tagged objects so the two
// unions survive a JSON round trip:
//
//	{"order":1,"type":"interval",
//	 "duration":{"type":"time","seconds":300},
//	 "target":{"metric":"pace","min":4.5,"max":5.0}}
type stepJSON struct {
	ID       uuid.UUID     `json:"id,omitempty"`
	Order    int           `json:"order"`
	Type     StepType      `json:"type"`
	Duration durationJSON  `json:"duration"`
	Target   *targetJSON   `json:"target,omitempty"`
}

type durationJSON struct {
	Type    string `json:"type"` // time | distance | open
	Seconds int    `json:"seconds,omitempty"`
	Meters  int    `json:"meters,omitempty"`
}

type targetJSON struct {
	Metric string   `json:"metric"`
	Value  *float64 `json:"value,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s WorkoutStep) MarshalJSON() ([]byte, error) {
	out := stepJSON{ID: s.ID, Order: s.Order, Type: s.Type}

	switch d := s.Duration.(type) {
	case TimeDuration:
		out.Duration = durationJSON{Type: "time", Seconds: d.Seconds}
	case DistanceDuration:
		out.Duration = durationJSON{Type: "distance", Meters: d.Meters}
	case OpenDuration:
		out.Duration = durationJSON{Type: "open"}
	default:
		return nil, fmt.Errorf("step %d: unknown duration variant %T", s.Order, s.Duration)
	}

	switch t := s.Target.(type) {
	case SingleTarget:
		v := t.Value
		out.Target = &targetJSON{Metric: t.Metric, Value: &v}
	case RangeTarget:
		lo, hi := t.Min, t.Max
		out.Target = &targetJSON{Metric: t.Metric, Min: &lo, Max: &hi}
	case nil:
	default:
		return nil, fmt.Errorf("step %d: unknown target variant %T", s.Order, s.Target)
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *WorkoutStep) UnmarshalJSON(data []byte) error {
	var in stepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	s.ID = in.ID
	s.Order = in.Order
	s.Type = in.Type

	switch in.Duration.Type {
	case "time":
		s.Duration = TimeDuration{Seconds: in.Duration.Seconds}
	case "distance":
		s.Duration = DistanceDuration{Meters: in.Duration.Meters}
	case "open":
		s.Duration = OpenDuration{}
	default:
		return fmt.Errorf("step %d: unknown duration type %q", in.Order, in.Duration.Type)
	}

	s.Target = nil
	if in.Target != nil {
		switch {
		case in.Target.Value != nil:
			s.Target = SingleTarget{Metric: in.Target.Metric, Value: *in.Target.Value}
		case in.Target.Min != nil && in.Target.Max != nil:
			s.Target = RangeTarget{Metric: in.Target.Metric, Min: *in.Target.Min, Max: *in.Target.Max}
		default:
			return fmt.Errorf("step %d: target needs either value or min+max", in.Order)
		}
	}

	return nil
}
