package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

// TestStepJSONRoundTrip verifies that every duration and target variant
// survives a marshal/unmarshal cycle with its concrete type intact.
func TestStepJSONRoundTrip(t *testing.T) {
	half := 0.5
	cases := []struct {
		name string
		step WorkoutStep
	}{
		{
			"time duration with pace range",
			WorkoutStep{ID: uuid.New(), Order: 1, Type: StepInterval,
				Duration: TimeDuration{Seconds: 300},
				Target:   RangeTarget{Metric: MetricPace, Min: 4.5, Max: 5.0}},
		},
		{
			"distance duration with power value",
			WorkoutStep{ID: uuid.New(), Order: 2, Type: StepSteady,
				Duration: DistanceDuration{Meters: 1000},
				Target:   SingleTarget{Metric: MetricPower, Value: 250}},
		},
		{
			"open duration without target",
			WorkoutStep{ID: uuid.New(), Order: 3, Type: StepFree,
				Duration: OpenDuration{}},
		},
		{
			"zero-valued single target",
			WorkoutStep{ID: uuid.New(), Order: 4, Type: StepRecovery,
				Duration: TimeDuration{Seconds: 60},
				Target:   SingleTarget{Metric: MetricHR, Value: half}},
		},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.step)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		var got WorkoutStep
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.step) {
			t.Errorf("%s: round trip = %+v, want %+v", tc.name, got, tc.step)
		}
	}
}

// TestStepJSONRejectsMalformed verifies that unknown duration types and
// incomplete targets fail decoding instead of silently degrading.
func TestStepJSONRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown duration type", `{"order":1,"type":"steady","duration":{"type":"laps","seconds":3}}`},
		{"missing duration type", `{"order":1,"type":"steady","duration":{}}`},
		{"target with only min", `{"order":1,"type":"steady","duration":{"type":"time","seconds":60},"target":{"metric":"hr","min":140}}`},
	}
	for _, tc := range cases {
		var step WorkoutStep
		if err := json.Unmarshal([]byte(tc.data), &step); err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
	}
}

// TestValidateSteps covers the planning-layer invariants: strictly
// increasing order, known types, and sane extents.
func TestValidateSteps(t *testing.T) {
	valid := []WorkoutStep{
		{Order: 1, Type: StepWarmup, Duration: TimeDuration{Seconds: 600}},
		{Order: 2, Type: StepInterval, Duration: TimeDuration{Seconds: 300},
			Target: RangeTarget{Metric: MetricPace, Min: 4.5, Max: 5.0}},
	}
	if err := ValidateSteps(valid); err != nil {
		t.Errorf("valid steps rejected: %v", err)
	}

	cases := []struct {
		name  string
		steps []WorkoutStep
	}{
		{"repeated order", []WorkoutStep{
			{Order: 1, Type: StepWarmup, Duration: TimeDuration{Seconds: 60}},
			{Order: 1, Type: StepSteady, Duration: TimeDuration{Seconds: 60}},
		}},
		{"decreasing order", []WorkoutStep{
			{Order: 2, Type: StepWarmup, Duration: TimeDuration{Seconds: 60}},
			{Order: 1, Type: StepSteady, Duration: TimeDuration{Seconds: 60}},
		}},
		{"unknown type", []WorkoutStep{
			{Order: 1, Type: "sprint", Duration: TimeDuration{Seconds: 60}},
		}},
		{"negative seconds", []WorkoutStep{
			{Order: 1, Type: StepSteady, Duration: TimeDuration{Seconds: -10}},
		}},
		{"missing duration", []WorkoutStep{
			{Order: 1, Type: StepSteady},
		}},
		{"inverted range", []WorkoutStep{
			{Order: 1, Type: StepSteady, Duration: TimeDuration{Seconds: 60},
				Target: RangeTarget{Metric: MetricHR, Min: 160, Max: 140}},
		}},
	}
	for _, tc := range cases {
		if err := ValidateSteps(tc.steps); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// TestTotalPlannedSeconds verifies that only time-based steps contribute.
func TestTotalPlannedSeconds(t *testing.T) {
	w := Workout{Steps: []WorkoutStep{
		{Order: 1, Duration: TimeDuration{Seconds: 600}},
		{Order: 2, Duration: DistanceDuration{Meters: 1000}},
		{Order: 3, Duration: TimeDuration{Seconds: 300}},
		{Order: 4, Duration: OpenDuration{}},
	}}
	if got := w.TotalPlannedSeconds(); got != 900 {
		t.Errorf("total = %d, want 900", got)
	}
}
