package compliance

import (
	"math"
	"testing"

	"github.com/artachobruno/athletespace/internal/models"
)

// TestResolvePace verifies the velocity-to-pace conversion: a velocity in
// m/s resolves to minutes per kilometer.
func TestResolvePace(t *testing.T) {
	cases := []struct {
		velocity float64
		wantPace float64
	}{
		{3.3333333333, 5.0},  // 12 km/h is 5:00/km
		{2.7777777778, 6.0},  // 10 km/h is 6:00/km
		{velocityForPace(4.7), 4.7},
	}
	for _, tc := range cases {
		stream := &models.TelemetryStream{
			Time:           fseq(0),
			VelocitySmooth: fseq(tc.velocity),
		}
		got, ok := ResolveMetric(models.MetricPace, 0, stream)
		if !ok {
			t.Fatalf("velocity %v: expected pace to resolve", tc.velocity)
		}
		if math.Abs(got-tc.wantPace) > 1e-6 {
			t.Errorf("velocity %v: pace = %v, want %v", tc.velocity, got, tc.wantPace)
		}
	}
}

// TestResolvePaceNonPositiveVelocity verifies that zero or negative velocity
// resolves to absent rather than an infinite pace leaking into comparisons.
func TestResolvePaceNonPositiveVelocity(t *testing.T) {
	for _, v := range []float64{0, -1.5} {
		stream := &models.TelemetryStream{
			Time:           fseq(0),
			VelocitySmooth: fseq(v),
		}
		if got, ok := ResolveMetric(models.MetricPace, 0, stream); ok {
			t.Errorf("velocity %v: resolved to %v, want absent", v, got)
		}
	}
}

// TestResolvePassthroughMetrics verifies that hr and power resolve to their
// channel values unchanged.
func TestResolvePassthroughMetrics(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(0),
		Heartrate: fseq(152),
		Watts:     fseq(248),
	}
	if got, ok := ResolveMetric(models.MetricHR, 0, stream); !ok || got != 152 {
		t.Errorf("hr = %v (ok=%v), want 152", got, ok)
	}
	if got, ok := ResolveMetric(models.MetricPower, 0, stream); !ok || got != 248 {
		t.Errorf("power = %v (ok=%v), want 248", got, ok)
	}
}

// TestResolveAbsent covers the absent cases: unknown metric, missing
// channel, out-of-bounds index, and a sample gap.
func TestResolveAbsent(t *testing.T) {
	stream := &models.TelemetryStream{
		Time:      fseq(0, 1),
		Heartrate: []*float64{fptr(150), nil},
	}
	cases := []struct {
		name   string
		metric string
		index  int
	}{
		{"rpe has no channel", models.MetricRPE, 0},
		{"power channel missing", models.MetricPower, 0},
		{"index out of bounds", models.MetricHR, 5},
		{"negative index", models.MetricHR, -1},
		{"sample gap", models.MetricHR, 1},
	}
	for _, tc := range cases {
		if got, ok := ResolveMetric(tc.metric, tc.index, stream); ok {
			t.Errorf("%s: resolved to %v, want absent", tc.name, got)
		}
	}
}
