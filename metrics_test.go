package pwxconv

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLapCalories(t *testing.T) {
	tests := []struct {
		work *float64
		want uint16
	}{
		{nil, 0},
		{Float(0), 0},
		{Float(-5), 0},
		{Float(100), 24},
		{Float(2.1), 1},
		{Float(1e6), math.MaxUint16},
		{Float(math.NaN()), 0},
	}
	for _, tc := range tests {
		if got := LapCalories(SegmentSummary{Work: tc.work}); got != tc.want {
			t.Fatalf("LapCalories(%v) = %d, want %d", valueOrZero(tc.work), got, tc.want)
		}
	}
}

func TestLapTotalSeconds(t *testing.T) {
	points := []Sample{{TimeOffset: 10}, {TimeOffset: 25}}
	tests := []struct {
		name string
		lap  Lap
		want float64
	}{
		{"summary", Lap{StartOffset: 0, EndOffset: 100, Summary: SegmentSummary{Duration: Float(90)}}, 90},
		{"window", Lap{StartOffset: 10, EndOffset: 70}, 60},
		{"final lap", Lap{StartOffset: 5, EndOffset: math.Inf(1), Points: points}, 20},
		{"final lap without points", Lap{StartOffset: 5, EndOffset: math.Inf(1)}, 0},
		{"negative summary", Lap{EndOffset: 10, Summary: SegmentSummary{Duration: Float(-3)}}, 0},
	}
	for _, tc := range tests {
		if got := LapTotalSeconds(tc.lap); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestLapDistance(t *testing.T) {
	points := []Sample{{Distance: Float(100)}, {}, {Distance: Float(350)}, {Distance: Float(300)}}
	if got := LapDistance(Lap{Points: points}); got != 350 {
		t.Fatalf("point fallback: got %v want 350", got)
	}
	if got := LapDistance(Lap{Points: points, Summary: SegmentSummary{Distance: Float(400)}}); got != 400 {
		t.Fatalf("summary distance: got %v want 400", got)
	}
	if got := LapDistance(Lap{}); got != 0 {
		t.Fatalf("empty lap: got %v want 0", got)
	}
}

func TestLapMaxSpeed(t *testing.T) {
	points := []Sample{
		{TimeOffset: 0, Speed: 3, Distance: Float(10)},
		{TimeOffset: 1, Speed: 4, Distance: Float(20)},
		{TimeOffset: 3, Speed: 2, Distance: Float(24)},
	}
	if got := LapMaxSpeed(points); got != 10 {
		t.Fatalf("pair speed should win: got %v want 10", got)
	}
	points[0].Speed = 12
	if got := LapMaxSpeed(points); got != 12 {
		t.Fatalf("point speed should win: got %v want 12", got)
	}
	if got := LapMaxSpeed(nil); got != 0 {
		t.Fatalf("empty lap: got %v want 0", got)
	}
}

func TestAverageSpeed(t *testing.T) {
	if got := AverageSpeed(100, 50); got != 2 {
		t.Fatalf("got %v want 2", got)
	}
	if got := AverageSpeed(100, 0); got != 0 {
		t.Fatalf("zero duration: got %v want 0", got)
	}
}

func TestComputeLapMetrics(t *testing.T) {
	l := Lap{
		StartOffset: 0,
		EndOffset:   60,
		Points: []Sample{
			{TimeOffset: 0, Speed: 4, Distance: Float(10)},
			{TimeOffset: 30, Speed: 5, Distance: Float(160)},
		},
		Summary: SegmentSummary{
			Work:      Float(50),
			HeartRate: &HeartRateSummary{Avg: Float(140), Max: Float(171)},
		},
	}
	want := LapMetrics{
		TotalSeconds:   60,
		DistanceMeters: 160,
		MaxSpeedMps:    5,
		AvgSpeedMps:    160.0 / 60.0,
		Calories:       12,
		AvgHeartRate:   Float(140),
		MaxHeartRate:   Float(171),
	}
	if diff := cmp.Diff(want, ComputeLapMetrics(l)); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeAtTruncatesOffsets(t *testing.T) {
	start := time.Date(2013, 1, 20, 9, 15, 0, 0, time.UTC)
	if got := TimeAt(start, 1.7); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("got %v want %v", got, start.Add(time.Second))
	}
	if got := TimeAt(start, 3600); !got.Equal(start.Add(time.Hour)) {
		t.Fatalf("got %v want %v", got, start.Add(time.Hour))
	}
}
