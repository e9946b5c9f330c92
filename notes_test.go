package pwxconv

import (
	"strings"
	"testing"
	"time"
)

func TestBuildConversionNotes(t *testing.T) {
	reports := []WorkoutReport{
		{
			Index:          1,
			Sport:          SportMountainBike,
			TargetSport:    TargetBiking,
			StartTime:      time.Date(2013, 1, 20, 9, 15, 0, 0, time.FixedZone("CET", 3600)),
			Device:         " Timex Cycle Trainer ",
			SampleCount:    3600,
			DroppedSamples: 4,
			Laps: []LapReport{
				{
					Index:         1,
					SpeedInferred: true,
					Metrics: LapMetrics{
						TotalSeconds:   3725,
						DistanceMeters: 30500,
						AvgSpeedMps:    8.1879,
						MaxSpeedMps:    12.5,
						Calories:       812,
						AvgHeartRate:   Float(142),
						MaxHeartRate:   Float(171),
					},
				},
			},
		},
		{Index: 2, Sport: SportSwim, TargetSport: TargetOther},
	}

	notes := BuildConversionNotes("tcx", reports)
	want := []string{
		"Conversion to TCX: 2 workout(s)",
		"Workout 1: Mountain Bike -> Biking",
		"Start: 2013-01-20 08:15:00Z",
		"Device: Timex Cycle Trainer",
		"Duration 1h02m05s | Distance 30.50 km | Samples 3600 (4 dropped as invalid fixes)",
		"- Lap 01 | 1h02m05s |   30.50 km | avg  29.5 / max  45.0 km/h |  812 kcal | HR 142/171 | speed inferred",
		"Workout 2: Swim -> Other",
		"Duration 0s | Distance 0.00 km | Samples 0",
	}
	for _, line := range want {
		if !strings.Contains(notes, line) {
			t.Fatalf("notes missing %q:\n%s", line, notes)
		}
	}
	if strings.Count(notes, "Laps\n") != 1 {
		t.Fatalf("lap header should only appear for workouts with laps:\n%s", notes)
	}
	if strings.Contains(notes, "Start: 0001") {
		t.Fatalf("zero start time should be omitted:\n%s", notes)
	}
}
