//go:build !js

package pipeline

import (
	"bytes"
	"testing"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

func TestMarshalLapParquet(t *testing.T) {
	reports := []pwxconv.WorkoutReport{{
		Index: 1,
		Sport: pwxconv.SportBike,
		Laps: []pwxconv.LapReport{
			{Index: 1, Name: "Warmup", PointCount: 3, Metrics: pwxconv.LapMetrics{TotalSeconds: 60, DistanceMeters: 400}},
			{Index: 2, PointCount: 2, Metrics: pwxconv.LapMetrics{TotalSeconds: 30, AvgHeartRate: pwxconv.Float(140)}},
		},
	}}

	data, err := marshalLapTable(LapTableParquet, reports)
	if err != nil {
		t.Fatalf("marshalLapTable error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) || !bytes.HasSuffix(data, []byte("PAR1")) {
		t.Fatalf("output is not a parquet file (%d bytes)", len(data))
	}
}
