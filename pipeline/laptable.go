package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

var lapTableHeader = []string{
	"workout_index", "sport", "lap_index", "lap_name", "start_offset_s", "point_count",
	"total_seconds", "distance_m", "max_speed_mps", "avg_speed_mps", "calories",
	"avg_hr_bpm", "max_hr_bpm", "speed_inferred",
}

// lapRow is one lap of one workout, flattened for tabular output.
type lapRow struct {
	WorkoutIndex  int
	Sport         string
	LapIndex      int
	LapName       string
	StartOffsetS  float64
	PointCount    int
	TotalSeconds  float64
	DistanceM     float64
	MaxSpeedMps   float64
	AvgSpeedMps   float64
	Calories      int
	AvgHRBPM      *float64
	MaxHRBPM      *float64
	SpeedInferred bool
}

func lapRows(reports []pwxconv.WorkoutReport) []lapRow {
	var rows []lapRow
	for _, r := range reports {
		for _, l := range r.Laps {
			m := l.Metrics
			rows = append(rows, lapRow{
				WorkoutIndex:  r.Index,
				Sport:         string(r.Sport),
				LapIndex:      l.Index,
				LapName:       l.Name,
				StartOffsetS:  l.StartOffsetSeconds,
				PointCount:    l.PointCount,
				TotalSeconds:  m.TotalSeconds,
				DistanceM:     m.DistanceMeters,
				MaxSpeedMps:   m.MaxSpeedMps,
				AvgSpeedMps:   m.AvgSpeedMps,
				Calories:      int(m.Calories),
				AvgHRBPM:      m.AvgHeartRate,
				MaxHRBPM:      m.MaxHeartRate,
				SpeedInferred: l.SpeedInferred,
			})
		}
	}
	return rows
}

// lapTableName is the artifact file name for a lap table format, or "" when
// no table is written.
func lapTableName(format string) string {
	switch format {
	case LapTableCSV:
		return "laps.csv"
	case LapTableParquet:
		return "laps.parquet"
	default:
		return ""
	}
}

func marshalLapTable(format string, reports []pwxconv.WorkoutReport) ([]byte, error) {
	rows := lapRows(reports)
	switch format {
	case LapTableCSV:
		return marshalLapCSV(rows)
	case LapTableParquet:
		return marshalLapParquet(rows)
	default:
		return nil, fmt.Errorf("unsupported lap table format %q", format)
	}
}

func marshalLapCSV(rows []lapRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(lapTableHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.WorkoutIndex),
			r.Sport,
			strconv.Itoa(r.LapIndex),
			r.LapName,
			formatFloat(r.StartOffsetS),
			strconv.Itoa(r.PointCount),
			formatFloat(r.TotalSeconds),
			formatFloat(r.DistanceM),
			formatFloat(r.MaxSpeedMps),
			formatFloat(r.AvgSpeedMps),
			strconv.Itoa(r.Calories),
			formatFloatPtr(r.AvgHRBPM),
			formatFloatPtr(r.MaxHRBPM),
			strconv.FormatBool(r.SpeedInferred),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
