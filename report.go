package pwxconv

import "time"

// LapReport is a flat, serializable view of one converted lap.
type LapReport struct {
	Index              int        `json:"index"`
	Name               string     `json:"name,omitempty"`
	StartOffsetSeconds float64    `json:"start_offset_seconds"`
	PointCount         int        `json:"point_count"`
	SpeedInferred      bool       `json:"speed_inferred"`
	Metrics            LapMetrics `json:"metrics"`
}

// WorkoutReport summarizes one converted workout.
type WorkoutReport struct {
	Index          int         `json:"index"`
	Sport          Sport       `json:"sport"`
	TargetSport    TargetSport `json:"target_sport"`
	StartTime      time.Time   `json:"start_time"`
	Device         string      `json:"device"`
	SampleCount    int         `json:"sample_count"`
	DroppedSamples int         `json:"dropped_samples"`
	Laps           []LapReport `json:"laps"`
}

// ReportLaps computes metrics for each lap.
func ReportLaps(laps []Lap) []LapReport {
	out := make([]LapReport, 0, len(laps))
	for _, l := range laps {
		out = append(out, LapReport{
			Index:              l.Index,
			Name:               l.Name,
			StartOffsetSeconds: l.StartOffset,
			PointCount:         len(l.Points),
			SpeedInferred:      l.SpeedInferred,
			Metrics:            ComputeLapMetrics(l),
		})
	}
	return out
}

// TotalDistance sums lap distances.
func (r WorkoutReport) TotalDistance() float64 {
	total := 0.0
	for _, l := range r.Laps {
		total += l.Metrics.DistanceMeters
	}
	return total
}

// TotalSeconds sums lap durations.
func (r WorkoutReport) TotalSeconds() float64 {
	total := 0.0
	for _, l := range r.Laps {
		total += l.Metrics.TotalSeconds
	}
	return total
}
