// Package pwxconv holds the workout model shared by the PWX and FIT decoders
// and the GPX and TCX encoders, plus lap segmentation and lap metrics.
package pwxconv

import "time"

// Sample is one recorded instant of a workout.
// Optional sensor channels are nil when the source did not record them.
type Sample struct {
	TimeOffset float64  `json:"time_offset_s"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Altitude   *float64 `json:"altitude_m,omitempty"`
	Distance   *float64 `json:"distance_m,omitempty"`
	Speed      float64  `json:"speed_mps"` // zero means unknown
	HeartRate  *float64 `json:"hr_bpm,omitempty"`
	Cadence    *float64 `json:"cadence_rpm,omitempty"`
	Power      *float64 `json:"power_w,omitempty"`
}

// HeartRateSummary holds aggregate heart rate values for a segment.
type HeartRateSummary struct {
	Avg *float64 `json:"avg_bpm,omitempty"`
	Max *float64 `json:"max_bpm,omitempty"`
}

// SegmentSummary carries authoritative aggregates. A nil field means "derive from points".
type SegmentSummary struct {
	Duration  *float64          `json:"duration_s,omitempty"`
	Distance  *float64          `json:"distance_m,omitempty"`
	Work      *float64          `json:"work_kj,omitempty"`
	HeartRate *HeartRateSummary `json:"hr,omitempty"`
}

// SegmentBoundary declares where a lap starts.
type SegmentBoundary struct {
	Name            string         `json:"name,omitempty"`
	BeginningOffset float64        `json:"beginning_offset_s"`
	Summary         SegmentSummary `json:"summary"`
}

// Device identifies the recording unit.
type Device struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

// Name is the make and model joined by a single space.
func (d Device) Name() string {
	return d.Make + " " + d.Model
}

// Workout is one recorded activity of a source document.
type Workout struct {
	StartTime  time.Time         `json:"start_time"`
	Sport      Sport             `json:"sport"`
	Device     Device            `json:"device"`
	Summary    SegmentSummary    `json:"summary"`
	Samples    []Sample          `json:"samples"`
	Boundaries []SegmentBoundary `json:"boundaries,omitempty"`
}

// Duration is the longer of the summary duration and the last sample offset.
func (w Workout) Duration() float64 {
	d := 0.0
	if w.Summary.Duration != nil {
		d = safePositive(*w.Summary.Duration)
	}
	if n := len(w.Samples); n > 0 && w.Samples[n-1].TimeOffset > d {
		d = w.Samples[n-1].TimeOffset
	}
	return d
}

// Clone copies the sample and boundary slices so lap assembly can write
// inferred speeds without touching the caller's workout.
func (w Workout) Clone() Workout {
	out := w
	out.Samples = append([]Sample(nil), w.Samples...)
	out.Boundaries = append([]SegmentBoundary(nil), w.Boundaries...)
	return out
}

// TimeAt converts a workout-relative offset into an absolute instant.
// Offsets are truncated to whole seconds.
func TimeAt(start time.Time, offset float64) time.Time {
	return start.Add(time.Duration(offset) * time.Second)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	out := v
	return &out
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
