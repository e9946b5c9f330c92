package pwxconv

import (
	"math"
	"sort"
)

// LastPointMode selects how speed inference fills the final point of a lap.
type LastPointMode int

const (
	// LastPointLegacy copies the cumulative distance of the point before the last
	// one into the last point's speed. Downstream files produced by earlier
	// converter releases carry this value, so it stays the default.
	LastPointLegacy LastPointMode = iota
	// LastPointCarry repeats the speed inferred for the point before the last one.
	LastPointCarry
)

// Lap is a contiguous window of a workout's samples.
type Lap struct {
	Index       int
	Name        string
	StartOffset float64
	EndOffset   float64 // +Inf for the final lap
	// Points is a sub-slice of the sample stream handed to SplitLaps.
	Points        []Sample
	Summary       SegmentSummary
	SpeedInferred bool
}

// Final reports whether the lap is open-ended.
func (l Lap) Final() bool {
	return math.IsInf(l.EndOffset, 1)
}

// ValidateBoundaries checks that the workout's boundaries are sorted by
// beginning offset and fall inside [0, workout duration].
func ValidateBoundaries(w Workout) error {
	duration := w.Duration()
	prev := math.Inf(-1)
	for i, b := range w.Boundaries {
		if !isFinite(b.BeginningOffset) || b.BeginningOffset < 0 || b.BeginningOffset > duration {
			return &SegmentationError{
				Index:  i,
				Offset: b.BeginningOffset,
				Reason: "boundary outside workout duration",
			}
		}
		if b.BeginningOffset < prev {
			return &SegmentationError{
				Index:  i,
				Offset: b.BeginningOffset,
				Reason: "boundaries not sorted by beginning offset",
			}
		}
		prev = b.BeginningOffset
	}
	return nil
}

// SplitLaps partitions samples into laps using the segment boundaries. Without
// boundaries a single lap starting at offset 0 carries the workout summary.
//
// Each lap owns the half-open window [beginning, next beginning); the final lap
// is open-ended and samples recorded before the first boundary are folded into
// the first lap, whose start moves back to the earliest of them, so every sample
// lands in exactly one lap and inside its lap's window. Speed inference runs
// once per lap right after its points are assembled and writes into samples.
func SplitLaps(samples []Sample, boundaries []SegmentBoundary, workoutSummary SegmentSummary, mode LastPointMode) ([]Lap, error) {
	for i := 1; i < len(samples); i++ {
		if samples[i].TimeOffset < samples[i-1].TimeOffset {
			return nil, &SegmentationError{
				Index:  i,
				Offset: samples[i].TimeOffset,
				Reason: "samples not ordered by time offset",
			}
		}
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i].BeginningOffset < boundaries[i-1].BeginningOffset {
			return nil, &SegmentationError{
				Index:  i,
				Offset: boundaries[i].BeginningOffset,
				Reason: "boundaries not sorted by beginning offset",
			}
		}
	}

	if len(boundaries) == 0 {
		boundaries = []SegmentBoundary{{BeginningOffset: 0, Summary: workoutSummary}}
	}

	laps := make([]Lap, 0, len(boundaries))
	lo := 0
	for i, b := range boundaries {
		end := math.Inf(1)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].BeginningOffset
		}
		hi := indexAtOrAfter(samples, end)
		if hi < lo {
			hi = lo
		}
		start := b.BeginningOffset
		if i == 0 && hi > lo && samples[0].TimeOffset < start {
			start = samples[0].TimeOffset
		}
		lap := Lap{
			Index:       i + 1,
			Name:        b.Name,
			StartOffset: start,
			EndOffset:   end,
			Points:      samples[lo:hi:hi],
			Summary:     b.Summary,
		}
		lap.SpeedInferred = InferSpeeds(lap.Points, mode)
		laps = append(laps, lap)
		lo = hi
	}
	return laps, nil
}

func indexAtOrAfter(samples []Sample, offset float64) int {
	if math.IsInf(offset, 1) {
		return len(samples)
	}
	return sort.Search(len(samples), func(i int) bool {
		return samples[i].TimeOffset >= offset
	})
}

// InferSpeeds estimates per-point speed from cumulative distance when no point
// in the lap carries a recorded speed. It reports whether speeds were written.
// Points without positive distance keep their zero speed.
func InferSpeeds(points []Sample, mode LastPointMode) bool {
	if len(points) < 2 {
		return false
	}
	for _, p := range points {
		if p.Speed != 0 {
			return false
		}
	}

	n := len(points)
	for i := 0; i < n-1; i++ {
		if v, ok := pairSpeed(points[i], points[i+1]); ok {
			points[i].Speed = v
		}
	}
	switch mode {
	case LastPointCarry:
		points[n-1].Speed = points[n-2].Speed
	default:
		points[n-1].Speed = valueOrZero(points[n-2].Distance)
	}
	return true
}

// pairSpeed is the average speed between consecutive points that both carry a
// positive cumulative distance.
func pairSpeed(a, b Sample) (float64, bool) {
	da, db := valueOrZero(a.Distance), valueOrZero(b.Distance)
	if da <= 0 || db <= 0 {
		return 0, false
	}
	dt := b.TimeOffset - a.TimeOffset
	if dt <= 0 {
		return 0, false
	}
	return (db - da) / dt, true
}

// DropInvalidFixes removes samples whose position, distance and altitude are
// all zero, which marks a sensor dropout. The input slice is not modified.
func DropInvalidFixes(samples []Sample) ([]Sample, int) {
	kept := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if valueOrZero(s.Lat) == 0 && valueOrZero(s.Lon) == 0 && valueOrZero(s.Distance) == 0 && valueOrZero(s.Altitude) == 0 {
			continue
		}
		kept = append(kept, s)
	}
	return kept, len(samples) - len(kept)
}
