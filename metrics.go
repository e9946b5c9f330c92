package pwxconv

import "math"

// KilojoulesToKilocalories converts mechanical work into the calorie figure
// reported on laps.
const KilojoulesToKilocalories = 0.239

// LapMetrics are the derived values reported for one lap.
type LapMetrics struct {
	TotalSeconds   float64  `json:"total_seconds"`
	DistanceMeters float64  `json:"distance_meters"`
	MaxSpeedMps    float64  `json:"max_speed_mps"`
	AvgSpeedMps    float64  `json:"avg_speed_mps"`
	Calories       uint16   `json:"calories"`
	AvgHeartRate   *float64 `json:"avg_heart_rate_bpm,omitempty"`
	MaxHeartRate   *float64 `json:"max_heart_rate_bpm,omitempty"`
}

// ComputeLapMetrics derives every reported value for a lap.
func ComputeLapMetrics(l Lap) LapMetrics {
	m := LapMetrics{
		TotalSeconds:   LapTotalSeconds(l),
		DistanceMeters: LapDistance(l),
		MaxSpeedMps:    LapMaxSpeed(l.Points),
		Calories:       LapCalories(l.Summary),
	}
	m.AvgSpeedMps = AverageSpeed(m.DistanceMeters, m.TotalSeconds)
	if hr := l.Summary.HeartRate; hr != nil {
		m.AvgHeartRate = hr.Avg
		m.MaxHeartRate = hr.Max
	}
	return m
}

// LapDistance prefers the summary distance and falls back to the largest
// cumulative distance among the lap's points.
func LapDistance(l Lap) float64 {
	if l.Summary.Distance != nil {
		return *l.Summary.Distance
	}
	distances := make([]float64, 0, len(l.Points))
	for _, p := range l.Points {
		if p.Distance != nil {
			distances = append(distances, *p.Distance)
		}
	}
	return maxValue(distances)
}

// LapMaxSpeed is the larger of the highest point speed and the highest average
// speed between consecutive points with positive distance.
func LapMaxSpeed(points []Sample) float64 {
	speeds := make([]float64, 0, len(points))
	for _, p := range points {
		speeds = append(speeds, p.Speed)
	}
	maxPoint := maxValue(speeds)

	maxPair := 0.0
	for i := 0; i+1 < len(points); i++ {
		if v, ok := pairSpeed(points[i], points[i+1]); ok && isFinite(v) && v > maxPair {
			maxPair = v
		}
	}
	return math.Max(maxPoint, maxPair)
}

// LapCalories converts summary work in kJ to rounded kilocalories. Missing or
// non-positive work yields zero.
func LapCalories(s SegmentSummary) uint16 {
	if s.Work == nil {
		return 0
	}
	kcal := math.Round(safePositive(*s.Work) * KilojoulesToKilocalories)
	if kcal > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(kcal)
}

// LapTotalSeconds prefers the summary duration. Otherwise it uses the lap
// window, or the span to the last point for the open-ended final lap.
func LapTotalSeconds(l Lap) float64 {
	if l.Summary.Duration != nil {
		return safePositive(*l.Summary.Duration)
	}
	if !l.Final() {
		return safePositive(l.EndOffset - l.StartOffset)
	}
	if n := len(l.Points); n > 0 {
		return safePositive(l.Points[n-1].TimeOffset - l.StartOffset)
	}
	return 0
}

// AverageSpeed divides distance by duration and reports zero for a zero duration.
func AverageSpeed(distance, seconds float64) float64 {
	return safeDiv(distance, seconds)
}
