package pwxconv

import (
	"fmt"
	"math"
	"strings"
)

// BuildConversionNotes renders a readable summary of converted workouts.
func BuildConversionNotes(target string, reports []WorkoutReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversion to %s: %d workout(s)\n", strings.ToUpper(target), len(reports))
	for _, r := range reports {
		b.WriteByte('\n')
		fmt.Fprintf(
			&b,
			"Workout %d: %s -> %s\n",
			r.Index,
			r.Sport,
			r.TargetSport,
		)
		if !r.StartTime.IsZero() {
			fmt.Fprintf(&b, "Start: %s\n", r.StartTime.UTC().Format("2006-01-02 15:04:05Z"))
		}
		if strings.TrimSpace(r.Device) != "" {
			fmt.Fprintf(&b, "Device: %s\n", strings.TrimSpace(r.Device))
		}
		fmt.Fprintf(
			&b,
			"Duration %s | Distance %.2f km | Samples %d",
			formatDuration(r.TotalSeconds()),
			r.TotalDistance()/1000.0,
			r.SampleCount,
		)
		if r.DroppedSamples > 0 {
			fmt.Fprintf(&b, " (%d dropped as invalid fixes)", r.DroppedSamples)
		}
		b.WriteByte('\n')

		if len(r.Laps) == 0 {
			continue
		}
		b.WriteString("Laps\n")
		for _, l := range r.Laps {
			m := l.Metrics
			fmt.Fprintf(
				&b,
				"- Lap %02d | %8s | %7.2f km | avg %5.1f / max %5.1f km/h | %4d kcal",
				l.Index,
				formatDuration(m.TotalSeconds),
				m.DistanceMeters/1000.0,
				mpsToKmh(m.AvgSpeedMps),
				mpsToKmh(m.MaxSpeedMps),
				m.Calories,
			)
			if m.AvgHeartRate != nil {
				fmt.Fprintf(&b, " | HR %.0f", *m.AvgHeartRate)
				if m.MaxHeartRate != nil {
					fmt.Fprintf(&b, "/%.0f", *m.MaxHeartRate)
				}
			}
			if l.SpeedInferred {
				b.WriteString(" | speed inferred")
			}
			b.WriteByte('\n')
		}
	}

	return strings.TrimSpace(b.String())
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

func mpsToKmh(v float64) float64 {
	if v <= 0 || !isFinite(v) {
		return 0
	}
	return v * 3.6
}
