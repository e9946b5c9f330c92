// Package fitsource maps FIT activity files onto the converter's workout model
// so they can be projected to GPX and TCX like PWX documents.
package fitsource

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/tormoder/fit"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

// Decode reads a FIT activity file. The file yields a single workout: records
// become samples, laps become segment boundaries and the first session
// supplies the sport and workout summary.
func Decode(r io.Reader) ([]pwxconv.Workout, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, decodeError(fmt.Errorf("decode FIT file: %w", err))
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, decodeError(fmt.Errorf("activity FIT expected: %w", err))
	}

	var session *fit.SessionMsg
	if len(activity.Sessions) > 0 {
		session = activity.Sessions[0]
	}
	start := startTime(session, activity.Records)
	if start.IsZero() {
		return nil, decodeError(errors.New("activity has no valid start time"))
	}

	w := pwxconv.Workout{
		StartTime: start,
		Sport:     pwxconv.SportOther,
		Device:    device(&decoded.FileId),
		Samples:   make([]pwxconv.Sample, 0, len(activity.Records)),
	}
	if session != nil {
		w.Sport = mapSport(session.Sport, session.SubSport)
		w.Summary = summary(
			session.GetTotalTimerTimeScaled(),
			session.GetTotalDistanceScaled(),
			session.TotalWork,
			session.AvgHeartRate,
			session.MaxHeartRate,
		)
	}

	for _, rec := range activity.Records {
		if validTimeOrZero(rec.Timestamp).IsZero() {
			continue
		}
		w.Samples = append(w.Samples, sampleFromRecord(rec, start))
	}

	for _, lap := range activity.Laps {
		lapStart := validTimeOrZero(lap.StartTime)
		if lapStart.IsZero() {
			continue
		}
		w.Boundaries = append(w.Boundaries, pwxconv.SegmentBoundary{
			BeginningOffset: math.Max(0, lapStart.Sub(start).Seconds()),
			Summary: summary(
				lap.GetTotalTimerTimeScaled(),
				lap.GetTotalDistanceScaled(),
				lap.TotalWork,
				lap.AvgHeartRate,
				lap.MaxHeartRate,
			),
		})
	}
	return []pwxconv.Workout{w}, nil
}

func decodeError(err error) error {
	return &pwxconv.DecodeError{Source: "fit", Err: err}
}

func startTime(session *fit.SessionMsg, records []*fit.RecordMsg) time.Time {
	if session != nil {
		if t := validTimeOrZero(session.StartTime); !t.IsZero() {
			return t
		}
	}
	for _, rec := range records {
		if t := validTimeOrZero(rec.Timestamp); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

func device(id *fit.FileIdMsg) pwxconv.Device {
	d := pwxconv.Device{}
	if id.Manufacturer != fit.ManufacturerInvalid {
		d.Make = strings.TrimSpace(fmt.Sprint(id.Manufacturer))
	}
	if id.Product != math.MaxUint16 {
		d.Model = strings.TrimSpace(fmt.Sprint(id.GetProduct()))
	}
	return d
}

func mapSport(sport fit.Sport, sub fit.SubSport) pwxconv.Sport {
	switch sport {
	case fit.SportCycling:
		if sub == fit.SubSportMountain {
			return pwxconv.SportMountainBike
		}
		return pwxconv.SportBike
	case fit.SportRunning:
		return pwxconv.SportRun
	case fit.SportSwimming:
		return pwxconv.SportSwim
	case fit.SportWalking:
		return pwxconv.SportWalk
	case fit.SportRowing:
		return pwxconv.SportRowing
	case fit.SportCrossCountrySkiing:
		return pwxconv.SportXCSki
	case fit.SportMultisport:
		return pwxconv.SportBrick
	case fit.SportTraining:
		if sub == fit.SubSportStrengthTraining {
			return pwxconv.SportStrength
		}
		return pwxconv.SportCrossTrain
	default:
		return pwxconv.SportOther
	}
}

func summary(timerSeconds, distanceMeters float64, workJoules uint32, avgHR, maxHR uint8) pwxconv.SegmentSummary {
	s := pwxconv.SegmentSummary{
		Duration: finite(timerSeconds),
		Distance: finite(distanceMeters),
	}
	if workJoules != math.MaxUint32 {
		s.Work = pwxconv.Float(float64(workJoules) / 1000.0)
	}
	avg, max := heartRate(avgHR), heartRate(maxHR)
	if avg != nil || max != nil {
		s.HeartRate = &pwxconv.HeartRateSummary{Avg: avg, Max: max}
	}
	return s
}

func sampleFromRecord(rec *fit.RecordMsg, start time.Time) pwxconv.Sample {
	s := pwxconv.Sample{
		TimeOffset: rec.Timestamp.Sub(start).Seconds(),
		Distance:   finite(rec.GetDistanceScaled()),
		HeartRate:  heartRate(rec.HeartRate),
	}
	if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
		s.Lat = pwxconv.Float(rec.PositionLat.Degrees())
		s.Lon = pwxconv.Float(rec.PositionLong.Degrees())
	}
	if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
		s.Altitude = pwxconv.Float(alt)
	} else if alt := rec.GetAltitudeScaled(); isFinite(alt) {
		s.Altitude = pwxconv.Float(alt)
	}
	if speed, ok := extractSpeed(rec); ok {
		s.Speed = speed
	}
	if rec.Cadence != math.MaxUint8 {
		s.Cadence = pwxconv.Float(float64(rec.Cadence))
	}
	if rec.Power != math.MaxUint16 {
		s.Power = pwxconv.Float(float64(rec.Power))
	}
	return s
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func heartRate(v uint8) *float64 {
	if v == math.MaxUint8 || v == 0 {
		return nil
	}
	return pwxconv.Float(float64(v))
}

func finite(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return pwxconv.Float(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}
