package fitsource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tormoder/fit"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

var fixtureStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

func TestDecodeMapsActivity(t *testing.T) {
	data := buildTestFIT(t)

	workouts, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(workouts) != 1 {
		t.Fatalf("expected one workout, got %d", len(workouts))
	}
	w := workouts[0]

	if !w.StartTime.Equal(fixtureStart) {
		t.Fatalf("unexpected start: %v", w.StartTime)
	}
	if w.Sport != pwxconv.SportMountainBike {
		t.Fatalf("unexpected sport: %q", w.Sport)
	}
	if w.Device.Make != "Garmin" {
		t.Fatalf("unexpected device make: %q", w.Device.Make)
	}
	if w.Summary.Duration == nil || *w.Summary.Duration != 120 {
		t.Fatalf("unexpected session duration: %v", w.Summary.Duration)
	}
	if w.Summary.Work == nil || *w.Summary.Work != 50 {
		t.Fatalf("unexpected session work: %v", w.Summary.Work)
	}

	if len(w.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(w.Samples))
	}
	first := w.Samples[0]
	if first.TimeOffset != 0 {
		t.Fatalf("unexpected first offset: %v", first.TimeOffset)
	}
	if first.HeartRate == nil || *first.HeartRate != 135 {
		t.Fatalf("unexpected heart rate: %v", first.HeartRate)
	}
	if first.Power == nil || *first.Power != 245 {
		t.Fatalf("unexpected power: %v", first.Power)
	}
	if first.Distance == nil || *first.Distance != 10 {
		t.Fatalf("unexpected distance: %v", first.Distance)
	}
	if first.Lat == nil || math.Abs(*first.Lat-46.5) > 1e-6 {
		t.Fatalf("unexpected latitude: %v", first.Lat)
	}
	if first.Speed != 4.5 {
		t.Fatalf("unexpected speed: %v", first.Speed)
	}

	last := w.Samples[2]
	if last.TimeOffset != 90 {
		t.Fatalf("unexpected last offset: %v", last.TimeOffset)
	}
	if last.HeartRate != nil || last.Power != nil || last.Lat != nil || last.Distance != nil {
		t.Fatalf("invalid channels should decode as absent: %+v", last)
	}

	if len(w.Boundaries) != 2 {
		t.Fatalf("expected 2 lap boundaries, got %d", len(w.Boundaries))
	}
	if w.Boundaries[1].BeginningOffset != 60 {
		t.Fatalf("unexpected second lap offset: %v", w.Boundaries[1].BeginningOffset)
	}
	hr := w.Boundaries[0].Summary.HeartRate
	if hr == nil || hr.Avg == nil || *hr.Avg != 140 || hr.Max != nil {
		t.Fatalf("unexpected lap heart rate: %+v", hr)
	}
}

func TestDecodeSegmentsLikePWX(t *testing.T) {
	workouts, err := Decode(bytes.NewReader(buildTestFIT(t)))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	prepared, err := pwxconv.PrepareWorkout(workouts[0], pwxconv.PrepareOptions{})
	if err != nil {
		t.Fatalf("PrepareWorkout error: %v", err)
	}
	if len(prepared.Laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(prepared.Laps))
	}
	if got := len(prepared.Laps[0].Points); got != 2 {
		t.Fatalf("first lap points: got %d want 2", got)
	}
	if got := len(prepared.Laps[1].Points); got != 1 {
		t.Fatalf("second lap points: got %d want 1", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a fit file")))
	if !errors.Is(err, pwxconv.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	file.FileId.Manufacturer = fit.ManufacturerGarmin
	file.FileId.TimeCreated = fixtureStart

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	first := fit.NewRecordMsg()
	first.Timestamp = fixtureStart
	first.HeartRate = 135
	first.Power = 245
	first.Cadence = 92
	first.Distance = 1000 // cm
	first.Speed = 4500    // mm/s
	first.PositionLat = fit.NewLatitudeDegrees(46.5)
	first.PositionLong = fit.NewLongitudeDegrees(7.25)
	activity.Records = append(activity.Records, first)

	second := fit.NewRecordMsg()
	second.Timestamp = fixtureStart.Add(30 * time.Second)
	second.HeartRate = 140
	second.Distance = 15000
	activity.Records = append(activity.Records, second)

	third := fit.NewRecordMsg()
	third.Timestamp = fixtureStart.Add(90 * time.Second)
	activity.Records = append(activity.Records, third)

	lap1 := fit.NewLapMsg()
	lap1.Timestamp = fixtureStart.Add(60 * time.Second)
	lap1.StartTime = fixtureStart
	lap1.TotalTimerTime = 60000
	lap1.TotalDistance = 15000
	lap1.AvgHeartRate = 140
	activity.Laps = append(activity.Laps, lap1)

	lap2 := fit.NewLapMsg()
	lap2.Timestamp = fixtureStart.Add(120 * time.Second)
	lap2.StartTime = fixtureStart.Add(60 * time.Second)
	lap2.TotalTimerTime = 60000
	activity.Laps = append(activity.Laps, lap2)

	session := fit.NewSessionMsg()
	session.Timestamp = fixtureStart.Add(120 * time.Second)
	session.StartTime = fixtureStart
	session.Sport = fit.SportCycling
	session.SubSport = fit.SubSportMountain
	session.TotalTimerTime = 120000
	session.TotalWork = 50000
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}
