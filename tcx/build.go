package tcx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/schema"
)

const (
	intensityActive      = "Active"
	triggerManual        = "Manual"
	deviceType           = "Device_t"
	applicationType      = "Application_t"
	maxTrackpointCadence = 254
)

// Options controls activity projection.
type Options struct {
	LastPoint pwxconv.LastPointMode
	// Author overrides the application footer. Nil uses DefaultAuthor.
	Author *Application
}

// DefaultAuthor is the application footer written once per document.
func DefaultAuthor() Application {
	return Application{
		Type: applicationType,
		Name: "PwxConverter",
		Build: BuildStamp{
			Version: Version{VersionMajor: 0, VersionMinor: 0},
			Type:    "Alpha",
			Time:    "2013-01-25",
			Builder: "",
		},
		LangID:     "EN",
		PartNumber: "000-A0000-00",
	}
}

// PrepareOptions is the segmentation setup for TCX output: dropout samples are
// removed before laps are split.
func PrepareOptions(mode pwxconv.LastPointMode) pwxconv.PrepareOptions {
	return pwxconv.PrepareOptions{DropInvalidFixes: true, LastPoint: mode}
}

// Build prepares every workout and projects it onto one activity.
func Build(workouts []pwxconv.Workout, opts Options) (*TrainingCenterDatabase, error) {
	prepared := make([]pwxconv.PreparedWorkout, 0, len(workouts))
	for i, w := range workouts {
		p, err := pwxconv.PrepareWorkout(w, PrepareOptions(opts.LastPoint))
		if err != nil {
			return nil, fmt.Errorf("prepare workout %d: %w", i+1, err)
		}
		prepared = append(prepared, p)
	}
	return BuildPrepared(prepared, opts), nil
}

// BuildPrepared projects already segmented workouts.
func BuildPrepared(prepared []pwxconv.PreparedWorkout, opts Options) *TrainingCenterDatabase {
	author := DefaultAuthor()
	if opts.Author != nil {
		author = *opts.Author
		author.Type = applicationType
	}

	activities := make([]Activity, 0, len(prepared))
	for _, p := range prepared {
		activities = append(activities, buildActivity(p))
	}
	return &TrainingCenterDatabase{
		XmlnsXsi:   schema.XSINamespace,
		SchemaLoc:  schemaLocation,
		Activities: &ActivityList{Activity: activities},
		Author:     &author,
	}
}

func buildActivity(p pwxconv.PreparedWorkout) Activity {
	w := p.Workout
	start := w.StartTime.UTC()

	act := Activity{
		Sport: string(pwxconv.MapSport(w.Sport)),
		ID:    formatTime(start),
		Laps:  make([]ActivityLap, 0, len(p.Laps)),
	}
	for _, l := range p.Laps {
		act.Laps = append(act.Laps, buildLap(start, l))
	}
	if name := strings.TrimSpace(w.Device.Name()); name != "" {
		act.Creator = &Device{
			Type:    deviceType,
			Name:    w.Device.Name(),
			UnitID:  0,
			Version: Version{VersionMajor: 0, VersionMinor: 0},
		}
	}
	return act
}

func buildLap(start time.Time, l pwxconv.Lap) ActivityLap {
	m := pwxconv.ComputeLapMetrics(l)
	maxSpeed := schema.Decimal(m.MaxSpeedMps)
	avgSpeed := schema.Decimal(m.AvgSpeedMps)

	lap := ActivityLap{
		StartTime:        formatTime(pwxconv.TimeAt(start, l.StartOffset)),
		TotalTimeSeconds: schema.Decimal(m.TotalSeconds),
		DistanceMeters:   schema.Decimal(m.DistanceMeters),
		MaximumSpeed:     &maxSpeed,
		Calories:         m.Calories,
		AverageHeartRate: heartRate(m.AvgHeartRate),
		MaximumHeartRate: heartRate(m.MaxHeartRate),
		Intensity:        intensityActive,
		TriggerMethod:    triggerManual,
		Extensions:       &LapExtensions{LX: &LX{AvgSpeed: &avgSpeed}},
	}
	// Track_t needs at least one trackpoint.
	if len(l.Points) > 0 {
		track := Track{Trackpoints: make([]Trackpoint, 0, len(l.Points))}
		for _, s := range l.Points {
			track.Trackpoints = append(track.Trackpoints, buildTrackpoint(start, s))
		}
		lap.Tracks = []Track{track}
	}
	return lap
}

func buildTrackpoint(start time.Time, s pwxconv.Sample) Trackpoint {
	tp := Trackpoint{
		Time:           formatTime(pwxconv.TimeAt(start, s.TimeOffset)),
		AltitudeMeters: schema.DecimalPtr(s.Altitude),
		DistanceMeters: schema.DecimalPtr(s.Distance),
		HeartRateBpm:   heartRate(s.HeartRate),
		Cadence:        cadence(s.Cadence),
	}
	if s.Lat != nil && s.Lon != nil {
		tp.Position = &Position{
			LatitudeDegrees:  schema.Decimal(*s.Lat),
			LongitudeDegrees: schema.Decimal(*s.Lon),
		}
	}
	if w := watts(s.Power); w != nil {
		tp.Extensions = &TrackpointExtensions{TPX: &TPX{Watts: w}}
	}
	return tp
}

// heartRate drops values below the schema minimum of 1 bpm.
func heartRate(v *float64) *HeartRateInBeatsPerMinute {
	if v == nil {
		return nil
	}
	bpm := math.Round(*v)
	if math.IsNaN(bpm) || bpm < 1 {
		return nil
	}
	if bpm > math.MaxUint8 {
		bpm = math.MaxUint8
	}
	return &HeartRateInBeatsPerMinute{Value: uint8(bpm)}
}

func cadence(v *float64) *uint8 {
	if v == nil {
		return nil
	}
	rpm := math.Round(*v)
	if math.IsNaN(rpm) || rpm < 0 || rpm > maxTrackpointCadence {
		return nil
	}
	out := uint8(rpm)
	return &out
}

func watts(v *float64) *uint16 {
	if v == nil {
		return nil
	}
	w := math.Round(*v)
	if math.IsNaN(w) || w < 0 {
		return nil
	}
	if w > math.MaxUint16 {
		w = math.MaxUint16
	}
	out := uint16(w)
	return &out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Marshal serializes the document with an XML declaration.
func Marshal(doc *TrainingCenterDatabase) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tcx: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Encode builds, serializes and validates a TCX document.
func Encode(workouts []pwxconv.Workout, opts Options) ([]byte, error) {
	doc, err := Build(workouts, opts)
	if err != nil {
		return nil, err
	}
	return encode(doc)
}

// EncodePrepared serializes and validates already segmented workouts.
func EncodePrepared(prepared []pwxconv.PreparedWorkout, opts Options) ([]byte, error) {
	return encode(BuildPrepared(prepared, opts))
}

func encode(doc *TrainingCenterDatabase) ([]byte, error) {
	out, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}
