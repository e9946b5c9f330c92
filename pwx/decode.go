package pwx

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

// naive PWX times carry no zone and are read in Options.Location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Options controls decoding.
type Options struct {
	// Location resolves workout times without a zone. Defaults to time.Local.
	Location *time.Location
}

// Decode reads a PWX document, plain or gzip-compressed, and returns its
// workouts in document order.
func Decode(r io.Reader, opts Options) ([]pwxconv.Workout, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, decodeError(fmt.Errorf("open gzip stream: %w", err))
		}
		defer zr.Close()
		src = zr
	}

	var doc document
	if err := xml.NewDecoder(src).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, decodeError(errors.New("empty document"))
		}
		return nil, decodeError(fmt.Errorf("parse xml: %w", err))
	}
	if doc.XMLName.Local != "pwx" || (doc.XMLName.Space != "" && doc.XMLName.Space != Namespace) {
		return nil, decodeError(fmt.Errorf("unexpected root element {%s}%s", doc.XMLName.Space, doc.XMLName.Local))
	}

	workouts := make([]pwxconv.Workout, 0, len(doc.Workouts))
	for i, w := range doc.Workouts {
		out, err := convertWorkout(w, loc)
		if err != nil {
			return nil, decodeError(fmt.Errorf("workout %d: %w", i+1, err))
		}
		workouts = append(workouts, out)
	}
	return workouts, nil
}

func decodeError(err error) error {
	return &pwxconv.DecodeError{Source: "pwx", Err: err}
}

func convertWorkout(w workout, loc *time.Location) (pwxconv.Workout, error) {
	start, err := parseTime(w.Time, loc)
	if err != nil {
		return pwxconv.Workout{}, err
	}

	out := pwxconv.Workout{
		StartTime: start,
		Sport:     pwxconv.ParseSport(w.SportType),
		Summary:   convertSummary(w.Summary),
		Samples:   make([]pwxconv.Sample, 0, len(w.Samples)),
	}
	if w.Device != nil {
		out.Device = pwxconv.Device{
			Make:  strings.TrimSpace(w.Device.Make),
			Model: strings.TrimSpace(w.Device.Model),
		}
	}

	for i, seg := range w.Segments {
		if seg.Summary == nil || seg.Summary.Beginning == nil {
			return pwxconv.Workout{}, fmt.Errorf("segment %d has no summarydata beginning", i+1)
		}
		out.Boundaries = append(out.Boundaries, pwxconv.SegmentBoundary{
			Name:            strings.TrimSpace(seg.Name),
			BeginningOffset: *seg.Summary.Beginning,
			Summary:         convertSummary(seg.Summary),
		})
	}

	for i, s := range w.Samples {
		if s.TimeOffset == nil {
			return pwxconv.Workout{}, fmt.Errorf("sample %d has no timeoffset", i+1)
		}
		sample := pwxconv.Sample{
			TimeOffset: *s.TimeOffset,
			Lat:        s.Lat,
			Lon:        s.Lon,
			Altitude:   s.Altitude,
			Distance:   s.Distance,
			HeartRate:  s.HeartRate,
			Cadence:    s.Cadence,
			Power:      s.Power,
		}
		if s.Speed != nil {
			sample.Speed = *s.Speed
		}
		out.Samples = append(out.Samples, sample)
	}
	return out, nil
}

func convertSummary(s *summaryData) pwxconv.SegmentSummary {
	if s == nil {
		return pwxconv.SegmentSummary{}
	}
	out := pwxconv.SegmentSummary{
		Duration: s.Duration,
		Distance: s.Distance,
		Work:     s.Work,
	}
	if s.HeartRate != nil && (s.HeartRate.Avg != nil || s.HeartRate.Max != nil) {
		out.HeartRate = &pwxconv.HeartRateSummary{Avg: s.HeartRate.Avg, Max: s.HeartRate.Max}
	}
	return out
}

func parseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing workout time")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid workout time %q", raw)
}
