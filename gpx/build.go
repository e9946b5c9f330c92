package gpx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/schema"
)

// DefaultCreator is written to the creator attribute when Options leaves it empty.
const DefaultCreator = "PwxConverter"

// Options controls document-level values.
type Options struct {
	Creator string
	// Now stamps metadata/time. Defaults to time.Now.
	Now func() time.Time
}

// Build projects each workout onto one track with a single segment. Trackpoints
// follow sample order and are not split into laps.
func Build(workouts []pwxconv.Workout, opts Options) *GPX {
	creator := opts.Creator
	if creator == "" {
		creator = DefaultCreator
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	doc := &GPX{
		XmlnsXsi:  schema.XSINamespace,
		SchemaLoc: schemaLocation,
		Version:   Version,
		Creator:   creator,
		Metadata:  &Metadata{Time: formatTime(now())},
		Tracks:    make([]Track, 0, len(workouts)),
	}
	for _, w := range workouts {
		doc.Tracks = append(doc.Tracks, buildTrack(w))
	}
	return doc
}

func buildTrack(w pwxconv.Workout) Track {
	points := make([]Point, 0, len(w.Samples))
	for _, s := range w.Samples {
		ele := schema.Decimal(0)
		if s.Altitude != nil {
			ele = schema.Decimal(*s.Altitude)
		}
		p := Point{
			Ele:  &ele,
			Time: formatTime(pwxconv.TimeAt(w.StartTime, s.TimeOffset)),
		}
		if s.Lat != nil {
			p.Lat = schema.Decimal(*s.Lat)
		}
		if s.Lon != nil {
			p.Lon = schema.Decimal(*s.Lon)
		}
		points = append(points, p)
	}
	return Track{
		Type:     w.Sport.CompactName(),
		Segments: []Segment{{Points: points}},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Marshal serializes the document with an XML declaration.
func Marshal(doc *GPX) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal gpx: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Encode builds, serializes and validates a GPX document. A document that
// fails validation is not returned.
func Encode(workouts []pwxconv.Workout, opts Options) ([]byte, error) {
	out, err := Marshal(Build(workouts, opts))
	if err != nil {
		return nil, err
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}
