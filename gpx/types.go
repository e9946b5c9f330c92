// Package gpx projects workouts onto GPX 1.1 tracks.
package gpx

import (
	"encoding/xml"

	"github.com/lucasjlepore/pwx-converter/schema"
)

const (
	// Namespace is the GPX 1.1 target namespace.
	Namespace = "http://www.topografix.com/GPX/1/1"
	// Version is written to the root version attribute.
	Version        = "1.1"
	schemaLocation = Namespace + " http://www.topografix.com/GPX/1/1/gpx.xsd"
)

// GPX is the document root.
type GPX struct {
	XMLName   xml.Name  `xml:"http://www.topografix.com/GPX/1/1 gpx"`
	XmlnsXsi  string    `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLoc string    `xml:"xsi:schemaLocation,attr,omitempty"`
	Version   string    `xml:"version,attr"`
	Creator   string    `xml:"creator,attr"`
	Metadata  *Metadata `xml:"metadata,omitempty"`
	Tracks    []Track   `xml:"trk"`
}

// Metadata carries document-level information.
type Metadata struct {
	Time string `xml:"time,omitempty"`
}

// Track is one recorded workout.
type Track struct {
	Name     string    `xml:"name,omitempty"`
	Type     string    `xml:"type,omitempty"`
	Segments []Segment `xml:"trkseg"`
}

// Segment is a continuous run of trackpoints.
type Segment struct {
	Points []Point `xml:"trkpt"`
}

// Point is one trackpoint.
type Point struct {
	Lat  schema.Decimal  `xml:"lat,attr"`
	Lon  schema.Decimal  `xml:"lon,attr"`
	Ele  *schema.Decimal `xml:"ele,omitempty"`
	Time string          `xml:"time,omitempty"`
}
