// Package tcx projects workouts onto Training Center Database v2 activities.
package tcx

import (
	"encoding/xml"

	"github.com/lucasjlepore/pwx-converter/schema"
)

const (
	// Namespace is the TrainingCenterDatabase v2 target namespace.
	Namespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	// ExtensionNamespace is the ActivityExtension v2 namespace for LX and TPX.
	ExtensionNamespace = "http://www.garmin.com/xmlschemas/ActivityExtension/v2"

	schemaLocation = Namespace + " http://www.garmin.com/xmlschemas/TrainingCenterDatabasev2.xsd"
)

// TrainingCenterDatabase is the document root.
type TrainingCenterDatabase struct {
	XMLName    xml.Name      `xml:"http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2 TrainingCenterDatabase"`
	XmlnsXsi   string        `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLoc  string        `xml:"xsi:schemaLocation,attr,omitempty"`
	Activities *ActivityList `xml:"Activities,omitempty"`
	Author     *Application  `xml:"Author,omitempty"`
}

// ActivityList holds the converted activities.
type ActivityList struct {
	Activity []Activity `xml:"Activity"`
}

// Activity is one workout.
type Activity struct {
	Sport   string        `xml:"Sport,attr"`
	ID      string        `xml:"Id"`
	Laps    []ActivityLap `xml:"Lap"`
	Notes   string        `xml:"Notes,omitempty"`
	Creator *Device       `xml:"Creator,omitempty"`
}

// ActivityLap is one lap with its derived metrics.
type ActivityLap struct {
	StartTime        string                     `xml:"StartTime,attr"`
	TotalTimeSeconds schema.Decimal             `xml:"TotalTimeSeconds"`
	DistanceMeters   schema.Decimal             `xml:"DistanceMeters"`
	MaximumSpeed     *schema.Decimal            `xml:"MaximumSpeed,omitempty"`
	Calories         uint16                     `xml:"Calories"`
	AverageHeartRate *HeartRateInBeatsPerMinute `xml:"AverageHeartRateBpm,omitempty"`
	MaximumHeartRate *HeartRateInBeatsPerMinute `xml:"MaximumHeartRateBpm,omitempty"`
	Intensity        string                     `xml:"Intensity"`
	Cadence          *uint8                     `xml:"Cadence,omitempty"`
	TriggerMethod    string                     `xml:"TriggerMethod"`
	Tracks           []Track                    `xml:"Track"`
	Notes            string                     `xml:"Notes,omitempty"`
	Extensions       *LapExtensions             `xml:"Extensions,omitempty"`
}

// HeartRateInBeatsPerMinute wraps a heart rate value.
type HeartRateInBeatsPerMinute struct {
	Value uint8 `xml:"Value"`
}

// Track is an ordered run of trackpoints.
type Track struct {
	Trackpoints []Trackpoint `xml:"Trackpoint"`
}

// Trackpoint is one sample of a lap.
type Trackpoint struct {
	Time           string                     `xml:"Time"`
	Position       *Position                  `xml:"Position,omitempty"`
	AltitudeMeters *schema.Decimal            `xml:"AltitudeMeters,omitempty"`
	DistanceMeters *schema.Decimal            `xml:"DistanceMeters,omitempty"`
	HeartRateBpm   *HeartRateInBeatsPerMinute `xml:"HeartRateBpm,omitempty"`
	Cadence        *uint8                     `xml:"Cadence,omitempty"`
	Extensions     *TrackpointExtensions      `xml:"Extensions,omitempty"`
}

// Position is a latitude/longitude pair in degrees.
type Position struct {
	LatitudeDegrees  schema.Decimal `xml:"LatitudeDegrees"`
	LongitudeDegrees schema.Decimal `xml:"LongitudeDegrees"`
}

// LapExtensions wraps the ActivityExtension lap element.
type LapExtensions struct {
	LX *LX `xml:"LX,omitempty"`
}

// LX carries lap values the core schema has no element for.
type LX struct {
	XMLName  xml.Name        `xml:"http://www.garmin.com/xmlschemas/ActivityExtension/v2 LX"`
	AvgSpeed *schema.Decimal `xml:"AvgSpeed,omitempty"`
}

// TrackpointExtensions wraps the ActivityExtension trackpoint element.
type TrackpointExtensions struct {
	TPX *TPX `xml:"TPX,omitempty"`
}

// TPX carries trackpoint values the core schema has no element for.
type TPX struct {
	XMLName xml.Name `xml:"http://www.garmin.com/xmlschemas/ActivityExtension/v2 TPX"`
	Watts   *uint16  `xml:"Watts,omitempty"`
}

// Device identifies the recording unit.
type Device struct {
	Type      string  `xml:"xsi:type,attr"`
	Name      string  `xml:"Name"`
	UnitID    uint32  `xml:"UnitId"`
	ProductID uint16  `xml:"ProductID"`
	Version   Version `xml:"Version"`
}

// Application identifies the software that wrote the document.
type Application struct {
	Type       string     `xml:"xsi:type,attr"`
	Name       string     `xml:"Name"`
	Build      BuildStamp `xml:"Build"`
	LangID     string     `xml:"LangID"`
	PartNumber string     `xml:"PartNumber"`
}

// BuildStamp is the application build stamp.
type BuildStamp struct {
	Version Version `xml:"Version"`
	Type    string  `xml:"Type,omitempty"`
	Time    string  `xml:"Time,omitempty"`
	Builder string  `xml:"Builder"`
}

// Version is a major.minor pair with optional build numbers.
type Version struct {
	VersionMajor uint16  `xml:"VersionMajor"`
	VersionMinor uint16  `xml:"VersionMinor"`
	BuildMajor   *uint16 `xml:"BuildMajor,omitempty"`
	BuildMinor   *uint16 `xml:"BuildMinor,omitempty"`
}
