// Package pwx decodes PWX workout documents into the converter's workout model.
package pwx

import "encoding/xml"

// Namespace is the PWX 1.0 target namespace.
const Namespace = "http://www.peaksware.com/PWX/1/0"

type document struct {
	XMLName  xml.Name
	Workouts []workout `xml:"workout"`
}

type workout struct {
	SportType string       `xml:"sportType"`
	Device    *device      `xml:"device"`
	Time      string       `xml:"time"`
	Summary   *summaryData `xml:"summarydata"`
	Segments  []segment    `xml:"segment"`
	Samples   []sample     `xml:"sample"`
}

type device struct {
	Make  string `xml:"make"`
	Model string `xml:"model"`
}

type summaryData struct {
	Beginning *float64   `xml:"beginning"`
	Duration  *float64   `xml:"duration"`
	Work      *float64   `xml:"work"`
	HeartRate *minMaxAvg `xml:"hr"`
	Distance  *float64   `xml:"dist"`
}

type minMaxAvg struct {
	Max *float64 `xml:"max,attr"`
	Avg *float64 `xml:"avg,attr"`
}

type segment struct {
	Name    string       `xml:"name"`
	Summary *summaryData `xml:"summarydata"`
}

type sample struct {
	TimeOffset *float64 `xml:"timeoffset"`
	HeartRate  *float64 `xml:"hr"`
	Speed      *float64 `xml:"spd"`
	Power      *float64 `xml:"pwr"`
	Cadence    *float64 `xml:"cad"`
	Distance   *float64 `xml:"dist"`
	Lat        *float64 `xml:"lat"`
	Lon        *float64 `xml:"lon"`
	Altitude   *float64 `xml:"alt"`
}
