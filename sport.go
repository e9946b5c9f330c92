package pwxconv

import "strings"

// Sport is the source sport enumeration.
type Sport string

const (
	SportBike         Sport = "Bike"
	SportRun          Sport = "Run"
	SportSwim         Sport = "Swim"
	SportBrick        Sport = "Brick"
	SportCrossTrain   Sport = "Cross train"
	SportRace         Sport = "Race"
	SportDayOff       Sport = "Day Off"
	SportMountainBike Sport = "Mountain Bike"
	SportStrength     Sport = "Strength"
	SportCustom       Sport = "Custom"
	SportXCSki        Sport = "XC Ski"
	SportRowing       Sport = "Rowing"
	SportWalk         Sport = "Walk"
	SportOther        Sport = "Other"
)

var knownSports = []Sport{
	SportBike, SportRun, SportSwim, SportBrick, SportCrossTrain, SportRace, SportDayOff,
	SportMountainBike, SportStrength, SportCustom, SportXCSki, SportRowing, SportWalk, SportOther,
}

// ParseSport resolves a source sport name. Spacing and case are ignored so both
// "Mountain Bike" and "MountainBike" map to SportMountainBike. Unknown names map
// to SportOther.
func ParseSport(name string) Sport {
	key := compactName(name)
	for _, s := range knownSports {
		if compactName(string(s)) == key {
			return s
		}
	}
	return SportOther
}

// CompactName is the sport name with its spaces removed, e.g. "MountainBike".
func (s Sport) CompactName() string {
	return strings.Join(strings.Fields(string(s)), "")
}

func compactName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// TargetSport is the sport enumeration shared by the output formats.
type TargetSport string

const (
	TargetBiking  TargetSport = "Biking"
	TargetRunning TargetSport = "Running"
	TargetOther   TargetSport = "Other"
)

// MapSport projects a source sport onto the output enumeration.
func MapSport(s Sport) TargetSport {
	switch s {
	case SportBike, SportMountainBike:
		return TargetBiking
	case SportRun:
		return TargetRunning
	default:
		return TargetOther
	}
}
