package tcx

import (
	"math"
	"regexp"
	"strings"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/schema"
)

var (
	partNumberPattern = regexp.MustCompile(`^[\p{Lu}\d]{3}-[\p{Lu}\d]{5}-[\p{Lu}\d]{2}$`)
	langIDPattern     = regexp.MustCompile(`^\S{2}$`)
)

// Validate checks a serialized document against the TrainingCenterDatabase v2
// and ActivityExtension v2 rules for the elements this package writes.
func Validate(doc []byte) error {
	root, err := schema.Parse(doc)
	if err != nil {
		return &pwxconv.ValidationError{Format: "tcx", Violations: []string{err.Error()}}
	}

	var r schema.Report
	if root.Name.Space != Namespace || root.Name.Local != "TrainingCenterDatabase" {
		r.Addf("root element is {%s}%s, expected {%s}TrainingCenterDatabase", root.Name.Space, root.Name.Local, Namespace)
		return r.Err("tcx")
	}
	r.Sequence(root, "TrainingCenterDatabase", Namespace,
		schema.Optional("Folders"),
		schema.Optional("Activities"),
		schema.Optional("Workouts"),
		schema.Optional("Courses"),
		schema.Optional("Author"),
		schema.Optional("Extensions"),
	)

	if acts := root.Child("Activities"); acts != nil {
		path := "TrainingCenterDatabase/Activities"
		r.Sequence(acts, path, Namespace,
			schema.Many("Activity", 0),
			schema.Many("MultiSportSession", 0),
		)
		for i, act := range acts.ChildrenNamed("Activity") {
			validateActivity(&r, act, schema.Indexed(path, "Activity", i))
		}
	}
	if author := root.Child("Author"); author != nil {
		validateApplication(&r, author, "TrainingCenterDatabase/Author")
	}
	return r.Err("tcx")
}

func validateActivity(r *schema.Report, act *schema.Node, path string) {
	if sport, ok := r.RequiredAttr(act, path, "", "Sport"); ok {
		r.Enum(path+"@Sport", sport, "Running", "Biking", "Other")
	}
	r.Sequence(act, path, Namespace,
		schema.One("Id"),
		schema.Many("Lap", 1),
		schema.Optional("Notes"),
		schema.Optional("Training"),
		schema.Optional("Creator"),
		schema.Optional("Extensions"),
	)
	if id := act.Child("Id"); id != nil {
		r.DateTime(path+"/Id", id.Text)
	}
	for i, lap := range act.ChildrenNamed("Lap") {
		validateLap(r, lap, schema.Indexed(path, "Lap", i))
	}
	if creator := act.Child("Creator"); creator != nil {
		validateDevice(r, creator, path+"/Creator")
	}
	if ext := act.Child("Extensions"); ext != nil {
		validateExtensions(r, ext, path+"/Extensions")
	}
}

func validateLap(r *schema.Report, lap *schema.Node, path string) {
	if start, ok := r.RequiredAttr(lap, path, "", "StartTime"); ok {
		r.DateTime(path+"@StartTime", start)
	}
	r.Sequence(lap, path, Namespace,
		schema.One("TotalTimeSeconds"),
		schema.One("DistanceMeters"),
		schema.Optional("MaximumSpeed"),
		schema.One("Calories"),
		schema.Optional("AverageHeartRateBpm"),
		schema.Optional("MaximumHeartRateBpm"),
		schema.One("Intensity"),
		schema.Optional("Cadence"),
		schema.One("TriggerMethod"),
		schema.Many("Track", 0),
		schema.Optional("Notes"),
		schema.Optional("Extensions"),
	)
	for _, name := range []string{"TotalTimeSeconds", "DistanceMeters", "MaximumSpeed"} {
		if n := lap.Child(name); n != nil {
			r.Double(path+"/"+name, n.Text)
		}
	}
	if n := lap.Child("Calories"); n != nil {
		r.Unsigned(path+"/Calories", n.Text, 0, math.MaxUint16)
	}
	for _, name := range []string{"AverageHeartRateBpm", "MaximumHeartRateBpm"} {
		if n := lap.Child(name); n != nil {
			validateHeartRate(r, n, path+"/"+name)
		}
	}
	if n := lap.Child("Intensity"); n != nil {
		r.Enum(path+"/Intensity", n.Text, "Active", "Resting")
	}
	if n := lap.Child("Cadence"); n != nil {
		r.Unsigned(path+"/Cadence", n.Text, 0, maxTrackpointCadence)
	}
	if n := lap.Child("TriggerMethod"); n != nil {
		r.Enum(path+"/TriggerMethod", n.Text, "Manual", "Distance", "Location", "Time", "HeartRate")
	}
	for i, track := range lap.ChildrenNamed("Track") {
		trackPath := schema.Indexed(path, "Track", i)
		r.Sequence(track, trackPath, Namespace, schema.Many("Trackpoint", 1))
		for j, tp := range track.ChildrenNamed("Trackpoint") {
			validateTrackpoint(r, tp, schema.Indexed(trackPath, "Trackpoint", j))
		}
	}
	if ext := lap.Child("Extensions"); ext != nil {
		validateExtensions(r, ext, path+"/Extensions")
	}
}

func validateTrackpoint(r *schema.Report, tp *schema.Node, path string) {
	r.Sequence(tp, path, Namespace,
		schema.One("Time"),
		schema.Optional("Position"),
		schema.Optional("AltitudeMeters"),
		schema.Optional("DistanceMeters"),
		schema.Optional("HeartRateBpm"),
		schema.Optional("Cadence"),
		schema.Optional("SensorState"),
		schema.Optional("Extensions"),
	)
	if n := tp.Child("Time"); n != nil {
		r.DateTime(path+"/Time", n.Text)
	}
	if pos := tp.Child("Position"); pos != nil {
		posPath := path + "/Position"
		r.Sequence(pos, posPath, Namespace, schema.One("LatitudeDegrees"), schema.One("LongitudeDegrees"))
		if n := pos.Child("LatitudeDegrees"); n != nil {
			r.Range(posPath+"/LatitudeDegrees", n.Text, -90, 90, false)
		}
		if n := pos.Child("LongitudeDegrees"); n != nil {
			r.Range(posPath+"/LongitudeDegrees", n.Text, -180, 180, true)
		}
	}
	for _, name := range []string{"AltitudeMeters", "DistanceMeters"} {
		if n := tp.Child(name); n != nil {
			r.Double(path+"/"+name, n.Text)
		}
	}
	if n := tp.Child("HeartRateBpm"); n != nil {
		validateHeartRate(r, n, path+"/HeartRateBpm")
	}
	if n := tp.Child("Cadence"); n != nil {
		r.Unsigned(path+"/Cadence", n.Text, 0, maxTrackpointCadence)
	}
	if n := tp.Child("SensorState"); n != nil {
		r.Enum(path+"/SensorState", n.Text, "Present", "Absent")
	}
	if ext := tp.Child("Extensions"); ext != nil {
		validateExtensions(r, ext, path+"/Extensions")
	}
}

func validateHeartRate(r *schema.Report, n *schema.Node, path string) {
	r.Sequence(n, path, Namespace, schema.One("Value"))
	if v := n.Child("Value"); v != nil {
		r.Unsigned(path+"/Value", v.Text, 1, math.MaxUint8)
	}
}

// validateExtensions applies the ##other wildcard and checks the
// ActivityExtension elements; elements from other namespaces are accepted
// without checks.
func validateExtensions(r *schema.Report, ext *schema.Node, path string) {
	for i, c := range ext.Children {
		childPath := schema.Indexed(path, c.Name.Local, i)
		switch {
		case c.Name.Space == Namespace || c.Name.Space == "":
			r.Addf("%s: extension element must come from another namespace", childPath)
		case c.Name.Space != ExtensionNamespace:
			// lax
		case c.Name.Local == "LX":
			r.Sequence(c, childPath, ExtensionNamespace,
				schema.Optional("AvgSpeed"),
				schema.Optional("MaxBikeCadence"),
				schema.Optional("AvgRunCadence"),
				schema.Optional("MaxRunCadence"),
				schema.Optional("Steps"),
				schema.Optional("AvgWatts"),
				schema.Optional("MaxWatts"),
			)
			if n := c.Child("AvgSpeed"); n != nil {
				if v, ok := r.Double(childPath+"/AvgSpeed", n.Text); ok && v < 0 {
					r.Addf("%s/AvgSpeed: %s is negative", childPath, n.Text)
				}
			}
		case c.Name.Local == "TPX":
			r.Sequence(c, childPath, ExtensionNamespace,
				schema.Optional("Speed"),
				schema.Optional("RunCadence"),
				schema.Optional("Watts"),
			)
			if n := c.Child("Watts"); n != nil {
				r.Unsigned(childPath+"/Watts", n.Text, 0, math.MaxUint16)
			}
		default:
			r.Addf("%s: unknown ActivityExtension element %q", childPath, c.Name.Local)
		}
	}
}

func validateDevice(r *schema.Report, n *schema.Node, path string) {
	if typ, ok := r.RequiredAttr(n, path, schema.XSINamespace, "type"); ok {
		r.Enum(path+"@xsi:type", typ, deviceType)
	}
	r.Sequence(n, path, Namespace,
		schema.One("Name"),
		schema.One("UnitId"),
		schema.One("ProductID"),
		schema.One("Version"),
	)
	validateToken(r, n.Child("Name"), path+"/Name")
	if v := n.Child("UnitId"); v != nil {
		r.Unsigned(path+"/UnitId", v.Text, 0, math.MaxUint32)
	}
	if v := n.Child("ProductID"); v != nil {
		r.Unsigned(path+"/ProductID", v.Text, 0, math.MaxUint16)
	}
	if v := n.Child("Version"); v != nil {
		validateVersion(r, v, path+"/Version")
	}
}

func validateApplication(r *schema.Report, n *schema.Node, path string) {
	if typ, ok := r.RequiredAttr(n, path, schema.XSINamespace, "type"); ok {
		r.Enum(path+"@xsi:type", typ, applicationType)
	}
	r.Sequence(n, path, Namespace,
		schema.One("Name"),
		schema.One("Build"),
		schema.One("LangID"),
		schema.One("PartNumber"),
	)
	validateToken(r, n.Child("Name"), path+"/Name")
	if b := n.Child("Build"); b != nil {
		buildPath := path + "/Build"
		r.Sequence(b, buildPath, Namespace,
			schema.One("Version"),
			schema.Optional("Type"),
			schema.Optional("Time"),
			schema.Optional("Builder"),
		)
		if v := b.Child("Version"); v != nil {
			validateVersion(r, v, buildPath+"/Version")
		}
		if t := b.Child("Type"); t != nil {
			r.Enum(buildPath+"/Type", t.Text, "Internal", "Alpha", "Beta", "Release")
		}
	}
	if v := n.Child("LangID"); v != nil {
		r.Pattern(path+"/LangID", v.Text, langIDPattern)
	}
	if v := n.Child("PartNumber"); v != nil {
		r.Pattern(path+"/PartNumber", v.Text, partNumberPattern)
	}
}

func validateVersion(r *schema.Report, n *schema.Node, path string) {
	r.Sequence(n, path, Namespace,
		schema.One("VersionMajor"),
		schema.One("VersionMinor"),
		schema.Optional("BuildMajor"),
		schema.Optional("BuildMinor"),
	)
	for _, c := range n.Children {
		r.Unsigned(path+"/"+c.Name.Local, c.Text, 0, math.MaxUint16)
	}
}

// validateToken enforces Token_t: a non-empty xsd:token.
func validateToken(r *schema.Report, n *schema.Node, path string) {
	if n == nil {
		return
	}
	if strings.TrimSpace(n.Text) == "" {
		r.Addf("%s: value must not be empty", path)
	}
}
