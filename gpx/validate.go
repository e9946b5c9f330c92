package gpx

import (
	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/schema"
)

// Validate checks a serialized document against the GPX 1.1 rules for the
// elements this package writes. Every violation is reported.
func Validate(doc []byte) error {
	root, err := schema.Parse(doc)
	if err != nil {
		return &pwxconv.ValidationError{Format: "gpx", Violations: []string{err.Error()}}
	}

	var r schema.Report
	if root.Name.Space != Namespace || root.Name.Local != "gpx" {
		r.Addf("root element is {%s}%s, expected {%s}gpx", root.Name.Space, root.Name.Local, Namespace)
		return r.Err("gpx")
	}
	if v, ok := r.RequiredAttr(root, "gpx", "", "version"); ok && v != Version {
		r.Addf("gpx: version %q, expected %q", v, Version)
	}
	r.RequiredAttr(root, "gpx", "", "creator")
	r.Sequence(root, "gpx", Namespace,
		schema.Optional("metadata"),
		schema.Many("wpt", 0),
		schema.Many("rte", 0),
		schema.Many("trk", 0),
		schema.Optional("extensions"),
	)

	if md := root.Child("metadata"); md != nil {
		validateMetadata(&r, md)
	}
	for i, trk := range root.ChildrenNamed("trk") {
		validateTrack(&r, trk, schema.Indexed("gpx", "trk", i))
	}
	return r.Err("gpx")
}

func validateMetadata(r *schema.Report, md *schema.Node) {
	r.Sequence(md, "gpx/metadata", Namespace,
		schema.Optional("name"),
		schema.Optional("desc"),
		schema.Optional("author"),
		schema.Optional("copyright"),
		schema.Many("link", 0),
		schema.Optional("time"),
		schema.Optional("keywords"),
		schema.Optional("bounds"),
		schema.Optional("extensions"),
	)
	if t := md.Child("time"); t != nil {
		r.DateTime("gpx/metadata/time", t.Text)
	}
}

func validateTrack(r *schema.Report, trk *schema.Node, path string) {
	r.Sequence(trk, path, Namespace,
		schema.Optional("name"),
		schema.Optional("cmt"),
		schema.Optional("desc"),
		schema.Optional("src"),
		schema.Many("link", 0),
		schema.Optional("number"),
		schema.Optional("type"),
		schema.Optional("extensions"),
		schema.Many("trkseg", 0),
	)
	for i, seg := range trk.ChildrenNamed("trkseg") {
		segPath := schema.Indexed(path, "trkseg", i)
		r.Sequence(seg, segPath, Namespace,
			schema.Many("trkpt", 0),
			schema.Optional("extensions"),
		)
		for j, pt := range seg.ChildrenNamed("trkpt") {
			validatePoint(r, pt, schema.Indexed(segPath, "trkpt", j))
		}
	}
}

func validatePoint(r *schema.Report, pt *schema.Node, path string) {
	if lat, ok := r.RequiredAttr(pt, path, "", "lat"); ok {
		r.Range(path+"@lat", lat, -90, 90, false)
	}
	if lon, ok := r.RequiredAttr(pt, path, "", "lon"); ok {
		r.Range(path+"@lon", lon, -180, 180, true)
	}
	r.Sequence(pt, path, Namespace,
		schema.Optional("ele"),
		schema.Optional("time"),
		schema.Optional("magvar"),
		schema.Optional("geoidheight"),
		schema.Optional("name"),
		schema.Optional("cmt"),
		schema.Optional("desc"),
		schema.Optional("src"),
		schema.Many("link", 0),
		schema.Optional("sym"),
		schema.Optional("type"),
		schema.Optional("fix"),
		schema.Optional("sat"),
		schema.Optional("hdop"),
		schema.Optional("vdop"),
		schema.Optional("pdop"),
		schema.Optional("ageofdgpsdata"),
		schema.Optional("dgpsid"),
		schema.Optional("extensions"),
	)
	if ele := pt.Child("ele"); ele != nil {
		r.Double(path+"/ele", ele.Text)
	}
	if t := pt.Child("time"); t != nil {
		r.DateTime(path+"/time", t.Text)
	}
}
