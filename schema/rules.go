package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

// Unbounded marks a particle without an upper occurrence limit.
const Unbounded = -1

var dateTimePattern = regexp.MustCompile(`^-?\d{4,}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)

// Particle is one element slot of an ordered content model.
type Particle struct {
	Name string
	Min  int
	Max  int
}

// One is a required, single element.
func One(name string) Particle { return Particle{Name: name, Min: 1, Max: 1} }

// Optional is an element that may appear once.
func Optional(name string) Particle { return Particle{Name: name, Min: 0, Max: 1} }

// Many is an element that may repeat, with at least min occurrences.
func Many(name string, min int) Particle { return Particle{Name: name, Min: min, Max: Unbounded} }

// Report accumulates rule violations for one document.
type Report struct {
	Violations []string
}

// Addf records a violation.
func (r *Report) Addf(format string, args ...any) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// OK reports whether no violation was recorded.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Err returns nil for a clean report, otherwise a ValidationError carrying
// every violation.
func (r *Report) Err(format string) error {
	if r.OK() {
		return nil
	}
	return &pwxconv.ValidationError{
		Format:     format,
		Violations: append([]string(nil), r.Violations...),
	}
}

// Sequence checks that the children of n follow the ordered content model and
// live in namespace ns.
func (r *Report) Sequence(n *Node, path, ns string, particles ...Particle) {
	p := 0
	count := 0
	for _, c := range n.Children {
		if c.Name.Space != ns {
			r.Addf("%s: element %q is in namespace %q, expected %q", path, c.Name.Local, c.Name.Space, ns)
			continue
		}
		q := p
		for q < len(particles) && particles[q].Name != c.Name.Local {
			q++
		}
		if q == len(particles) {
			r.Addf("%s: unexpected element %q", path, c.Name.Local)
			continue
		}
		for ; p < q; p++ {
			if count < particles[p].Min {
				r.Addf("%s: missing required element %q before %q", path, particles[p].Name, c.Name.Local)
			}
			count = 0
		}
		count++
		if particles[p].Max != Unbounded && count > particles[p].Max {
			r.Addf("%s: element %q occurs more than %d time(s)", path, c.Name.Local, particles[p].Max)
		}
	}
	for ; p < len(particles); p++ {
		if count < particles[p].Min {
			r.Addf("%s: missing required element %q", path, particles[p].Name)
		}
		count = 0
	}
}

// Double parses an xsd:double value.
func (r *Report) Double(path, value string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.Addf("%s: %q is not a valid double", path, value)
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.Addf("%s: %q is not a finite number", path, value)
		return 0, false
	}
	return v, true
}

// Range checks min <= value <= max, or value < max when maxExclusive is set.
func (r *Report) Range(path, value string, min, max float64, maxExclusive bool) {
	v, ok := r.Double(path, value)
	if !ok {
		return
	}
	if v < min || v > max || (maxExclusive && v == max) {
		closing := "]"
		if maxExclusive {
			closing = ")"
		}
		r.Addf("%s: %s is outside [%g, %g%s", path, value, min, max, closing)
	}
}

// Unsigned checks an integer value inside [min, max], used for xsd:unsignedByte
// and xsd:unsignedShort facets.
func (r *Report) Unsigned(path, value string, min, max uint64) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		r.Addf("%s: %q is not a valid unsigned integer", path, value)
		return
	}
	if v < min || v > max {
		r.Addf("%s: %d is outside [%d, %d]", path, v, min, max)
	}
}

// DateTime checks the xsd:dateTime lexical form.
func (r *Report) DateTime(path, value string) {
	if !dateTimePattern.MatchString(value) {
		r.Addf("%s: %q is not a valid dateTime", path, value)
	}
}

// Enum checks membership in a fixed value set.
func (r *Report) Enum(path, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	r.Addf("%s: %q is not one of %v", path, value, allowed)
}

// Pattern checks value against a regular expression facet.
func (r *Report) Pattern(path, value string, re *regexp.Regexp) {
	if !re.MatchString(value) {
		r.Addf("%s: %q does not match pattern %s", path, value, re.String())
	}
}

// RequiredAttr returns an attribute value and records a violation when absent.
func (r *Report) RequiredAttr(n *Node, path, space, local string) (string, bool) {
	v, ok := n.Attr(space, local)
	if !ok {
		r.Addf("%s: missing required attribute %q", path, local)
	}
	return v, ok
}

// Indexed formats a path segment for the i-th repeated element.
func Indexed(parent, name string, i int) string {
	return fmt.Sprintf("%s/%s[%d]", parent, name, i)
}
