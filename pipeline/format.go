package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

// Format is an output document format.
type Format string

const (
	FormatGPX Format = "gpx"
	FormatTCX Format = "tcx"
)

// ParseFormat resolves a target format name, ignoring case and a leading dot.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))); f {
	case FormatGPX, FormatTCX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: target %q (expected gpx|tcx)", pwxconv.ErrUnsupportedFormat, name)
	}
}

// SourceFormat is an input document format.
type SourceFormat string

const (
	SourcePWX SourceFormat = "pwx"
	SourceFIT SourceFormat = "fit"
)

// DetectSource sniffs the input format. FIT files carry ".FIT" at bytes 8-11;
// everything else is handed to the PWX decoder, which also unwraps gzip.
func DetectSource(data []byte) SourceFormat {
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		return SourceFIT
	}
	return SourcePWX
}
