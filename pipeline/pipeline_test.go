package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

const rideDocument = `<?xml version="1.0" encoding="utf-8"?>
<pwx xmlns="http://www.peaksware.com/PWX/1/0" version="1.0">
  <workout>
    <sportType>Bike</sportType>
    <device><make>Timex</make><model>Cycle Trainer</model></device>
    <time>2013-01-20T09:15:00Z</time>
    <summarydata><beginning>0</beginning><duration>4</duration><work>20</work></summarydata>
    <segment><name>Warmup</name><summarydata><beginning>0</beginning><duration>2</duration></summarydata></segment>
    <segment><name>Effort</name><summarydata><beginning>2</beginning><duration>2</duration></summarydata></segment>
    <sample><timeoffset>0</timeoffset><hr>120</hr><dist>0</dist><lat>46.1</lat><lon>7.2</lon></sample>
    <sample><timeoffset>1</timeoffset><hr>124</hr><dist>5</dist><lat>46.1001</lat><lon>7.2001</lon></sample>
    <sample><timeoffset>2</timeoffset><hr>130</hr><pwr>250</pwr><dist>11</dist><lat>46.1002</lat><lon>7.2002</lon></sample>
    <sample><timeoffset>3</timeoffset><hr>134</hr><pwr>260</pwr><dist>18</dist><lat>46.1003</lat><lon>7.2003</lon></sample>
  </workout>
</pwx>`

// Second segment starts before the first.
const unsortedDocument = `<?xml version="1.0" encoding="utf-8"?>
<pwx xmlns="http://www.peaksware.com/PWX/1/0" version="1.0">
  <workout>
    <sportType>Run</sportType>
    <time>2013-01-20T09:15:00Z</time>
    <summarydata><beginning>0</beginning><duration>4</duration></summarydata>
    <segment><summarydata><beginning>2</beginning></summarydata></segment>
    <segment><summarydata><beginning>1</beginning></summarydata></segment>
    <sample><timeoffset>0</timeoffset><spd>3</spd><dist>0</dist></sample>
    <sample><timeoffset>3</timeoffset><spd>3</spd><dist>9</dist></sample>
  </workout>
</pwx>`

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestConverter(t *testing.T, cfg Config) *Converter {
	t.Helper()
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestConvertTCXReportsLaps(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	conv, err := c.Convert([]byte(rideDocument), FormatTCX)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if conv.Source != SourcePWX {
		t.Fatalf("unexpected source format: %q", conv.Source)
	}
	if !bytes.Contains(conv.Document, []byte("<TrainingCenterDatabase")) {
		t.Fatalf("document is not TCX:\n%s", conv.Document)
	}
	if len(conv.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", conv.Warnings)
	}
	if len(conv.Workouts) != 1 {
		t.Fatalf("expected one workout report, got %d", len(conv.Workouts))
	}

	r := conv.Workouts[0]
	if r.TargetSport != pwxconv.TargetBiking {
		t.Fatalf("unexpected target sport: %q", r.TargetSport)
	}
	if r.Device != "Timex Cycle Trainer" {
		t.Fatalf("unexpected device: %q", r.Device)
	}
	if len(r.Laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(r.Laps))
	}
	names := []string{r.Laps[0].Name, r.Laps[1].Name}
	if diff := cmp.Diff([]string{"Warmup", "Effort"}, names); diff != "" {
		t.Fatalf("lap names mismatch (-want +got):\n%s", diff)
	}
	if r.Laps[0].PointCount != 2 || r.Laps[1].PointCount != 2 {
		t.Fatalf("unexpected lap point counts: %d/%d", r.Laps[0].PointCount, r.Laps[1].PointCount)
	}
	if !r.Laps[0].SpeedInferred {
		t.Fatalf("expected speeds to be inferred from distance")
	}
}

func TestConvertGPXKeepsWorkoutWithBadBoundaries(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	conv, err := c.Convert([]byte(unsortedDocument), FormatGPX)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !bytes.Contains(conv.Document, []byte("<gpx")) {
		t.Fatalf("document is not GPX:\n%s", conv.Document)
	}
	if got := bytes.Count(conv.Document, []byte("<trkpt")); got != 2 {
		t.Fatalf("expected 2 track points, got %d", got)
	}
	if len(conv.Warnings) != 1 || !strings.Contains(conv.Warnings[0], "workout 1") {
		t.Fatalf("expected one workout warning, got %v", conv.Warnings)
	}
	if len(conv.Workouts) != 1 || len(conv.Workouts[0].Laps) != 0 {
		t.Fatalf("expected a lap-less report, got %+v", conv.Workouts)
	}
}

func TestConvertTCXRejectsBadBoundaries(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	_, err := c.Convert([]byte(unsortedDocument), FormatTCX)
	if !errors.Is(err, pwxconv.ErrSegmentation) {
		t.Fatalf("expected ErrSegmentation, got %v", err)
	}
}

func TestConvertErrors(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	if _, err := c.Convert([]byte(rideDocument), Format("kml")); !errors.Is(err, pwxconv.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := c.Convert([]byte("<gpx/>"), FormatTCX); !errors.Is(err, pwxconv.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestConvertNormalizesTargetSpelling(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	tests := []struct {
		target Format
		want   Format
		root   string
	}{
		{"TCX", FormatTCX, "<TrainingCenterDatabase"},
		{" tcx", FormatTCX, "<TrainingCenterDatabase"},
		{".gpx", FormatGPX, "<gpx"},
	}
	for _, tc := range tests {
		conv, err := c.Convert([]byte(rideDocument), tc.target)
		if err != nil {
			t.Fatalf("Convert(%q) error: %v", tc.target, err)
		}
		if conv.Target != tc.want {
			t.Fatalf("Convert(%q) target = %q, want %q", tc.target, conv.Target, tc.want)
		}
		if !bytes.Contains(conv.Document, []byte(tc.root)) {
			t.Fatalf("Convert(%q) produced no %s document:\n%s", tc.target, tc.want, conv.Document)
		}
	}

	doc, err := Convert([]byte(rideDocument), "TCX")
	if err != nil || len(doc) == 0 {
		t.Fatalf("package Convert with upper-case target: %d bytes, %v", len(doc), err)
	}
}

func TestPackageConvert(t *testing.T) {
	doc, err := Convert([]byte(rideDocument), FormatGPX)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("<?xml")) {
		t.Fatalf("expected an XML declaration, got %q", doc[:min(len(doc), 20)])
	}
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	res, err := c.RunBytes(BytesOptions{
		SourceFileName: "ride.pwx",
		Data:           []byte(rideDocument),
		Target:         FormatTCX,
		CopySource:     true,
	})
	if err != nil {
		t.Fatalf("RunBytes error: %v", err)
	}

	required := []string{"ride.tcx", "laps.csv", "manifest.json", "conversion_notes.md", "source.pwx"}
	for _, name := range required {
		if _, ok := res.Files[name]; !ok {
			t.Fatalf("missing artifact %s", name)
		}
	}

	var manifest Manifest
	if err := json.Unmarshal(res.Files["manifest.json"], &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.GeneratedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected generated_at: %q", manifest.GeneratedAt)
	}
	if manifest.SourceFormat != SourcePWX || manifest.Target != FormatTCX {
		t.Fatalf("unexpected formats: %q -> %q", manifest.SourceFormat, manifest.Target)
	}
	if len(manifest.SourceSHA256) != 64 || manifest.SourceSize != int64(len(rideDocument)) {
		t.Fatalf("unexpected source digest: %q (%d bytes)", manifest.SourceSHA256, manifest.SourceSize)
	}
	if manifest.Document != "ride.tcx" || manifest.LapTable != "laps.csv" {
		t.Fatalf("unexpected artifact names: %+v", manifest)
	}

	rows, err := csv.NewReader(bytes.NewReader(res.Files["laps.csv"])).ReadAll()
	if err != nil {
		t.Fatalf("read lap table: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 lap rows, got %d rows", len(rows))
	}
	if diff := cmp.Diff(lapTableHeader, rows[0]); diff != "" {
		t.Fatalf("lap table header mismatch (-want +got):\n%s", diff)
	}
	if rows[2][3] != "Effort" {
		t.Fatalf("unexpected second lap name: %q", rows[2][3])
	}

	notes := string(res.Files["conversion_notes.md"])
	if !strings.Contains(notes, "Conversion to TCX: 1 workout(s)") {
		t.Fatalf("unexpected notes:\n%s", notes)
	}
}

func TestRunBytesWithoutLapTable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LapTable = LapTableNone
	c := newTestConverter(t, cfg)

	res, err := c.RunBytes(BytesOptions{Data: []byte(rideDocument), Target: FormatGPX})
	if err != nil {
		t.Fatalf("RunBytes error: %v", err)
	}
	if _, ok := res.Files["input.gpx"]; !ok {
		t.Fatalf("expected default document name, got %v", fileNames(res.Files))
	}
	if _, ok := res.Files["laps.csv"]; ok {
		t.Fatalf("lap table should be skipped")
	}
	if len(res.Files) != 3 {
		t.Fatalf("unexpected artifacts: %v", fileNames(res.Files))
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ride.pwx")
	if err := os.WriteFile(src, []byte(rideDocument), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	c := newTestConverter(t, DefaultConfig())
	res, err := c.Run(Options{SourcePath: src, OutDir: outDir, Target: FormatGPX, CopySource: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, path := range []string{res.DocumentPath, res.ManifestPath, res.NotesPath, res.LapTablePath, res.SourceCopyPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected artifact %s: %v", path, err)
		}
	}
	if filepath.Base(res.DocumentPath) != "ride.gpx" {
		t.Fatalf("unexpected document path: %s", res.DocumentPath)
	}

	if _, err := c.Run(Options{SourcePath: src, OutDir: outDir, Target: FormatGPX}); err == nil {
		t.Fatalf("expected an error for a non-empty output directory")
	}
	if _, err := c.Run(Options{SourcePath: src, OutDir: outDir, Target: FormatGPX, Overwrite: true}); err != nil {
		t.Fatalf("Run with overwrite error: %v", err)
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		source string
		target Format
		want   string
	}{
		{"ride.pwx", FormatTCX, "ride.tcx"},
		{"/tmp/ride.pwx.gz", FormatGPX, "ride.gpx"},
		{"activity.fit", FormatTCX, "activity.tcx"},
		{".pwx", FormatGPX, "workout.gpx"},
	}
	for _, tc := range tests {
		if got := documentName(tc.source, tc.target); got != tc.want {
			t.Fatalf("documentName(%q, %q) = %q, want %q", tc.source, tc.target, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"tcx", " TCX ", ".tcx"} {
		f, err := ParseFormat(name)
		if err != nil || f != FormatTCX {
			t.Fatalf("ParseFormat(%q) = %q, %v", name, f, err)
		}
	}
	if _, err := ParseFormat("kml"); !errors.Is(err, pwxconv.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDetectSource(t *testing.T) {
	fitHeader := []byte{14, 0x20, 0, 0, 0, 0, 0, 0, '.', 'F', 'I', 'T', 0, 0}
	if got := DetectSource(fitHeader); got != SourceFIT {
		t.Fatalf("expected fit, got %q", got)
	}
	if got := DetectSource([]byte(rideDocument)); got != SourcePWX {
		t.Fatalf("expected pwx, got %q", got)
	}
	if got := DetectSource(nil); got != SourcePWX {
		t.Fatalf("expected pwx for empty input, got %q", got)
	}
}

func fileNames(files map[string][]byte) []string {
	out := make([]string, 0, len(files))
	for name := range files {
		out = append(out, name)
	}
	return out
}
