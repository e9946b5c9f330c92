package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	pwxconv "github.com/lucasjlepore/pwx-converter"
)

const (
	manifestFileName = "manifest.json"
	notesFileName    = "conversion_notes.md"
	manifestVersion  = "1.0"
)

// Options configures a conversion from a file on disk into an output directory.
type Options struct {
	SourcePath string
	OutDir     string
	Target     Format
	Overwrite  bool
	CopySource bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir      string   `json:"output_dir"`
	DocumentPath   string   `json:"document_path"`
	ManifestPath   string   `json:"manifest_path"`
	NotesPath      string   `json:"notes_path"`
	LapTablePath   string   `json:"lap_table_path,omitempty"`
	SourceCopyPath string   `json:"source_copy_path,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// BytesOptions configures an in-memory conversion.
type BytesOptions struct {
	SourceFileName string
	Data           []byte
	Target         Format
	CopySource     bool
}

// BytesResult holds every generated artifact keyed by file name.
type BytesResult struct {
	Files      map[string][]byte
	Warnings   []string
	Conversion *Conversion
}

// Manifest describes one conversion run.
type Manifest struct {
	FormatVersion  string                  `json:"format_version"`
	GeneratedAt    string                  `json:"generated_at"`
	SourceFileName string                  `json:"source_file_name"`
	SourceFormat   SourceFormat            `json:"source_format"`
	SourceSHA256   string                  `json:"source_sha256"`
	SourceSize     int64                   `json:"source_size_bytes"`
	Target         Format                  `json:"target"`
	Document       string                  `json:"document"`
	LapTable       string                  `json:"lap_table,omitempty"`
	SourceCopy     string                  `json:"source_copy,omitempty"`
	Workouts       []pwxconv.WorkoutReport `json:"workouts"`
	Warnings       []string                `json:"warnings,omitempty"`
}

// Run converts with the default configuration and writes artifacts to disk.
func Run(opts Options) (*Result, error) {
	c, err := New(DefaultConfig(), nil)
	if err != nil {
		return nil, err
	}
	return c.Run(opts)
}

// RunBytes converts with the default configuration and keeps artifacts in memory.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	c, err := New(DefaultConfig(), nil)
	if err != nil {
		return nil, err
	}
	return c.RunBytes(opts)
}

// Run reads the source file, converts it and writes every artifact into
// opts.OutDir.
func (c *Converter) Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.SourcePath) == "" {
		return nil, fmt.Errorf("source path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	data, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	res, err := c.RunBytes(BytesOptions{
		SourceFileName: filepath.Base(opts.SourcePath),
		Data:           data,
		Target:         opts.Target,
	})
	if err != nil {
		return nil, err
	}

	for name, body := range res.Files {
		if err := os.WriteFile(filepath.Join(opts.OutDir, name), body, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	out := &Result{
		OutputDir:    opts.OutDir,
		DocumentPath: filepath.Join(opts.OutDir, documentName(opts.SourcePath, res.Conversion.Target)),
		ManifestPath: filepath.Join(opts.OutDir, manifestFileName),
		NotesPath:    filepath.Join(opts.OutDir, notesFileName),
		Warnings:     res.Warnings,
	}
	if name := lapTableName(c.lapTableFormat()); name != "" {
		out.LapTablePath = filepath.Join(opts.OutDir, name)
	}
	if opts.CopySource {
		out.SourceCopyPath = filepath.Join(opts.OutDir, sourceCopyName(opts.SourcePath, res.Conversion.Source))
		if err := copyFile(opts.SourcePath, out.SourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source file: %w", err)
		}
	}
	c.log.WithFields(logrus.Fields{
		"out":      opts.OutDir,
		"document": out.DocumentPath,
	}).Info("artifacts written")
	return out, nil
}

// RunBytes converts opts.Data and returns the document, manifest, notes and
// lap table keyed by file name.
func (c *Converter) RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.Data) == 0 {
		return nil, fmt.Errorf("source data is required")
	}
	target, err := ParseFormat(string(opts.Target))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.SourceFileName)
	if name == "" {
		name = "input.pwx"
	}

	conv, err := c.Convert(opts.Data, target)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, 5)
	docName := documentName(name, target)
	files[docName] = conv.Document

	lapFormat := c.lapTableFormat()
	lapName := lapTableName(lapFormat)
	if lapName != "" {
		table, err := marshalLapTable(lapFormat, conv.Workouts)
		if err != nil {
			return nil, fmt.Errorf("build lap table: %w", err)
		}
		files[lapName] = table
	}

	files[notesFileName] = []byte(pwxconv.BuildConversionNotes(string(target), conv.Workouts) + "\n")

	copyName := ""
	if opts.CopySource {
		copyName = sourceCopyName(name, conv.Source)
		files[copyName] = append([]byte(nil), opts.Data...)
	}

	sum := sha256.Sum256(opts.Data)
	manifest := Manifest{
		FormatVersion:  manifestVersion,
		GeneratedAt:    c.now().UTC().Format(time.RFC3339),
		SourceFileName: name,
		SourceFormat:   conv.Source,
		SourceSHA256:   hex.EncodeToString(sum[:]),
		SourceSize:     int64(len(opts.Data)),
		Target:         target,
		Document:       docName,
		LapTable:       lapName,
		SourceCopy:     copyName,
		Workouts:       conv.Workouts,
		Warnings:       conv.Warnings,
	}
	body, err := marshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", manifestFileName, err)
	}
	files[manifestFileName] = body

	return &BytesResult{Files: files, Warnings: conv.Warnings, Conversion: conv}, nil
}

func (c *Converter) lapTableFormat() string {
	return strings.ToLower(strings.TrimSpace(c.cfg.LapTable))
}

// documentName swaps the source extension for the target's.
func documentName(source string, target Format) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if strings.EqualFold(filepath.Ext(base), ".pwx") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if base == "" || base == "." {
		base = "workout"
	}
	return base + "." + string(target)
}

func sourceCopyName(source string, format SourceFormat) string {
	ext := "." + string(format)
	if strings.EqualFold(filepath.Ext(source), ".gz") {
		ext += ".gz"
	}
	return "source" + ext
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
