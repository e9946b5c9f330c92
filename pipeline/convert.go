package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/fitsource"
	"github.com/lucasjlepore/pwx-converter/gpx"
	"github.com/lucasjlepore/pwx-converter/pwx"
	"github.com/lucasjlepore/pwx-converter/tcx"
)

// Converter turns source documents into validated GPX or TCX documents.
type Converter struct {
	cfg  Config
	log  *logrus.Logger
	loc  *time.Location
	mode pwxconv.LastPointMode
	now  func() time.Time
}

// Conversion is one validated output document and its lap reports.
type Conversion struct {
	Source   SourceFormat
	Target   Format
	Document []byte
	Workouts []pwxconv.WorkoutReport
	Warnings []string
}

// New validates cfg and returns a Converter. A nil logger discards output.
func New(cfg Config, log *logrus.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.location()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.lastPointMode()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Converter{cfg: cfg, log: log, loc: loc, mode: mode, now: time.Now}, nil
}

// Convert converts a source document with the default configuration.
func Convert(source []byte, target Format) ([]byte, error) {
	c, err := New(DefaultConfig(), nil)
	if err != nil {
		return nil, err
	}
	conv, err := c.Convert(source, target)
	if err != nil {
		return nil, err
	}
	return conv.Document, nil
}

// Decode parses a PWX or FIT source document into workouts.
func (c *Converter) Decode(source []byte) ([]pwxconv.Workout, SourceFormat, error) {
	format := DetectSource(source)
	var (
		workouts []pwxconv.Workout
		err      error
	)
	switch format {
	case SourceFIT:
		workouts, err = fitsource.Decode(bytes.NewReader(source))
	default:
		workouts, err = pwx.Decode(bytes.NewReader(source), pwx.Options{Location: c.loc})
	}
	if err != nil {
		return nil, format, err
	}
	return workouts, format, nil
}

// Convert decodes source, segments every workout and builds the validated
// target document.
func (c *Converter) Convert(source []byte, target Format) (*Conversion, error) {
	target, err := ParseFormat(string(target))
	if err != nil {
		return nil, err
	}
	workouts, format, err := c.Decode(source)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"source":   format,
		"target":   target,
		"workouts": len(workouts),
	}).Debug("source decoded")

	prepared, warnings, err := c.prepare(workouts, target)
	if err != nil {
		return nil, err
	}

	var doc []byte
	switch target {
	case FormatTCX:
		author := c.cfg.author()
		doc, err = tcx.EncodePrepared(prepared, tcx.Options{LastPoint: c.mode, Author: &author})
	case FormatGPX:
		doc, err = gpx.Encode(workouts, gpx.Options{Creator: c.cfg.Creator, Now: c.now})
	default:
		return nil, fmt.Errorf("%w: target %q", pwxconv.ErrUnsupportedFormat, target)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s document: %w", target, err)
	}

	reports := make([]pwxconv.WorkoutReport, 0, len(prepared))
	for i, p := range prepared {
		reports = append(reports, p.Report(i+1))
	}
	c.log.WithFields(logrus.Fields{
		"target":   target,
		"workouts": len(reports),
		"bytes":    len(doc),
	}).Info("conversion complete")

	return &Conversion{
		Source:   format,
		Target:   target,
		Document: doc,
		Workouts: reports,
		Warnings: warnings,
	}, nil
}

// prepare segments workouts concurrently. Each task writes only its own slot.
// GPX output has no laps, so a workout whose boundaries break the lap
// preconditions is still converted and reported without laps.
func (c *Converter) prepare(workouts []pwxconv.Workout, target Format) ([]pwxconv.PreparedWorkout, []string, error) {
	opts := pwxconv.PrepareOptions{LastPoint: c.mode}
	if target == FormatTCX {
		opts = tcx.PrepareOptions(c.mode)
	}

	prepared := make([]pwxconv.PreparedWorkout, len(workouts))
	failures := make([]error, len(workouts))

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i := range workouts {
		i := i
		g.Go(func() error {
			p, err := pwxconv.PrepareWorkout(workouts[i], opts)
			if err != nil {
				if target == FormatTCX {
					return fmt.Errorf("prepare workout %d: %w", i+1, err)
				}
				failures[i] = err
				prepared[i] = pwxconv.PreparedWorkout{Workout: workouts[i]}
				return nil
			}
			prepared[i] = p
			c.log.WithFields(logrus.Fields{
				"workout": i + 1,
				"laps":    len(p.Laps),
				"samples": len(p.Workout.Samples),
				"dropped": p.Dropped,
			}).Debug("workout prepared")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []string
	for i, err := range failures {
		if err == nil {
			continue
		}
		msg := fmt.Sprintf("workout %d: laps skipped: %v", i+1, err)
		c.log.WithField("workout", i+1).Warn(msg)
		warnings = append(warnings, msg)
	}
	return prepared, warnings, nil
}
