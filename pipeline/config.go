package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	pwxconv "github.com/lucasjlepore/pwx-converter"
	"github.com/lucasjlepore/pwx-converter/gpx"
	"github.com/lucasjlepore/pwx-converter/tcx"
)

// Lap table formats.
const (
	LapTableCSV     = "csv"
	LapTableParquet = "parquet"
	LapTableNone    = "none"
)

// Config controls conversions. Zero values are replaced by DefaultConfig values
// when loaded from YAML.
type Config struct {
	// Creator is written to the GPX creator attribute.
	Creator string `yaml:"creator"`
	// TimeZone resolves PWX times that carry no zone. Empty means the host zone.
	TimeZone string `yaml:"time_zone"`
	// Workers bounds how many workouts are segmented concurrently.
	Workers int `yaml:"workers"`
	// LapTable selects the lap table artifact: csv, parquet or none.
	LapTable string `yaml:"lap_table"`
	// LastPointSpeed selects the inferred speed of a lap's final point: legacy or carry.
	LastPointSpeed string            `yaml:"last_point_speed"`
	Application    ApplicationConfig `yaml:"application"`
	Log            LogConfig         `yaml:"log"`
}

// ApplicationConfig is the TCX author footer.
type ApplicationConfig struct {
	Name         string `yaml:"name"`
	VersionMajor uint16 `yaml:"version_major"`
	VersionMinor uint16 `yaml:"version_minor"`
	BuildType    string `yaml:"build_type"`
	BuildTime    string `yaml:"build_time"`
	Builder      string `yaml:"builder"`
	LangID       string `yaml:"lang_id"`
	PartNumber   string `yaml:"part_number"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	author := tcx.DefaultAuthor()
	return Config{
		Creator:        gpx.DefaultCreator,
		Workers:        4,
		LapTable:       LapTableCSV,
		LastPointSpeed: "legacy",
		Application: ApplicationConfig{
			Name:         author.Name,
			VersionMajor: author.Build.Version.VersionMajor,
			VersionMinor: author.Build.Version.VersionMinor,
			BuildType:    author.Build.Type,
			BuildTime:    author.Build.Time,
			Builder:      author.Build.Builder,
			LangID:       author.LangID,
			PartNumber:   author.PartNumber,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.LapTable) {
	case LapTableCSV, LapTableParquet, LapTableNone:
	default:
		return fmt.Errorf("unsupported lap_table %q (expected csv|parquet|none)", c.LapTable)
	}
	if _, err := c.lastPointMode(); err != nil {
		return err
	}
	if _, err := c.location(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func (c Config) lastPointMode() (pwxconv.LastPointMode, error) {
	switch strings.ToLower(strings.TrimSpace(c.LastPointSpeed)) {
	case "", "legacy":
		return pwxconv.LastPointLegacy, nil
	case "carry":
		return pwxconv.LastPointCarry, nil
	default:
		return 0, fmt.Errorf("unsupported last_point_speed %q (expected legacy|carry)", c.LastPointSpeed)
	}
}

func (c Config) location() (*time.Location, error) {
	if strings.TrimSpace(c.TimeZone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time_zone: %w", err)
	}
	return loc, nil
}

func (c Config) author() tcx.Application {
	a := c.Application
	return tcx.Application{
		Name: a.Name,
		Build: tcx.BuildStamp{
			Version: tcx.Version{VersionMajor: a.VersionMajor, VersionMinor: a.VersionMinor},
			Type:    a.BuildType,
			Time:    a.BuildTime,
			Builder: a.Builder,
		},
		LangID:     a.LangID,
		PartNumber: a.PartNumber,
	}
}

// NewLogger builds a logrus logger from the log settings.
func NewLogger(cfg LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q (expected text|json)", cfg.Format)
	}
	return logger, nil
}
