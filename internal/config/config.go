// Package config loads the optional YAML file that supplies defaults for the
// twohit command line. Flags given explicitly always win over file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"twohit/internal/pairing"
	"twohit/internal/pipeline"
	"twohit/internal/table"
)

// Output and log formats accepted by the file and the flags.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"

	LogText = "text"
	LogJSON = "json"
)

// DefaultDebounce is the quiet period watch mode waits for.
const DefaultDebounce = 250 * time.Millisecond

// Config mirrors the command-line flags. Input and output paths for the lag
// table are not configurable here; they name the data, not the analysis.
type Config struct {
	// Delimiter is a single character; "tab" or `\t` select a tab.
	Delimiter string `yaml:"delimiter"`

	// Format is the lag table encoding: csv | json | jsonl.
	Format string `yaml:"format"`

	// OnMismatch is the alignment policy: abort | skip.
	OnMismatch string `yaml:"on_mismatch"`

	Columns Columns `yaml:"columns"`
	Labels  Labels  `yaml:"labels"`
	Outputs Outputs `yaml:"outputs"`

	// LogFormat is text | json.
	LogFormat string `yaml:"log_format"`

	// Debounce is how long watch mode waits after the last change event.
	Debounce time.Duration `yaml:"debounce"`
}

// Columns names the input fields.
type Columns struct {
	ROI    string `yaml:"roi"`
	Time   string `yaml:"time"`
	Signal string `yaml:"signal"`
}

// Labels are written over the first header column of each channel.
type Labels struct {
	Signal  string `yaml:"signal"`
	Overlap string `yaml:"overlap"`
}

// Outputs are the optional side products of a run. Empty means disabled.
type Outputs struct {
	Plot        string `yaml:"plot"`
	Chart       string `yaml:"chart"`
	DB          string `yaml:"db"`
	MetricsFile string `yaml:"metrics_file"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Delimiter:  string(table.DefaultDelimiter),
		Format:     FormatCSV,
		OnMismatch: pairing.Abort.String(),
		Columns: Columns{
			ROI:    pipeline.DefaultColumns.ROI,
			Time:   pipeline.DefaultColumns.Time,
			Signal: pipeline.DefaultColumns.Signal,
		},
		Labels: Labels{
			Signal:  pipeline.DefaultSignalLabel,
			Overlap: pipeline.DefaultOverlapLabel,
		},
		LogFormat: LogText,
		Debounce:  DefaultDebounce,
	}
}

// Load reads and parses the YAML file at path. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected so typos do not pass silently.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := table.ParseDelimiter(c.Delimiter); err != nil {
		errs = append(errs, fmt.Errorf("delimiter: %w", err))
	}
	switch c.Format {
	case FormatCSV, FormatJSON, FormatJSONL:
	default:
		errs = append(errs, fmt.Errorf("format: unknown %q (want csv | json | jsonl)", c.Format))
	}
	if _, err := pairing.ParsePolicy(c.OnMismatch); err != nil {
		errs = append(errs, fmt.Errorf("on_mismatch: %w", err))
	}
	if c.Columns.ROI == "" || c.Columns.Time == "" || c.Columns.Signal == "" {
		errs = append(errs, errors.New("columns: roi, time and signal must be non-empty"))
	}
	if c.Labels.Signal == "" || c.Labels.Overlap == "" {
		errs = append(errs, errors.New("labels: signal and overlap must be non-empty"))
	}
	switch c.LogFormat {
	case LogText, LogJSON:
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown %q (want text | json)", c.LogFormat))
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	return errors.Join(errs...)
}
