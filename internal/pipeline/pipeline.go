package pipeline

import (
	"errors"
	"fmt"

	"twohit/internal/hits"
	"twohit/internal/pairing"
	"twohit/internal/table"
)

// Default channel labels, written over the first header column on ingest.
const (
	DefaultSignalLabel  = "Green"
	DefaultOverlapLabel = "Yellow"
)

// Channel is one input file and the label its header gets.
type Channel struct {
	Path  string
	Label string
}

// Columns names the input fields the pipeline depends on.
type Columns struct {
	ROI    string // ROI identifier
	Time   string // timepoint index
	Signal string // measured intensity
}

// DefaultColumns matches the ImageJ measurement export.
var DefaultColumns = Columns{ROI: "X", Time: "Slice", Signal: "Mean"}

// Config controls one pipeline run.
type Config struct {
	Signal    Channel
	Overlap   Channel
	Delimiter rune
	Columns   Columns
	Policy    pairing.Policy
}

// DefaultConfig returns a Config with everything but the input paths filled in.
func DefaultConfig() Config {
	return Config{
		Signal:    Channel{Label: DefaultSignalLabel},
		Overlap:   Channel{Label: DefaultOverlapLabel},
		Delimiter: table.DefaultDelimiter,
		Columns:   DefaultColumns,
		Policy:    pairing.Abort,
	}
}

// Validate checks the config before any file is touched.
func (c Config) Validate() error {
	var errs []error
	if c.Signal.Path == "" {
		errs = append(errs, errors.New("signal file path is required"))
	}
	if c.Overlap.Path == "" {
		errs = append(errs, errors.New("overlap file path is required"))
	}
	if c.Signal.Path == table.Stdin && c.Overlap.Path == table.Stdin {
		errs = append(errs, errors.New("only one input can be read from stdin"))
	}
	if c.Signal.Label != "" && c.Signal.Label == c.Overlap.Label {
		errs = append(errs, fmt.Errorf("signal and overlap labels must differ (both %q)", c.Signal.Label))
	}
	if err := table.ValidateDelimiter(c.Delimiter); err != nil {
		errs = append(errs, err)
	}
	if c.Columns.ROI == "" || c.Columns.Time == "" || c.Columns.Signal == "" {
		errs = append(errs, errors.New("ROI, time and signal column names are required"))
	}
	if c.Columns.ROI == c.Columns.Time {
		errs = append(errs, fmt.Errorf("ROI and time columns must differ (both %q)", c.Columns.ROI))
	}
	return errors.Join(errs...)
}

// Result keeps every intermediate table so callers can show them.
type Result struct {
	SignalSorted  *table.Table
	OverlapSorted *table.Table
	SignalHits    *table.Table
	OverlapHits   *table.Table
	Merged        *table.Table // pairing order
	Lags          *table.Table // ordered by (t1, t2)
	Skipped       []*pairing.AlignmentError
}

// Run executes the whole pipeline. Stages run strictly one after another;
// the first error aborts the run. Errors are returned unwrapped so their
// message starts with the error kind; each kind already names the file or
// table at fault.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}

	var err error
	res.SignalSorted, res.SignalHits, err = runChannel(cfg, cfg.Signal)
	if err != nil {
		return nil, err
	}
	res.OverlapSorted, res.OverlapHits, err = runChannel(cfg, cfg.Overlap)
	if err != nil {
		return nil, err
	}

	paired, err := pairing.Pair(res.SignalHits, res.OverlapHits, pairing.Options{
		ROI:    cfg.Columns.ROI,
		Time:   cfg.Columns.Time,
		Policy: cfg.Policy,
	})
	if err != nil {
		return nil, err
	}
	res.Merged = paired.Table
	res.Skipped = paired.Skipped

	res.Lags, err = res.Merged.SortBy(pairing.ColT1, pairing.ColT2)
	if err != nil {
		return nil, fmt.Errorf("ordering lags: %w", err)
	}
	return res, nil
}

// runChannel reads one channel, orders it by (ROI, time) and extracts hits.
func runChannel(cfg Config, ch Channel) (sorted, hitTable *table.Table, err error) {
	raw, err := table.ReadFile(ch.Path, ch.Label, cfg.Delimiter)
	if err != nil {
		return nil, nil, err
	}
	if err := raw.RequireFinite(ch.Path, cfg.Columns.ROI, cfg.Columns.Time, cfg.Columns.Signal); err != nil {
		return nil, nil, err
	}
	sorted, err = raw.SortBy(cfg.Columns.ROI, cfg.Columns.Time)
	if err != nil {
		return nil, nil, err
	}
	hitTable, err = hits.Detect(sorted, hits.Columns{ROI: cfg.Columns.ROI, Signal: cfg.Columns.Signal})
	if err != nil {
		return nil, nil, err
	}
	return sorted, hitTable, nil
}
