// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"twohit/internal/cliutil"
	"twohit/internal/config"
	"twohit/internal/pairing"
	"twohit/internal/pipeline"
	"twohit/internal/table"
)

// Options holds all CLI flags and arguments. The embedded Config carries the
// settings a --config file may also supply.
type Options struct {
	// Input / output
	Signal     string
	Overlap    string
	Output     string // "-" is stdout
	ConfigFile string

	config.Config

	// Misc
	Watch   bool
	Verbose bool
	Quiet   bool
	Version bool
}

// UsageError marks a command-line mistake; the app prints help after it.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageErr(err error) error { return &UsageError{Err: err} }

// fileSetting copies one file-backed setting. names lists the flag and its
// aliases; an explicit value for any of them keeps the file from applying.
type fileSetting struct {
	names []string
	apply func(dst, src *config.Config)
}

var fileSettings = []fileSetting{
	{[]string{"delimiter", "d"}, func(d, s *config.Config) { d.Delimiter = s.Delimiter }},
	{[]string{"format"}, func(d, s *config.Config) { d.Format = s.Format }},
	{[]string{"on-mismatch"}, func(d, s *config.Config) { d.OnMismatch = s.OnMismatch }},
	{[]string{"roi-column"}, func(d, s *config.Config) { d.Columns.ROI = s.Columns.ROI }},
	{[]string{"time-column"}, func(d, s *config.Config) { d.Columns.Time = s.Columns.Time }},
	{[]string{"signal-column"}, func(d, s *config.Config) { d.Columns.Signal = s.Columns.Signal }},
	{[]string{"signal-label"}, func(d, s *config.Config) { d.Labels.Signal = s.Labels.Signal }},
	{[]string{"overlap-label"}, func(d, s *config.Config) { d.Labels.Overlap = s.Labels.Overlap }},
	{[]string{"plot"}, func(d, s *config.Config) { d.Outputs.Plot = s.Outputs.Plot }},
	{[]string{"chart"}, func(d, s *config.Config) { d.Outputs.Chart = s.Outputs.Chart }},
	{[]string{"db"}, func(d, s *config.Config) { d.Outputs.DB = s.Outputs.DB }},
	{[]string{"metrics-file"}, func(d, s *config.Config) { d.Outputs.MetricsFile = s.Outputs.MetricsFile }},
	{[]string{"log-format"}, func(d, s *config.Config) { d.LogFormat = s.LogFormat }},
	{[]string{"debounce"}, func(d, s *config.Config) { d.Debounce = s.Debounce }},
}

// Register wires every flag onto fs with the built-in defaults.
func Register(fs *flag.FlagSet, o *Options) {
	def := config.Defaults()
	o.Config = *def

	// Input / output
	fs.StringVar(&o.Signal, "signal", "", "signal-channel results table or '-' [*]")
	fs.StringVar(&o.Signal, "s", "", "alias of --signal")
	fs.StringVar(&o.Overlap, "overlap", "", "overlap-channel results table or '-' [*]")
	fs.StringVar(&o.Overlap, "l", "", "alias of --overlap")
	fs.StringVar(&o.Output, "output", "", "lag table destination ('-' = stdout) [-]")
	fs.StringVar(&o.Output, "o", "", "alias of --output")
	fs.StringVar(&o.ConfigFile, "config", "", "YAML config file")

	// Parsing
	fs.StringVar(&o.Delimiter, "delimiter", def.Delimiter, "field delimiter")
	fs.StringVar(&o.Delimiter, "d", def.Delimiter, "alias of --delimiter")
	fs.StringVar(&o.Columns.ROI, "roi-column", def.Columns.ROI, "ROI identifier column")
	fs.StringVar(&o.Columns.Time, "time-column", def.Columns.Time, "timepoint column")
	fs.StringVar(&o.Columns.Signal, "signal-column", def.Columns.Signal, "intensity column")
	fs.StringVar(&o.Labels.Signal, "signal-label", def.Labels.Signal, "signal channel label")
	fs.StringVar(&o.Labels.Overlap, "overlap-label", def.Labels.Overlap, "overlap channel label")

	// Pairing
	fs.StringVar(&o.OnMismatch, "on-mismatch", def.OnMismatch, "mismatch policy: abort | skip")

	// Output
	fs.StringVar(&o.Format, "format", def.Format, "lag table format: csv | json | jsonl")
	fs.StringVar(&o.Outputs.Plot, "plot", "", "Δt histogram image")
	fs.StringVar(&o.Outputs.Chart, "chart", "", "t1/t2 scatter HTML")
	fs.StringVar(&o.Outputs.DB, "db", "", "SQLite run archive")
	fs.StringVar(&o.Outputs.MetricsFile, "metrics-file", "", "Prometheus textfile")

	// Misc
	fs.BoolVar(&o.Watch, "watch", false, "re-run on input change")
	fs.DurationVar(&o.Debounce, "debounce", def.Debounce, "watch quiet period")
	fs.BoolVar(&o.Verbose, "verbose", false, "dump intermediate tables")
	fs.BoolVar(&o.Quiet, "quiet", false, "only log errors")
	fs.BoolVar(&o.Quiet, "q", false, "alias of --quiet")
	fs.StringVar(&o.LogFormat, "log-format", def.LogFormat, "log format: text | json")
	fs.BoolVar(&o.Version, "version", false, "print version and exit")
	fs.BoolVar(&o.Version, "v", false, "alias of --version")
}

// ParseArgs registers and parses all flags, applies the --config file under
// explicit flags, assigns positionals and validates the result.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	var help, showExamples bool

	Register(fs, &o)
	fs.BoolVar(&help, "h", false, "show this help")
	fs.BoolVar(&help, "help", false, "show this help")
	fs.BoolVar(&showExamples, "examples", false, "show quickstart examples and exit")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, err
		}
		return o, usageErr(err)
	}
	if showExamples {
		return o, ErrPrintedAndExitOK
	}
	if help {
		return o, flag.ErrHelp
	}
	if o.Version {
		return o, nil
	}

	if err := cliutil.FillPositionals(posArgs, &o.Signal, &o.Overlap, &o.Output); err != nil {
		return o, usageErr(err)
	}
	if o.Output == "" {
		o.Output = table.Stdin
	}

	if o.ConfigFile != "" {
		fileCfg, err := config.Load(o.ConfigFile)
		if err != nil {
			return o, err
		}
		applyFile(fs, &o.Config, fileCfg)
	}

	if err := o.validate(); err != nil {
		return o, usageErr(err)
	}
	return o, nil
}

// applyFile copies file values for every setting not given on the command line.
func applyFile(fs *flag.FlagSet, dst, src *config.Config) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, s := range fileSettings {
		explicit := false
		for _, n := range s.names {
			explicit = explicit || set[n]
		}
		if !explicit {
			s.apply(dst, src)
		}
	}
}

func (o *Options) validate() error {
	var errs []error
	if o.Signal == "" {
		errs = append(errs, errors.New("--signal is required"))
	}
	if o.Overlap == "" {
		errs = append(errs, errors.New("--overlap is required"))
	}
	if err := o.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Watch && (o.Signal == table.Stdin || o.Overlap == table.Stdin) {
		errs = append(errs, errors.New("--watch needs file inputs, not stdin"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	pc, err := o.PipelineConfig()
	if err != nil {
		return err
	}
	return pc.Validate()
}

// PipelineConfig converts the options into a pipeline.Config.
func (o *Options) PipelineConfig() (pipeline.Config, error) {
	delim, err := table.ParseDelimiter(o.Delimiter)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("--delimiter: %w", err)
	}
	policy, err := pairing.ParsePolicy(o.OnMismatch)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("--on-mismatch: %w", err)
	}
	return pipeline.Config{
		Signal:    pipeline.Channel{Path: o.Signal, Label: o.Labels.Signal},
		Overlap:   pipeline.Channel{Path: o.Overlap, Label: o.Labels.Overlap},
		Delimiter: delim,
		Columns: pipeline.Columns{
			ROI:    o.Columns.ROI,
			Time:   o.Columns.Time,
			Signal: o.Columns.Signal,
		},
		Policy: policy,
	}, nil
}
