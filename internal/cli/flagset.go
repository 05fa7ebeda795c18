package cli

import (
	"flag"
	"fmt"
	"io"

	"twohit/internal/version"
)

// NewFlagSet returns a ContinueOnError FlagSet whose Usage prints the
// grouped twohit help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() { PrintUsage(fs.Output(), fs, name) }
	return fs
}

// PrintUsage writes the help text. Defaults are read back from fs, so call
// it after ParseArgs has registered the flags.
func PrintUsage(out io.Writer, fs *flag.FlagSet, name string) {
	def := func(flagName string) string {
		if f := fs.Lookup(flagName); f != nil {
			return f.DefValue
		}
		return ""
	}

	fmt.Fprintf(out, "%s – first-hit timing and lag between two imaging channels\n\n", name)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s [options] --signal resultsGREEN.csv --overlap resultsYELLOW.csv [--output lags.csv]\n", name)
	fmt.Fprintf(out, "  %s [options] SIGNAL OVERLAP [OUTPUT]\n", name)

	fmt.Fprintln(out, "\nInput:")
	fmt.Fprintln(out, "  -s, --signal file           Signal-channel results table or '-' for STDIN [*]")
	fmt.Fprintln(out, "  -l, --overlap file          Overlap-channel results table or '-' for STDIN [*]")
	fmt.Fprintf(out, "  -d, --delimiter string      Single-character field delimiter ('tab' for TAB) [%s]\n", def("delimiter"))
	fmt.Fprintf(out, "      --roi-column string     ROI identifier column [%s]\n", def("roi-column"))
	fmt.Fprintf(out, "      --time-column string    Timepoint column [%s]\n", def("time-column"))
	fmt.Fprintf(out, "      --signal-column string  Intensity column [%s]\n", def("signal-column"))
	fmt.Fprintf(out, "      --signal-label string   Header label for the signal channel [%s]\n", def("signal-label"))
	fmt.Fprintf(out, "      --overlap-label string  Header label for the overlap channel [%s]\n", def("overlap-label"))
	fmt.Fprintln(out, "      --config file           YAML file with defaults (flags override)")

	fmt.Fprintln(out, "\nPairing:")
	fmt.Fprintf(out, "      --on-mismatch string    ROI mismatch policy: abort | skip [%s]\n", def("on-mismatch"))

	fmt.Fprintln(out, "\nOutput:")
	fmt.Fprintln(out, "  -o, --output file           Lag table destination, '-' for STDOUT [-]")
	fmt.Fprintf(out, "      --format string         Lag table format: csv | json | jsonl [%s]\n", def("format"))
	fmt.Fprintln(out, "      --plot file             Δt histogram image (.png | .svg | .pdf)")
	fmt.Fprintln(out, "      --chart file            Interactive t1/t2 scatter (HTML)")
	fmt.Fprintln(out, "      --db file               Archive the run in a SQLite database")
	fmt.Fprintln(out, "      --metrics-file file     Prometheus text-format run metrics")

	fmt.Fprintln(out, "\nMiscellaneous:")
	fmt.Fprintf(out, "      --watch                 Re-run whenever an input file changes [%s]\n", def("watch"))
	fmt.Fprintf(out, "      --debounce duration     Quiet period before a watch re-run [%s]\n", def("debounce"))
	fmt.Fprintf(out, "      --verbose               Dump intermediate tables to STDERR [%s]\n", def("verbose"))
	fmt.Fprintf(out, "  -q, --quiet                 Only log errors [%s]\n", def("quiet"))
	fmt.Fprintf(out, "      --log-format string     Log format: text | json [%s]\n", def("log-format"))
	fmt.Fprintln(out, "      --examples              Show quickstart examples and exit")
	fmt.Fprintln(out, "  -v, --version               Print version and exit")
	fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
}
