package cli

import (
	"errors"
	"fmt"
	"io"
)

// ErrPrintedAndExitOK is returned by ParseArgs when the caller requested
// examples. Apps should print them and exit 0.
var ErrPrintedAndExitOK = errors.New("examples requested")

// PrintExamples prints a small quickstart followed by a pointer to --help.
func PrintExamples(out io.Writer, name string) {
	_, _ = fmt.Fprintf(out, "%s — quickstart\n\n", name)
	_, _ = fmt.Fprintln(out, "Pair the first nonzero timepoint of every ROI in two channels:")
	_, _ = fmt.Fprintf(out, "  %s -s resultsGREEN.csv -l resultsYELLOW.csv -o lags.csv\n", name)
	_, _ = fmt.Fprintln(out, "\nSemicolon-delimited input, mismatched ROIs skipped, JSON report:")
	_, _ = fmt.Fprintf(out, "  %s -d ';' --on-mismatch skip --format json resultsGREEN.csv resultsYELLOW.csv\n", name)
	_, _ = fmt.Fprintln(out, "\nKeep re-running while the exporter rewrites the inputs:")
	_, _ = fmt.Fprintf(out, "  %s --watch --plot lags.png --db runs.db resultsGREEN.csv resultsYELLOW.csv lags.csv\n", name)
	_, _ = fmt.Fprintln(out, "\nTip: run with --help for all flags.")
}
