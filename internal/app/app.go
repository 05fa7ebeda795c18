// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"twohit/internal/cli"
	"twohit/internal/cmdutil"
	"twohit/internal/metrics"
	"twohit/internal/version"
	"twohit/internal/watch"
	"twohit/internal/writers"
)

const name = "twohit"

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2 // bad flags, config, or unreadable / malformed input
	ExitRuntime   = 3 // write failure or ROI misalignment
	ExitCancelled = 130
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	flush := func(code int) int {
		if err := writers.Flush(outw); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
		return code
	}

	fs := cli.NewFlagSet(name)
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		cli.PrintUsage(outw, fs, name)
		return flush(ExitOK)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		var ue *cli.UsageError
		switch {
		case errors.Is(err, flag.ErrHelp):
			cli.PrintUsage(outw, fs, name)
			return flush(ExitOK)
		case errors.Is(err, cli.ErrPrintedAndExitOK):
			cli.PrintExamples(outw, name)
			return flush(ExitOK)
		case errors.As(err, &ue):
			_, _ = fmt.Fprintln(stderr, err)
			cli.PrintUsage(outw, fs, name)
			return flush(ExitUsage)
		default:
			_, _ = fmt.Fprintln(stderr, err)
			return ExitUsage
		}
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return flush(ExitOK)
	}

	logger, err := cmdutil.NewLogger(stderr, cmdutil.LogOptions{
		Format:  opts.LogFormat,
		Quiet:   opts.Quiet,
		Verbose: opts.Verbose,
	})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	pc, err := opts.PipelineConfig()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	r := &runner{
		opts:    opts,
		cfg:     pc,
		logger:  logger,
		stdout:  outw,
		stderr:  stderr,
		metrics: metrics.New(),
	}

	if !opts.Watch {
		return r.once(parent)
	}
	return runWatch(parent, r, logger)
}

// runWatch runs once, then again after every input change until cancelled.
// Failed runs are reported and the watch continues.
func runWatch(ctx context.Context, r *runner, logger *slog.Logger) int {
	r.once(ctx)
	paths := []string{r.opts.Signal, r.opts.Overlap}
	err := watch.Run(ctx, paths, r.opts.Debounce, logger, func(ctx context.Context) {
		logger.Info("inputs changed, re-running")
		r.once(ctx)
	})
	if err != nil {
		_, _ = fmt.Fprintln(r.stderr, err)
		return ExitRuntime
	}
	if ctx.Err() != nil {
		return ExitCancelled
	}
	return ExitOK
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
