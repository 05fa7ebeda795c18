package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"twohit/internal/chart"
	"twohit/internal/cli"
	"twohit/internal/cmdutil"
	"twohit/internal/lagstats"
	"twohit/internal/metrics"
	"twohit/internal/pairing"
	"twohit/internal/pipeline"
	"twohit/internal/store"
	"twohit/internal/table"
	"twohit/internal/writers"
)

// runner executes one pipeline pass and every output it was asked for.
// In watch mode the same runner is reused, so metrics accumulate.
type runner struct {
	opts    cli.Options
	cfg     pipeline.Config
	logger  *slog.Logger
	stdout  *bufio.Writer
	stderr  io.Writer
	metrics *metrics.Metrics
}

// once runs the pipeline and writes its outputs, returning the exit code.
func (r *runner) once(ctx context.Context) int {
	if ctx.Err() != nil {
		return ExitCancelled
	}
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With("run_id", runID)

	res, err := pipeline.Run(r.cfg)
	if err != nil {
		r.metrics.ObserveError(time.Since(start))
		r.writeMetrics(log)
		_, _ = fmt.Fprintln(r.stderr, err)
		return exitCode(err)
	}

	if r.opts.Verbose {
		r.dump(res)
	}
	for _, e := range res.Skipped {
		cmdutil.Warnf(log, "skipped: %v", e)
	}

	summary, err := lagstats.Summarize(res.Lags)
	if err != nil {
		_, _ = fmt.Fprintln(r.stderr, err)
		return ExitRuntime
	}
	report := writers.Report{
		Lags:         res.Lags,
		Delimiter:    r.cfg.Delimiter,
		SignalLabel:  r.cfg.Signal.Label,
		OverlapLabel: r.cfg.Overlap.Label,
		Summary:      summary,
		Skipped:      res.Skipped,
		RunID:        runID,
	}

	if err := r.writeOutputs(ctx, report, res); err != nil {
		r.metrics.ObserveError(time.Since(start))
		r.writeMetrics(log)
		_, _ = fmt.Fprintln(r.stderr, err)
		return exitCode(err)
	}

	r.metrics.Observe(res, r.cfg.Signal.Label, r.cfg.Overlap.Label, time.Since(start))
	r.writeMetrics(log)

	log.Info("run complete",
		"rois", res.Lags.Len(),
		"skipped", len(res.Skipped),
		"mean_dt", summary.Mean,
		"median_dt", summary.Median,
		"output", r.opts.Output,
		"took", time.Since(start).Round(time.Microsecond),
	)
	if res.Lags.Len() == 0 {
		cmdutil.Warnf(log, "no ROI has a hit in both %s and %s", r.cfg.Signal.Label, r.cfg.Overlap.Label)
	}
	return ExitOK
}

// writeOutputs writes the lag table first, then the optional side products.
func (r *runner) writeOutputs(ctx context.Context, report writers.Report, res *pipeline.Result) error {
	if r.opts.Output == table.Stdin {
		if err := writers.Write(r.opts.Format, r.stdout, report); err != nil {
			return &table.IOError{Op: "write", Path: "stdout", Err: err}
		}
		if err := writers.Flush(r.stdout); err != nil {
			return &table.IOError{Op: "write", Path: "stdout", Err: err}
		}
	} else if err := writers.WriteFile(r.opts.Format, r.opts.Output, report); err != nil {
		return err
	}

	out := r.opts.Outputs
	title := fmt.Sprintf("%s → %s lag", r.cfg.Signal.Label, r.cfg.Overlap.Label)
	if out.Plot != "" {
		if err := chart.WriteHistogram(report.Lags, out.Plot, title); errors.Is(err, chart.ErrNoData) {
			r.logger.Warn("histogram skipped: no paired ROIs", "path", out.Plot)
		} else if err != nil {
			return &table.IOError{Op: "write", Path: out.Plot, Err: err}
		}
	}
	if out.Chart != "" {
		if err := chart.WriteScatter(report.Lags, out.Chart, title); errors.Is(err, chart.ErrNoData) {
			r.logger.Warn("scatter chart skipped: no paired ROIs", "path", out.Chart)
		} else if err != nil {
			return &table.IOError{Op: "write", Path: out.Chart, Err: err}
		}
	}
	if out.DB != "" {
		if err := r.archive(ctx, report, res); err != nil {
			return &table.IOError{Op: "write", Path: out.DB, Err: err}
		}
	}
	return nil
}

// archive records the run and its lag rows in the SQLite store.
func (r *runner) archive(ctx context.Context, report writers.Report, res *pipeline.Result) error {
	db, err := store.Open(r.opts.Outputs.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &store.Run{
		ID:           report.RunID,
		SignalPath:   r.cfg.Signal.Path,
		OverlapPath:  r.cfg.Overlap.Path,
		SignalLabel:  r.cfg.Signal.Label,
		OverlapLabel: r.cfg.Overlap.Label,
		Policy:       r.cfg.Policy.String(),
		Paired:       res.Lags.Len(),
		Skipped:      len(res.Skipped),
	}
	if report.Summary.N > 0 {
		run.MeanDt = sql.NullFloat64{Float64: report.Summary.Mean, Valid: true}
		run.MedianDt = sql.NullFloat64{Float64: report.Summary.Median, Valid: true}
	}
	if err := db.RecordRun(ctx, run, report.Lags); err != nil {
		return err
	}
	r.logger.Debug("run archived", "run_id", run.ID, "path", r.opts.Outputs.DB)
	return nil
}

func (r *runner) writeMetrics(log *slog.Logger) {
	path := r.opts.Outputs.MetricsFile
	if path == "" {
		return
	}
	if err := r.metrics.WriteFile(path); err != nil {
		log.Error("metrics file not written", "path", path, "err", err)
	}
}

// dump writes every intermediate table to stderr in the run's delimiter.
func (r *runner) dump(res *pipeline.Result) {
	sections := []struct {
		title string
		t     *table.Table
	}{
		{r.cfg.Signal.Label + " sorted", res.SignalSorted},
		{r.cfg.Overlap.Label + " sorted", res.OverlapSorted},
		{r.cfg.Signal.Label + " hits", res.SignalHits},
		{r.cfg.Overlap.Label + " hits", res.OverlapHits},
		{"merged", res.Merged},
		{"lags", res.Lags},
	}
	for _, s := range sections {
		_, _ = fmt.Fprintf(r.stderr, "# %s (%d rows)\n", s.title, s.t.Len())
		if err := table.Write(r.stderr, s.t, r.cfg.Delimiter); err != nil {
			r.logger.Error("verbose dump failed", "table", s.title, "err", err)
			return
		}
	}
}

// exitCode maps an error kind to the process exit code.
func exitCode(err error) int {
	var ioe *table.IOError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, table.ErrFormat), errors.Is(err, table.ErrSchema):
		return ExitUsage
	case errors.As(err, &ioe):
		if ioe.Op == "write" {
			return ExitRuntime
		}
		return ExitUsage
	case errors.Is(err, pairing.ErrAlignment):
		return ExitRuntime
	}
	return ExitRuntime
}
