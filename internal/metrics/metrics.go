// Package metrics exposes pipeline run statistics as Prometheus metrics,
// written in text exposition format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"twohit/internal/pairing"
	"twohit/internal/pipeline"
)

// Metrics holds the Prometheus collectors for pipeline runs.
type Metrics struct {
	reg *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	RowsRead      *prometheus.GaugeVec
	Hits          *prometheus.GaugeVec
	PairedROIs    prometheus.Gauge
	SkippedROIs   prometheus.Gauge
	LagSlices     prometheus.Histogram
	LastRunSecond prometheus.Gauge
}

// New registers run metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twohit_runs_total",
			Help: "Pipeline runs by final status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twohit_run_duration_seconds",
			Help:    "Wall time of a pipeline run in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms .. ~16s
		}),
		RowsRead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twohit_rows_read",
			Help: "Rows read from each channel table in the last run.",
		}, []string{"channel"}),
		Hits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twohit_hits",
			Help: "Hit events detected per channel in the last run.",
		}, []string{"channel"}),
		PairedROIs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twohit_paired_rois",
			Help: "ROIs with a hit in both channels in the last run.",
		}),
		SkippedROIs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twohit_skipped_rois",
			Help: "Hit rows dropped by the skip mismatch policy in the last run.",
		}),
		LagSlices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twohit_lag_slices",
			Help:    "Distribution of Δt between signal and overlap hits.",
			Buckets: prometheus.LinearBuckets(0, 1, 16), // 0 .. 15
		}),
		LastRunSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twohit_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
	reg.MustRegister(
		m.RunsTotal, m.RunDuration, m.RowsRead, m.Hits,
		m.PairedROIs, m.SkippedROIs, m.LagSlices, m.LastRunSecond,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Observe records a successful run.
func (m *Metrics) Observe(res *pipeline.Result, signalLabel, overlapLabel string, took time.Duration) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.RunDuration.Observe(took.Seconds())
	m.LastRunSecond.SetToCurrentTime()

	m.RowsRead.WithLabelValues(signalLabel).Set(float64(res.SignalSorted.Len()))
	m.RowsRead.WithLabelValues(overlapLabel).Set(float64(res.OverlapSorted.Len()))
	m.Hits.WithLabelValues(signalLabel).Set(float64(res.SignalHits.Len()))
	m.Hits.WithLabelValues(overlapLabel).Set(float64(res.OverlapHits.Len()))
	m.PairedROIs.Set(float64(res.Lags.Len()))
	m.SkippedROIs.Set(float64(len(res.Skipped)))

	if dt, err := res.Lags.Column(pairing.ColDelta); err == nil {
		for _, v := range dt {
			m.LagSlices.Observe(v)
		}
	}
}

// ObserveError records a failed run.
func (m *Metrics) ObserveError(took time.Duration) {
	m.RunsTotal.WithLabelValues("error").Inc()
	m.RunDuration.Observe(took.Seconds())
	m.LastRunSecond.SetToCurrentTime()
}

// WriteFile atomically writes the current metric values to path.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
