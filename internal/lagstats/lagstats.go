// Package lagstats summarises the Δt column of a lag table.
package lagstats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"twohit/internal/pairing"
	"twohit/internal/table"
)

// Summary describes the lag distribution. All fields are zero when N == 0,
// and StdDev is zero when N < 2, so a Summary always encodes as JSON.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Summarize reads the Δt column of a merged lag table.
func Summarize(lags *table.Table) (Summary, error) {
	dt, err := lags.Column(pairing.ColDelta)
	if err != nil {
		return Summary{}, err
	}
	return Of(dt), nil
}

// Of summarises raw lag values. xs is not modified.
func Of(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	s := Summary{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
	if s.N > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}
