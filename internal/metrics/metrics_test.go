package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twohit/internal/pairing"
	"twohit/internal/pipeline"
	"twohit/internal/table"
)

func fakeResult(t *testing.T) *pipeline.Result {
	t.Helper()
	chanTable := func(n int) *table.Table {
		tb := table.New("c", []string{"c", "X", "Slice", "Mean"})
		for i := 0; i < n; i++ {
			require.NoError(t, tb.Append([]float64{float64(i), 1, float64(i), 1}))
		}
		return tb
	}
	lags := table.New(pairing.MergedName, pairing.MergedHeader)
	require.NoError(t, lags.Append([]float64{0, 3, 4, 1}))
	require.NoError(t, lags.Append([]float64{1, 2, 5, 3}))
	return &pipeline.Result{
		SignalSorted:  chanTable(4),
		OverlapSorted: chanTable(5),
		SignalHits:    chanTable(2),
		OverlapHits:   chanTable(3),
		Lags:          lags,
		Skipped:       []*pairing.AlignmentError{{Index: 2}},
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(fakeResult(t), "Green", "Yellow", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsRead.WithLabelValues("Green")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsRead.WithLabelValues("Yellow")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Hits.WithLabelValues("Yellow")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PairedROIs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedROIs))
	assert.Positive(t, testutil.ToFloat64(m.LastRunSecond))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LagSlices))
}

func TestObserveError(t *testing.T) {
	m := New()
	m.ObserveError(time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
	assert.Zero(t, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Observe(fakeResult(t), "Green", "Yellow", time.Millisecond)

	p := filepath.Join(t.TempDir(), "twohit.prom")
	require.NoError(t, m.WriteFile(p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "twohit_paired_rois 2")
	assert.Contains(t, text, `twohit_hits{channel="Green"} 2`)
	assert.True(t, strings.Contains(text, "twohit_lag_slices_count 2"), text)
}
