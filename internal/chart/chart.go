// Package chart renders lag tables for quick visual inspection: a Δt
// histogram (PNG, SVG or PDF via gonum/plot) and an interactive t1/t2
// scatter page (HTML via go-echarts).
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"twohit/internal/pairing"
	"twohit/internal/table"
)

// ErrNoData is returned when a lag table has no rows to draw.
var ErrNoData = errors.New("chart: lag table is empty")

const maxBins = 50

// histogram formats gonum/plot can save to, keyed by file extension.
var histogramFormats = map[string]bool{".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true}

// WriteHistogram draws the Δt distribution of lags to path. The image format
// follows the file extension.
func WriteHistogram(lags *table.Table, path, title string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !histogramFormats[ext] {
		return fmt.Errorf("chart: unsupported histogram format %q (want .png, .svg, .pdf or .jpg)", ext)
	}
	dt, err := lags.Column(pairing.ColDelta)
	if err != nil {
		return err
	}
	if len(dt) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Δt (slices)"
	p.Y.Label.Text = "ROIs"

	h, err := plotter.NewHist(plotter.Values(dt), bins(dt))
	if err != nil {
		return fmt.Errorf("chart: histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

// bins gives integer lags one bin each, capped at maxBins.
func bins(xs []float64) int {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	n := int(hi-lo) + 1
	if n < 1 {
		n = 1
	}
	if n > maxBins {
		n = maxBins
	}
	return n
}

// RenderScatter writes an HTML page plotting t2 against t1, one point per ROI.
func RenderScatter(w io.Writer, lags *table.Table, title string) error {
	idx, err := lags.Indices(pairing.ColID, pairing.ColT1, pairing.ColT2, pairing.ColDelta)
	if err != nil {
		return err
	}
	if lags.Len() == 0 {
		return ErrNoData
	}

	data := make([]opts.ScatterData, 0, lags.Len())
	for _, row := range lags.Rows {
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("ROI #%s (Δt=%s)", table.FormatValue(row[idx[0]]), table.FormatValue(row[idx[3]])),
			Value: []interface{}{row[idx[1]], row[idx[2]]},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("paired ROIs=%d", lags.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t1 (signal hit)", Type: "value", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "t2 (overlap hit)", Type: "value", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("ROI", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter.Render(w)
}

// WriteScatter renders the scatter page to path.
func WriteScatter(lags *table.Table, path, title string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("chart: %w", cerr)
		}
	}()
	return RenderScatter(f, lags, title)
}
