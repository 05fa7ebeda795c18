// Package hits finds, per ROI, the first timepoint at which a channel's
// signal becomes nonzero.
package hits

import "twohit/internal/table"

// Columns names the fields the detector reads.
type Columns struct {
	ROI    string
	Signal string
}

// DefaultColumns matches the ImageJ measurement export.
var DefaultColumns = Columns{ROI: "X", Signal: "Mean"}

// NoROI is the initial "last hit" value. ROI identifiers are expected to be
// nonzero; a ROI whose identifier equals NoROI can never produce a hit.
const NoROI = 0.0

// Detect scans t, which must already be sorted by (ROI, time), and returns
// the hit table: the rows where the ROI differs from the last emitted hit's
// ROI and the signal is nonzero.
//
// A zero-signal row does not mark its ROI as seen, so on sorted input the hit
// is the ROI's earliest nonzero row. ROIs that never leave zero get no row.
func Detect(t *table.Table, cols Columns) (*table.Table, error) {
	idx, err := t.Indices(cols.ROI, cols.Signal)
	if err != nil {
		return nil, err
	}
	x, sig := idx[0], idx[1]

	out := table.New(t.Name, t.Header)
	last := NoROI
	for _, row := range t.Rows {
		var hit bool
		last, hit = step(last, row[x], row[sig])
		if hit {
			out.Rows = append(out.Rows, append([]float64(nil), row...))
		}
	}
	return out, nil
}

// step is the fold: given the last emitted ROI and the current row's ROI and
// signal, it returns the new accumulator and whether the row is a hit.
func step(last, roi, signal float64) (float64, bool) {
	if roi != last && signal != 0 {
		return roi, true
	}
	return last, false
}
