package writers

import (
	"math"

	"twohit/internal/lagstats"
	"twohit/internal/pairing"
	"twohit/internal/table"
	"twohit/pkg/api"
)

// Report is everything a format may render about one run.
type Report struct {
	Lags         *table.Table // ID#, t1, t2, Δt
	Delimiter    rune
	SignalLabel  string
	OverlapLabel string
	Summary      lagstats.Summary
	Skipped      []*pairing.AlignmentError
	RunID        string
}

// ToAPILags converts the lag rows to their v1 wire form.
func ToAPILags(lags *table.Table) ([]api.LagV1, error) {
	idx, err := lags.Indices(pairing.ColID, pairing.ColT1, pairing.ColT2, pairing.ColDelta)
	if err != nil {
		return nil, err
	}
	out := make([]api.LagV1, 0, lags.Len())
	for _, row := range lags.Rows {
		out = append(out, api.LagV1{
			ID: int(row[idx[0]]),
			T1: row[idx[1]],
			T2: row[idx[2]],
			Dt: row[idx[3]],
		})
	}
	return out, nil
}

// ToAPIReport converts a Report to the v1 document.
func ToAPIReport(r Report) (api.LagReportV1, error) {
	rows, err := ToAPILags(r.Lags)
	if err != nil {
		return api.LagReportV1{}, err
	}
	s := r.Summary
	doc := api.LagReportV1{
		Header:       append([]string(nil), r.Lags.Header...),
		SignalLabel:  r.SignalLabel,
		OverlapLabel: r.OverlapLabel,
		Rows:         rows,
		Summary: api.SummaryV1{
			N: s.N, Mean: s.Mean, StdDev: s.StdDev,
			Min: s.Min, Q1: s.Q1, Median: s.Median, Q3: s.Q3, Max: s.Max,
		},
		RunID: r.RunID,
	}
	for _, e := range r.Skipped {
		doc.Skipped = append(doc.Skipped, ToAPISkipped(e))
	}
	return doc, nil
}

// ToAPISkipped converts one alignment mismatch.
func ToAPISkipped(e *pairing.AlignmentError) api.SkippedV1 {
	return api.SkippedV1{
		Row:        e.Index,
		LeftTable:  e.LeftTable,
		LeftROI:    roiPtr(e.Left),
		RightTable: e.RightTable,
		RightROI:   roiPtr(e.Right),
		Reason:     e.Reason,
	}
}

func roiPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
