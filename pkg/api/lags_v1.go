// pkg/api/lags_v1.go
package api

// LagV1 is the stable JSON/JSONL schema for one paired ROI.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type LagV1 struct {
	ID int     `json:"id"`
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
	Dt float64 `json:"dt"`
}

// SummaryV1 describes the Δt distribution of a report.
type SummaryV1 struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// SkippedV1 is one ROI mismatch left out under the skip policy. A nil ROI
// means the corresponding table had no row at that position.
type SkippedV1 struct {
	Row        int      `json:"row"`
	LeftTable  string   `json:"left_table"`
	LeftROI    *float64 `json:"left_roi"`
	RightTable string   `json:"right_table"`
	RightROI   *float64 `json:"right_roi"`
	Reason     string   `json:"reason"`
}

// LagReportV1 is the document written by --format json.
type LagReportV1 struct {
	Header       []string    `json:"header"`
	SignalLabel  string      `json:"signal_label"`
	OverlapLabel string      `json:"overlap_label"`
	Rows         []LagV1     `json:"rows"`
	Summary      SummaryV1   `json:"summary"`
	Skipped      []SkippedV1 `json:"skipped,omitempty"`
	RunID        string      `json:"run_id,omitempty"`
}
