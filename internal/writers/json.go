package writers

import (
	"io"

	"twohit/internal/jsonutil"
	"twohit/pkg/api"
)

func init() {
	Register("json", writeJSON)
	Register("jsonl", writeJSONL)
}

// writeJSON emits one indented LagReportV1 document.
func writeJSON(w io.Writer, r Report) error {
	doc, err := ToAPIReport(r)
	if err != nil {
		return err
	}
	return jsonutil.EncodePretty(w, doc)
}

// writeJSONL emits one LagV1 object per line and nothing else.
func writeJSONL(w io.Writer, r Report) error {
	rows, err := ToAPILags(r.Lags)
	if err != nil {
		return err
	}
	return jsonutil.EncodeLines(w, rows, func(l api.LagV1) api.LagV1 { return l })
}
