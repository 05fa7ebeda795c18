package writers

import (
	"io"

	"twohit/internal/table"
)

func init() { Register("csv", writeDelimited) }

// writeDelimited emits the lag table exactly as the table writer does,
// honouring the run's delimiter.
func writeDelimited(w io.Writer, r Report) error {
	delim := r.Delimiter
	if delim == 0 {
		delim = table.DefaultDelimiter
	}
	return table.Write(w, r.Lags, delim)
}
