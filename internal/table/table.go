package table

import (
	"fmt"
	"math"
)

// Table is a header plus numeric rows. Rows never share backing arrays with
// another Table returned by this package.
type Table struct {
	Name   string // channel label or stage name, used in error messages
	Header []string
	Rows   [][]float64

	lines []int // source line of each row; set by Read only
}

// New returns an empty table with a copy of header.
func New(name string, header []string) *Table {
	return &Table{Name: name, Header: append([]string(nil), header...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index resolves a column name to its position.
func (t *Table) Index(col string) (int, error) {
	for i, h := range t.Header {
		if h == col {
			return i, nil
		}
	}
	return -1, &SchemaError{Table: t.Name, Column: col}
}

// Indices resolves several columns at once and fails on the first missing one.
func (t *Table) Indices(cols ...string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		idx, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Column copies out every value of the named column.
func (t *Table) Column(col string) ([]float64, error) {
	idx, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// RequireFinite rejects NaN and ±Inf in the named columns. ImageJ writes NaN
// for measurements it could not take; such a row cannot key a ROI, place a
// timepoint or count as signal. path is used in the *FormatError.
func (t *Table) RequireFinite(path string, cols ...string) error {
	idx, err := t.Indices(cols...)
	if err != nil {
		return err
	}
	for r, row := range t.Rows {
		for k, c := range idx {
			if v := row[c]; math.IsNaN(v) || math.IsInf(v, 0) {
				return &FormatError{Path: path, Line: t.line(r), Column: cols[k], Value: FormatValue(v), Msg: "is not a finite number"}
			}
		}
	}
	return nil
}

// line is the source line of row r, or its position counted from the header
// when the table was not read from text.
func (t *Table) line(r int) int {
	if r < len(t.lines) {
		return t.lines[r]
	}
	return r + 2
}

// Append adds a copy of row after checking its width against the header.
func (t *Table) Append(row []float64) error {
	if len(row) != len(t.Header) {
		return fmt.Errorf("table %q: row has %d fields, header has %d", t.Name, len(row), len(t.Header))
	}
	t.Rows = append(t.Rows, append([]float64(nil), row...))
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := New(t.Name, t.Header)
	c.Rows = make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append([]float64(nil), r...)
	}
	return c
}

// checkHeader rejects duplicate column names.
func checkHeader(name string, header []string) error {
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, ok := seen[h]; ok {
			return &SchemaError{Table: name, Column: h, Msg: "duplicate column"}
		}
		seen[h] = struct{}{}
	}
	return nil
}
