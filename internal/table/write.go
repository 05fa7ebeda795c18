package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// FormatValue renders v in the shortest form that parses back to the same
// float64 ("3", "1.5", "-0.25").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Write serializes the header and every row, one delimited line each.
func Write(w io.Writer, t *Table, delim rune) error {
	if err := ValidateDelimiter(delim); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	rec := make([]string, len(t.Header))
	for _, row := range t.Rows {
		if cap(rec) < len(row) {
			rec = make([]string, len(row))
		}
		rec = rec[:len(row)]
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces path with the serialized table. "-" writes stdout.
func WriteFile(t *Table, path string, delim rune) error {
	if err := ValidateDelimiter(delim); err != nil {
		return err
	}
	return ReplaceFile(path, func(w io.Writer) error { return Write(w, t, delim) })
}

// ReplaceFile writes path through fn. The data goes to a temporary file in
// the same directory first, so a failed write leaves any previous file
// untouched. "-" hands fn os.Stdout instead. Every failure is an *IOError.
func ReplaceFile(path string, fn func(io.Writer) error) (err error) {
	if path == Stdin {
		if err := fn(os.Stdout); err != nil {
			return &IOError{Op: "write", Path: "stdout", Err: err}
		}
		return nil
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Chmod(0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
