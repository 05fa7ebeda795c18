// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"twohit/internal/table"
)

// WriteFunc serializes a report to w.
type WriteFunc func(w io.Writer, r Report) error

// Writers maps an output format to its handler. Register in init() blocks
// from the per-format files.
var Writers = map[string]WriteFunc{}

// Register adds or replaces a format handler (last wins).
func Register(format string, fn WriteFunc) { Writers[format] = fn }

// Formats lists the registered formats in sorted order.
func Formats() []string {
	out := make([]string, 0, len(Writers))
	for f := range Writers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the handler for format.
func Lookup(format string) (WriteFunc, error) {
	fn, ok := Writers[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats())
	}
	return fn, nil
}

// Write dispatches to the handler registered for format.
func Write(format string, w io.Writer, r Report) error {
	fn, err := Lookup(format)
	if err != nil {
		return err
	}
	return fn(w, r)
}

// WriteFile atomically replaces path with the report in format. Failures
// after the format check are *table.IOError.
func WriteFile(format, path string, r Report) error {
	fn, err := Lookup(format)
	if err != nil {
		return err
	}
	return table.ReplaceFile(path, func(w io.Writer) error { return fn(w, r) })
}
