// internal/jsonutil/json.go
package jsonutil

import (
	"bufio"
	"encoding/json"
	"io"
)

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EncodeLines writes each element of items as one compact JSON line.
// conv maps an element to its wire form.
func EncodeLines[T, W any](w io.Writer, items []T, conv func(T) W) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	enc := json.NewEncoder(bw)
	for _, it := range items {
		if err := enc.Encode(conv(it)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
