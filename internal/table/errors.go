package table

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these; errors.As for the details.
var (
	ErrFormat = errors.New("format error")
	ErrSchema = errors.New("schema error")
	ErrIO     = errors.New("io error")
)

// FormatError reports a field or record that cannot be parsed.
type FormatError struct {
	Path   string
	Line   int
	Column string // empty when the whole record is at fault
	Value  string
	Msg    string
}

func (e *FormatError) Error() string {
	loc := fmt.Sprintf("%s:%d", e.Path, e.Line)
	if e.Column != "" {
		return fmt.Sprintf("format error: %s: column %q: %q %s", loc, e.Column, e.Value, e.Msg)
	}
	return fmt.Sprintf("format error: %s: %s", loc, e.Msg)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// SchemaError reports a required column missing from (or duplicated in) a header.
type SchemaError struct {
	Table  string
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "missing column"
	}
	return fmt.Sprintf("schema error: table %q: %s %q", e.Table, msg, e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// IOError wraps a filesystem failure with the operation and path.
type IOError struct {
	Op   string // open | read | write
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
