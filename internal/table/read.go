package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter matches the image-analysis export format.
const DefaultDelimiter = ','

// ValidateDelimiter reports whether r can separate fields.
func ValidateDelimiter(r rune) error {
	if r == 0 || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError || !utf8.ValidRune(r) {
		return fmt.Errorf("invalid delimiter %q", r)
	}
	return nil
}

// ParseDelimiter turns a flag value into a delimiter rune. Exactly one
// character is accepted; "\t" and "tab" both mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if err := ValidateDelimiter(r); err != nil {
		return 0, err
	}
	return r, nil
}

// ReadFile parses the delimited file at path. The header's first column is
// renamed to channel (when channel is non-empty).
func ReadFile(path, channel string, delim rune) (*Table, error) {
	rc, err := openInput(path)
	var fe *FormatError
	if errors.As(err, &fe) {
		return nil, fe
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = rc.Close() }()
	return Read(rc, path, channel, delim)
}

// Read parses delimited text from r; name is used as the path in errors.
func Read(r io.Reader, name, channel string, delim rune) (*Table, error) {
	if err := ValidateDelimiter(delim); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Path: name, Line: 1, Msg: "empty file: no header row"}
	}
	if err != nil {
		return nil, readError(name, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if channel != "" {
		header[0] = channel
	}
	tableName := header[0]
	if err := checkHeader(tableName, header); err != nil {
		return nil, err
	}

	t := New(tableName, header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(name, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(header) {
			return nil, &FormatError{
				Path: name,
				Line: line,
				Msg:  fmt.Sprintf("record has %d fields, header has %d", len(rec), len(header)),
			}
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, perr := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if perr != nil {
				return nil, &FormatError{Path: name, Line: line, Column: header[i], Value: field, Msg: "is not a number"}
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// readError sorts csv syntax problems from genuine read failures.
func readError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Path: name, Line: pe.Line, Msg: pe.Err.Error()}
	}
	return &IOError{Op: "read", Path: name, Err: err}
}
