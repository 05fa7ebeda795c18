// Package table holds the row table shared by every pipeline stage: a header
// naming the columns plus numeric rows of the same width.
//
// Reading, writing and ordering live here so the hit detector and the
// pairing engine only ever see parsed, validated tables. The package never
// logs; every failure comes back as a *FormatError, *SchemaError or *IOError
// that matches ErrFormat, ErrSchema or ErrIO with errors.Is.
package table
