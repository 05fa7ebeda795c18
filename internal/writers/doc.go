// Package writers serializes a finished lag table.
//
// Design:
//   • Writers own all presentation knowledge (delimited text, JSON, JSONL).
//   • The pipeline stays computation-only and never writes files.
//   • JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
