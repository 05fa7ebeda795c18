// Package pipeline sequences the per-channel stages (read, order, detect
// hits) for the signal and overlap channels, pairs the two hit tables and
// orders the merged lag table.
//
// It is the only package that knows about both channels. It reads files but
// never writes or logs; the caller owns output and presentation.
package pipeline
