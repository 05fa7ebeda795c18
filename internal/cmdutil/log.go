// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LogOptions select the handler and level for NewLogger.
type LogOptions struct {
	Format  string // text | json
	Quiet   bool   // errors only
	Verbose bool   // debug
}

// NewLogger builds the process logger. Quiet wins over Verbose.
func NewLogger(dst io.Writer, o LogOptions) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch {
	case o.Quiet:
		level = slog.LevelError
	case o.Verbose:
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(o.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(dst, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(dst, hopts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (want text | json)", o.Format)
}

// Warnf logs a formatted warning. Quiet loggers drop it by level.
func Warnf(logger *slog.Logger, format string, a ...any) {
	logger.Warn(fmt.Sprintf(format, a...))
}
