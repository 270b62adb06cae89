// Package logging builds the slog logger shared by the appcompat binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultLevel keeps the launcher quiet unless something goes wrong.
const DefaultLevel = slog.LevelWarn

// New creates a logger writing to w (stderr when nil).
// level: debug|info|warn|error (default: warn)
// format: text|json (default: text)
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level; unknown names give
// DefaultLevel.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return DefaultLevel
	}
}
