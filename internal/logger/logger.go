// Package logger provides structured logging using Go 1.21's log/slog.
// Runtime hot paths keep the stdlib bracketed-prefix style; slog is for
// machine-readable records such as the alarm audit trail.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init creates a structured JSON logger for the given service. The level
// comes from the LOG_LEVEL env var (debug, info, warn, error; default info).
func Init(service string) *slog.Logger {
	return New(service, os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// New builds a JSON logger writing to w with the service name embedded.
func New(service string, w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With(
		slog.String("service", service),
	)
}

// ParseLevel maps a level name to a slog.Level. Unknown or empty names
// mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
