package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger monta o logger a partir de LOG_FORMAT ("text" | "json") e
// LOG_LEVEL ("debug" | "info" | "warn" | "error").
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// LoggerFromEnv lê LOG_FORMAT/LOG_LEVEL.
func LoggerFromEnv(w io.Writer) *slog.Logger {
	return NewLogger(w, GetenvDefault("LOG_FORMAT", "text"), GetenvDefault("LOG_LEVEL", "info"))
}

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
