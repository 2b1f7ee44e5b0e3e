// Package logging configures structured logging for WhiteDwarf using
// log/slog. Verbose mode maps to the debug level; everything the tool
// prints about its progress goes through the default slog logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger with a text handler at the given
// level. Level values: "debug", "info", "warn", "error" (default: "info").
func Setup(level string) {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
