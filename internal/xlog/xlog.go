// Package xlog wraps log/slog the way the rest of this module's ancestry
// configures its loggers: one text handler per subsystem, level picked from
// config, everything tagged with the subsystem name.
package xlog

import (
	"fmt"
	"log/slog"
	"os"
)

// New builds a subsystem-tagged logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info).
func New(level string, subsystem string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("subsystem", subsystem)
}

// LibraryError reports a recoverable, caller-fault error: printed to stderr
// with the fixed prefix the library's callers are contractually allowed to
// grep for. It never touches the structured logger — this is a user-facing
// contract, not a log line.
func LibraryError(msg string, args ...any) {
	fmt.Fprintln(os.Stderr, "thread library error: "+fmt.Sprintf(msg, args...))
}

// SystemError reports a fatal, irrecoverable error to stderr using the fixed
// "system error: " prefix. Callers are expected to release resources and
// exit immediately after calling this.
func SystemError(msg string, args ...any) {
	fmt.Fprintln(os.Stderr, "system error: "+fmt.Sprintf(msg, args...))
}
