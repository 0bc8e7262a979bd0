// Package logger provides logging utilities for the feed sync worker.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
}

// New creates a logger writing to w. Format is "text", "json" or "auto";
// auto picks text for terminals and json otherwise.
func New(w io.Writer, level, format string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	if resolveFormat(w, format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, "error", "text")
}

// ParseLevel maps a level name onto slog; unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveFormat(w io.Writer, format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "json"
	case "text":
		return "text"
	}

	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "text"
	}

	return "json"
}

// NewRunID returns a fresh identifier for correlating one run's log lines.
func NewRunID() string {
	return uuid.NewString()
}

// WithRun returns a child logger tagged with the run identifier.
func (l *Logger) WithRun(runID string) *Logger {
	return l.With("run_id", runID)
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) {
	l.internal.Info(msg, args...)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.internal.Error(msg, args...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debug(msg, args...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warn(msg, args...)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}
