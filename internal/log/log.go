// Package log provides logging functionality for host-ops.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger defines the interface for logging operations.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps slog.Logger to implement our Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) {
	s.logger.Debug(msg, args...)
}

// Info logs an info message.
func (s *SlogAdapter) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// NewLogger creates a new text logger with the specified verbosity. This is
// the CLI flavor; interactive runs only want warnings unless --verbose.
func NewLogger(verbose bool) Logger {
	return newHandlerLogger(verbose, false, os.Stdout)
}

// NewJSONLogger creates a structured JSON logger for server mode, where the
// output is consumed by journald or a log shipper rather than a person.
func NewJSONLogger(verbose bool) Logger {
	return newHandlerLogger(verbose, true, os.Stdout)
}

func newHandlerLogger(verbose, json bool, w io.Writer) Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}

	if verbose {
		opts.Level = slog.LevelDebug
	}

	if json {
		// Server logs always carry info-level request lines
		if !verbose {
			opts.Level = slog.LevelInfo
		}
		return &SlogAdapter{logger: slog.New(slog.NewJSONHandler(w, opts))}
	}

	return &SlogAdapter{logger: slog.New(slog.NewTextHandler(w, opts))}
}

var defaultLogger Logger

// GetLogger returns a default logger instance for convenience.
// This is primarily for backward compatibility with existing code.
func GetLogger() Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(false)
	}
	return defaultLogger
}

// Init initializes the default logger with the specified verbosity.
// This function should be called once at application startup.
func Init(verbose bool) {
	defaultLogger = NewLogger(verbose)
}

// NewSlogAdapter creates a Logger from an slog.Logger.
func NewSlogAdapter(slogLogger *slog.Logger) Logger {
	return &SlogAdapter{logger: slogLogger}
}
