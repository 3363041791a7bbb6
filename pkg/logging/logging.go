package logging

import (
	"log/slog"
	"os"
)

var logger *slog.Logger

func init() {
	// Console output by default; SetJSONOutput switches to machine-readable
	// logs for CI log collectors.
	logger = slog.New(NewConsoleHandler(os.Stderr, slog.LevelInfo))
}

// SetLevel changes the logging level
func SetLevel(level slog.Level) {
	logger = slog.New(NewConsoleHandler(os.Stderr, level))
}

// SetJSONOutput switches to JSON format output
func SetJSONOutput(level slog.Level) {
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// Debug logs at DEBUG level (internal component behavior)
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at INFO level (user-facing operations)
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at WARN level (should be monitored)
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at ERROR level (failures surfaced to the pipeline)
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Fatal logs at ERROR level and exits
func Fatal(msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
