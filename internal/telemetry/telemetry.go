// Package telemetry wraps a process-wide structured logger so it can be
// injected into the CLI instead of reached for as a global, replacing the
// original resolver's ad hoc timing prints with level-aware structured log
// lines. The resolving facade takes no logger.
package telemetry

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is a thin facade over charmbracelet/log. New attaches no run
// identifier; With adds one (or any other key/value pairs) to a child.
type Logger struct {
	inner *log.Logger
}

// New builds a Logger writing to stderr at the given level ("debug",
// "info", "warn", "error").
func New(level string) *Logger {
	inner := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	inner.SetLevel(parseLevel(level))
	return &Logger{inner: inner}
}

func parseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// With returns a child Logger carrying the given key/value pairs on every
// subsequent line, mirroring the teacher's dependency-injected (not
// global) logger pattern.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{inner: l.inner.With(keyvals...)}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.inner.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.inner.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.inner.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.inner.Error(msg, keyvals...) }

// NumericWarning logs a non-fatal regret-ceiling-hit event, the one
// taxonomy case the error design calls out as log-not-bubble.
func (l *Logger) NumericWarning(msg string, keyvals ...interface{}) {
	l.inner.Warn(msg, keyvals...)
}

// ResolveTiming logs how long one resolve call took, replacing the
// original's verbose-flag print statements.
func (l *Logger) ResolveTiming(stage string, d time.Duration) {
	l.inner.Info("resolve stage timing", "stage", stage, "duration", d)
}
