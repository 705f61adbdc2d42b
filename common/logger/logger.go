package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package logger provides a unified logging surface for the tutoring
// service. All packages log through the package-level helpers so the
// backend can be swapped (or silenced in tests) in one place.

var (
	mu   sync.RWMutex
	base = zap.NewNop().Sugar()
)

// Init configures the process-wide logger. Level is one of
// debug|info|warn|error (default info). Development enables console
// encoding with caller annotations.
func Init(level string, development bool) error {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	mu.Lock()
	base = l.Sugar()
	mu.Unlock()
	return nil
}

// Silence replaces the backend with a no-op logger. Used by tests.
func Silence() {
	mu.Lock()
	base = zap.NewNop().Sugar()
	mu.Unlock()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(format, args...)
}
