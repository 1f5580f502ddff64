package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// Init installs the global logger. Development gets debug-level text, test
// only warnings, and everything else info-level JSON. LOG_LEVEL overrides the
// level.
func Init(env string) {
	opts := &slog.HandlerOptions{Level: levelFor(env), AddSource: env != "test"}

	var handler slog.Handler
	switch env {
	case "development", "test":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	l := slog.New(handler).With("service", "grapher")
	current.Store(l)
	slog.SetDefault(l)
}

func levelFor(env string) slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	switch env {
	case "development":
		return slog.LevelDebug
	case "test":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns the global logger, installing a development one first if
// Init was never called.
func GetLogger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init("development")
	return current.Load()
}

// Set installs l as the global logger and returns the previous one.
func Set(l *slog.Logger) *slog.Logger {
	return current.Swap(l)
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }

func Info(msg string, args ...any) { GetLogger().Info(msg, args...) }

func Warn(msg string, args ...any) { GetLogger().Warn(msg, args...) }

func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// WorkerLog records one background pass: failures at error level, successes
// at debug.
func WorkerLog(worker, operation string, err error, args ...any) {
	attrs := append([]any{"worker", worker, "operation", operation}, args...)
	if err != nil {
		GetLogger().Error("worker operation failed", append(attrs, "error", err.Error())...)
		return
	}
	GetLogger().Debug("worker operation completed", attrs...)
}
