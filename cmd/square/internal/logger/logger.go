package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger = newLogger(os.Stderr, false)
	once          sync.Once
)

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		// Source locations only pay off when chasing a single connection.
		AddSource: debug,
	}))
}

// Init configures the process-wide logger once. Request and reply events are
// logged at debug level, so debug=true is the "trace every line" switch.
func Init(debug bool) {
	once.Do(func() {
		SetOutput(os.Stderr, debug)
		slog.SetDefault(L())
	})
}

// SetOutput replaces the logger destination. Tests use it to capture output.
func SetOutput(w io.Writer, debug bool) {
	l := newLogger(w, debug)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// L returns the current logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }

func Info(msg string, args ...any) { L().Info(msg, args...) }

func Warn(msg string, args ...any) { L().Warn(msg, args...) }

func Error(msg string, args ...any) { L().Error(msg, args...) }

// Fatal logs at Error level and then exits.
func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger carrying the given attributes, e.g. a connection id.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
