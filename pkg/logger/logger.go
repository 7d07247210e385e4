package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu          sync.RWMutex
	base        *slog.Logger
	debugOutput bool
)

func init() {
	Setup(os.Stdout, os.Getenv("ENVIRONMENT") == "development")
}

// Setup replaces the process logger with a JSON logger writing to w.
func Setup(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	mu.Lock()
	base = slog.New(handler)
	debugOutput = debug
	mu.Unlock()

	slog.SetDefault(base)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Info(format string, v ...interface{}) {
	get().Info(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	get().Error(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	get().Warn(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	mu.RLock()
	enabled := debugOutput
	mu.RUnlock()
	if enabled {
		get().Debug(fmt.Sprintf(format, v...))
	}
}

// With returns a structured logger carrying the given attributes,
// e.g. logger.With("listing_id", id).Info("expired").
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
