// Package logger sets up the process-wide slog logger from LOG_LEVEL,
// LOG_FORMAT and LOG_FILE.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup builds the default logger writing to stderr.
func Setup() *slog.Logger {
	return SetupTo(os.Stderr)
}

// SetupFile points the default logger at LOG_FILE, or at fallback when the
// variable is empty. The terminal UI uses this so log lines never land on the
// screen it draws. The returned closer releases the file.
func SetupFile(fallback string) (*slog.Logger, io.Closer, error) {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		path = fallback
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Setup(), io.NopCloser(nil), err
	}
	return SetupTo(f), f, nil
}

// SetupTo builds the default logger on w.
func SetupTo(w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, setting it up on first use.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
