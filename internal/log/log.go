// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the logger.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// JSONFormat uses JSON output format instead of text.
	JSONFormat bool
	// Stderr is the writer for log output (defaults to os.Stderr).
	Stderr io.Writer
}

// Init installs the default slog logger according to opts.
func Init(opts Options) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSONFormat {
		handler = slog.NewJSONHandler(stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
