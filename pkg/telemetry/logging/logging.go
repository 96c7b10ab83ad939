package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"kepler-hq/optic/pkg/config"
)

// ParseLevel converts a configured level string into a slog.Level.
// The empty string defaults to info.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewHandler builds a slog handler from the logging configuration,
// writing to w. The empty format defaults to JSON.
func NewHandler(cfg *config.LoggingConfig, w io.Writer) (slog.Handler, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "text":
		return slog.NewTextHandler(w, opts), nil
	case "json", "":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// Setup installs a process-wide logger built from the logging
// configuration. When debug is true the configured level is lowered to
// debug regardless of what the file says.
func Setup(cfg *config.LoggingConfig, debug bool) error {
	effective := *cfg
	if debug {
		effective.Level = "debug"
	}

	handler, err := NewHandler(&effective, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
