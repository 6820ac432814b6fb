package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"magf/internal/config"
)

// Options configures New. Sinks name the destinations: "stdout", "stderr",
// or a file path that is opened for append. Writer overrides Sinks.
type Options struct {
	Level       string
	Format      string
	Sinks       []string
	Writer      io.Writer
	Development bool
}

// New builds a console or JSON slog logger.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Writer
	if out == nil {
		sinks := opts.Sinks
		if len(sinks) == 0 {
			sinks = []string{"stdout"}
		}
		w, err := openSinks(sinks)
		if err != nil {
			return nil, err
		}
		out = w
	}

	var level slog.LevelVar
	level.Set(levelFromString(opts.Level))
	withSource := opts.Development || level.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(out, &level, withSource)), nil
	case "json":
		return slog.New(newJSONHandler(out, &level, withSource)), nil
	}
	return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
}

// NewFromConfig logs to stdout plus magf.log in the configured log
// directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	sinks := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		sinks = append(sinks, cfg.LogFilePath())
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Sinks: sinks})
}

func levelFromString(level string) slog.Level {
	var parsed slog.Level
	switch v := strings.ToLower(strings.TrimSpace(level)); v {
	case "warning":
		return slog.LevelWarn
	case "debug", "info", "warn", "error":
		if parsed.UnmarshalText([]byte(v)) == nil {
			return parsed
		}
	}
	return slog.LevelInfo
}

func openSinks(sinks []string) (io.Writer, error) {
	var writers []io.Writer
	opened := make(map[string]bool, len(sinks))
	for _, sink := range sinks {
		sink = strings.TrimSpace(sink)
		if sink == "" || opened[sink] {
			continue
		}
		opened[sink] = true
		w, err := openSink(sink)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openSink(sink string) (io.Writer, error) {
	switch sink {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(sink), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(sink, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", sink, err)
	}
	return file, nil
}
