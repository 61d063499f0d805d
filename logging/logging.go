// Package logging installs the process-wide slog handler with rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"go.ghostpane.dev/ghostpane/config"
)

// Setup configures the default slog logger according to cfg.
func Setup(cfg config.Logging) {
	var out io.Writer = os.Stdout
	if cfg.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30,
		}
		if cfg.Stdout {
			out = io.MultiWriter(os.Stdout, rotator)
		} else {
			out = rotator
		}
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
