package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/erraggy/oaspipe/logging"
)

// NewLogger builds a slog-backed logger writing to w (stderr when nil).
func NewLogger(c Log, w io.Writer) logging.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level(c.Level)}
	var h slog.Handler
	if c.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return logging.NewSlogAdapter(slog.New(h))
}

func level(name string) slog.Level {
	switch strings.ToLower(name) {
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
