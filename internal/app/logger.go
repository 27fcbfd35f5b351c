package app

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(outW, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(outW),
		})
	}

	return slog.New(handler)
}

// isTerminal reports whether w is a character device, so that piped and
// captured output stays free of color codes.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
