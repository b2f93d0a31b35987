package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init configures the process-wide logger. Format is "json" or "text",
// level is one of debug/info/warn/error.
func Init(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func L() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("debug", "text")
	}
	return defaultLogger
}
