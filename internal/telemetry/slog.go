package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the global slog logger per the logging config
// (ORD_LOGGING_FORMAT, ORD_LOGGING_LEVEL). "json" output is meant for
// production ingestion, anything else falls back to the text handler for
// local development. Unknown levels mean info; debug additionally records
// file:line on every entry.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
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
