package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger writes JSON to stdout: debug in dev, warnings only under test,
// info otherwise. Every record is tagged with the service name.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	var level slog.Level
	switch env {
	case "dev":
		level = slog.LevelDebug
	case "test":
		level = slog.LevelWarn
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(NewContextHandler(handler)).With("service", ServiceName, "env", env)
}
