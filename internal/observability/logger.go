package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the API's JSON logger. Records carry the service and
// environment plus trace and request ids taken from the context.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	base := slog.NewJSONHandler(w, opts).WithAttrs([]slog.Attr{
		slog.String("service", "expensehub-api"),
		slog.String("env", env),
	})
	return slog.New(NewTraceHandler(base))
}
