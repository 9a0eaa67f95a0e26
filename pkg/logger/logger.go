// Package logger configures the process-wide slog handler and derives
// loggers scoped to a component or to the run being generated.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type runKey struct{}

// Run names the run a log record belongs to.
type Run struct {
	Name   string
	Config string
	Scheme string
}

func Setup(level string, format string) {
	SetupWriter(os.Stderr, level, format)
}

// SetupWriter installs the default logger writing to w. format is "json"
// or anything else for text.
func SetupWriter(w io.Writer, level string, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// FromContext returns the default logger, grouped under "run" when ctx
// carries one.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	run, ok := ctx.Value(runKey{}).(Run)
	if !ok {
		return logger
	}
	return logger.With(slog.Group("run",
		slog.String("name", run.Name),
		slog.String("config", run.Config),
		slog.String("scheme", run.Scheme),
	))
}

func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
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
