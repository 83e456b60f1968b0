package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog.Logger configured for the given service name.
func New(service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}

// ForEnv picks handler and level from the deployment environment: readable text while
// developing locally, JSON everywhere else, debug records dropped in production.
func ForEnv(service, env string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	switch strings.ToLower(env) {
	case "local", "development":
		h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h).With("service", service)
	case "production":
		return New(service, level)
	default:
		return New(service, slog.LevelDebug)
	}
}
