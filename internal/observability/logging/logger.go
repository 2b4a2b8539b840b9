// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"errnotice/internal/handler/http/requestid"
)

// Attribute keys shared by every log line on the notice path.
const (
	KeyNoticeID   = "notice_id"
	KeyRequestID  = "request_id"
	KeyErrorClass = "error_class"
	KeyURL        = "url"
)

// NewLogger creates a new structured logger with JSON output on stdout.
// The log level can be controlled via the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
// Default level: info
func NewLogger() *slog.Logger {
	return NewJSONLogger(os.Stdout)
}

// NewJSONLogger creates a JSON logger writing to w at the LOG_LEVEL level.
func NewJSONLogger(w io.Writer) *slog.Logger {
	level := LevelFromEnv()
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}))
}

// NewTextLogger creates a new structured logger with human-readable text output.
// This is useful for local development and for the noticectl command.
func NewTextLogger() *slog.Logger {
	level := LevelFromEnv()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// LevelFromEnv parses LOG_LEVEL. Unknown values fall back to info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
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

// WithRequestID returns a new logger that includes the request ID from the context.
// This ties a notice raised while serving an HTTP request to that request's logs.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(KeyRequestID, reqID)
}

// WithNoticeID returns a logger that tags every entry with the notice ID.
func WithNoticeID(logger *slog.Logger, noticeID string) *slog.Logger {
	if noticeID == "" {
		return logger
	}
	return logger.With(KeyNoticeID, noticeID)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
