// Package observability holds the logging and tracing helpers used on the
// notice delivery path.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
