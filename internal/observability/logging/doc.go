// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON and text output formats
//   - Request ID and notice ID tagging
//   - Context-aware logging
//   - LOG_LEVEL driven levels
//
// Example usage:
//
//	logger := logging.NewLogger()
//	logger = logging.WithNoticeID(logger, noticeID)
//	logger.Error("failed to deliver notice", slog.Int("status_code", 500))
package logging
