// Package logger provides structured logging for rosso.
//
// It builds log/slog loggers and carries them through contexts:
//
//   - logger.go: handler construction and runtime level control
//   - context.go: logger and connection/request ID propagation
//   - redact.go: sensitive data redaction
//
// All loggers built by New share one level, so SetLevel (driven by config
// reload) applies to every component at once.
package logger
