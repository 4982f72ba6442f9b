// Package logger provides structured logging for tokgate.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler construction, dynamic level
//   - context.go: request id propagation through context.Context
//   - redact.go: masking of session tokens and credential-like attributes
//
// The level is held in a shared slog.LevelVar so SetLevel takes effect on
// every logger derived from New without rebuilding handlers.
package logger
