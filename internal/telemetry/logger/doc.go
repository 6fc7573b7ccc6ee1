// Package logger provides structured logging for myke.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration, the context handler and the default logger
//   - context.go: Context-aware logging with run IDs and task names
//   - redact.go: Sensitive data redaction for keys, env vars and tokens
//
// Logs go to stderr at warn level by default so task output on stdout
// stays clean.
package logger
