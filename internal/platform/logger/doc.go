// Package logger builds the JSON slog logger and carries request-scoped
// loggers through a context.
package logger
