package log

import (
	"context"
	"log/slog"
	"net/http"

	"finance/internal/core"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts the logger stored by NewContext, falling back to
// the one installed by SetDefault and then to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	if logger := installed.Load(); logger != nil {
		return logger
	}
	return build(slog.Default(), "unknown")
}

// StructuredLogger logs the recurring events of the service with the
// standard field names.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a finished request at a level derived from the status.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP)

	sl.logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionRecorded(ctx context.Context, t core.Transaction) {
	fields := NewFields().WithTransaction(t).WithOperation(OpCreate)
	sl.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// LogGoalAlert warns when progress is exceeded or close to the limit and
// stays quiet otherwise.
func (sl *StructuredLogger) LogGoalAlert(ctx context.Context, p core.GoalProgress) {
	switch p.Status {
	case core.StatusExceeded, core.StatusClose:
		fields := NewFields().WithProgress(p).WithOperation(OpProgress)
		sl.logger.WarnContext(ctx, p.Message, fields.ToSlice()...)
	}
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation, errorType string) {
	fields := NewFields().
		WithError(err).
		WithErrorType(errorType).
		WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
