package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerContextKey is where request-scoped loggers are stored.
const LoggerContextKey contextKey = "logger"

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, l)
}

// FromContext returns the logger stored by WithContext, or one over
// slog.Default tagged "unknown".
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// StructuredLogger emits the recurring events with a fixed field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// levelForStatus maps 4xx to warn and 5xx to error.
func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	sl.logger.Logger.Log(ctx, levelForStatus(statusCode), "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogEntryCreated(ctx context.Context, date, customer, location, tractor string, acres float64, cost int64, employee string) {
	fields := NewFields().
		WithEntry(date, customer, location, tractor, acres, cost, employee).
		WithOperation(OpCreate).
		WithComponent(ComponentEntry)
	sl.logger.Logger.InfoContext(ctx, "Log entry created", fields.ToSlice()...)
}

// LogLogin records a sign-in attempt. Failures are warnings and never say
// which factor was wrong.
func (sl *StructuredLogger) LogLogin(ctx context.Context, username, role, clientIP string, ok bool) {
	fields := NewFields().
		WithUser(username, role).
		WithClientIP(clientIP).
		WithOperation(OpLogin).
		WithComponent(ComponentAuth)
	fields[FieldSuccess] = ok
	if ok {
		sl.logger.Logger.InfoContext(ctx, "User signed in", fields.ToSlice()...)
		return
	}
	sl.logger.Logger.WarnContext(ctx, "Sign-in rejected", fields.WithErrorType(ErrorTypeAuth).ToSlice()...)
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.logger.Logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
