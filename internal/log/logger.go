// Package log wraps log/slog with component-tagged loggers and the field
// names shared across the tractor log services.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger that stamps every record with its component.
type Logger struct {
	*slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// JSON selects the JSON handler instead of the text one.
	JSON   bool
	Output io.Writer
	// Handler, when set, wins over JSON and Output.
	Handler slog.Handler
}

// DefaultConfig logs info and above as text on stdout.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func New(cfg Config) *Logger {
	h := cfg.Handler
	if h == nil {
		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: cfg.Level}
		if cfg.JSON {
			h = slog.NewJSONHandler(out, opts)
		} else {
			h = slog.NewTextHandler(out, opts)
		}
	}
	return &Logger{Logger: slog.New(h), component: cfg.Component}
}

// SetDefault installs l as the process-wide slog default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) emit(ctx context.Context, level slog.Level, msg string, args []any) {
	l.Logger.Log(ctx, level, msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(context.Background(), slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any) { l.emit(context.Background(), slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any) { l.emit(context.Background(), slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(context.Background(), slog.LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelError, msg, args)
}
