package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// installed is the logger last passed to SetDefault.
var installed atomic.Pointer[Logger]

// Logger is a slog.Logger that remembers which component it logs for.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
	Handler   slog.Handler
}

// DefaultConfig logs text to stdout at info level.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

// New creates a logger. An explicit Handler wins over Output and Level.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: config.Level})
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}
	return build(slog.New(handler), component)
}

func build(base *slog.Logger, component string) *Logger {
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// With returns a logger carrying the extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return build(l.base.With(args...), l.component)
}

// WithComponent returns a logger for a different component, keeping any
// attributes added through With.
func (l *Logger) WithComponent(component string) *Logger {
	return build(l.base, component)
}

// SetDefault installs logger as the process-wide slog default and as the
// fallback returned by FromContext.
func SetDefault(logger *Logger) {
	installed.Store(logger)
	slog.SetDefault(logger.Logger)
}

func (l *Logger) Component() string {
	return l.component
}
