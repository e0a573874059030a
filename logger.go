package metrics

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger receives diagnostics from registries and families: sparse cardinality
// warnings, registration traces and invariant violations.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

func newNoopLogger() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// NewSlogLogger adapts a *slog.Logger. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l.With(slog.String("component", "metrics"))}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) log(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, args...))
}

func (s slogLogger) Debugf(format string, args ...interface{}) { s.log(slog.LevelDebug, format, args...) }
func (s slogLogger) Infof(format string, args ...interface{})  { s.log(slog.LevelInfo, format, args...) }
func (s slogLogger) Warnf(format string, args ...interface{})  { s.log(slog.LevelWarn, format, args...) }
func (s slogLogger) Errorf(format string, args ...interface{}) { s.log(slog.LevelError, format, args...) }
