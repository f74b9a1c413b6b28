package logging

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger is the default client logger. Session, poller and API
// failures are written through it to stderr so they never mix with the
// REPL output on stdout.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLoggerTo writes text records to w, or JSON records when asJSON is
// set. Debug records are dropped.
func NewSlogLoggerTo(w io.Writer, asJSON bool) *SlogLogger {
	var h slog.Handler = slog.NewTextHandler(w, nil)
	if asJSON {
		h = slog.NewJSONHandler(w, nil)
	}
	return NewSlogLogger(slog.New(h))
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
