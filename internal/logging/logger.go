// Package logging defines the structured, context-aware logger used by the
// client packages. Two backends are provided: log/slog (SlogLogger) and
// go.uber.org/zap (ZapLogger).
package logging

import (
	"context"
	"fmt"
	"io"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key/value pairs, e.g.:
//
//	log.Info(ctx, "session restored", "user", name, "authenticated", true)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key/value pairs.
	With(args ...any) Logger
}

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatZap  = "zap"
)

// New builds a Logger writing to w in the requested format.
func New(format string, w io.Writer) (Logger, error) {
	switch format {
	case "", FormatText:
		return NewSlogLoggerTo(w, false), nil
	case FormatJSON:
		return NewSlogLoggerTo(w, true), nil
	case FormatZap:
		return NewZapLoggerTo(w), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a logger that drops everything.
func Nop() Logger {
	return NewSlogLoggerTo(io.Discard, false)
}
