// Package logger sets up slog for the CLI and the sandbox node and carries
// request scoped loggers and attributes through a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger returns a logger for environment and installs it as the slog default.
// dev and test get a coloured console handler on stderr, prod and staging get JSON.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	l := slog.New(newHandler(os.Stderr, level, environment))
	slog.SetDefault(l)
	return l
}

func newHandler(w io.Writer, level slog.Level, environment string) slog.Handler {
	switch environment {
	case "prod", "staging":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// ParseLogLevel maps debug, info, warn and error to a slog level. Anything else is info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type loggerKey struct{}
type logAttrsKey struct{}

// logAttrs collects attributes added while a request is handled
type logAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithLogger stores l in ctx.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// ContextRequestLogger returns the logger stored in ctx, or slog.Default().
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrCollector prepares ctx to collect attributes for the final request log line.
func ContextWithLogAttrCollector(ctx context.Context) context.Context {
	return context.WithValue(ctx, logAttrsKey{}, &logAttrs{})
}

// ContextWithLogAttrs adds attrs to the collector in ctx, if there is one.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if c, ok := ctx.Value(logAttrsKey{}).(*logAttrs); ok {
		c.mu.Lock()
		c.attrs = append(c.attrs, attrs...)
		c.mu.Unlock()
	}
	return ctx
}

// ContextLogAttrs returns the attributes collected so far.
func ContextLogAttrs(ctx context.Context) []slog.Attr {
	c, ok := ctx.Value(logAttrsKey{}).(*logAttrs)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]slog.Attr(nil), c.attrs...)
}
