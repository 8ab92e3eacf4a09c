// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogLevel defines the logging verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelNone  LogLevel = "none"
)

// Levels lists the accepted level names.
var Levels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelNone}

// simpleHandler writes one line per record: time, tag, level, message and
// any attributes as key=value pairs.
type simpleHandler struct {
	level slog.Level
	tag   string
	attrs []slog.Attr
	mu    *sync.Mutex
	w     io.Writer
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *simpleHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	fmt.Fprintf(&sb, " [%s] %s %s", h.tag, r.Level.String(), r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *simpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &nh
}

// WithGroup is not supported; groups are flattened.
func (h *simpleHandler) WithGroup(name string) slog.Handler {
	return h
}

func parseLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	case LogLevelNone:
		// Set to a very high level to suppress all logs
		return slog.Level(1000)
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w with the given tag.
func New(w io.Writer, level LogLevel, tag string) *slog.Logger {
	if tag == "" {
		tag = "CORE"
	}
	return slog.New(&simpleHandler{
		level: parseLevel(level),
		tag:   tag,
		mu:    &sync.Mutex{},
		w:     w,
	})
}

// SetupLogger configures the global logger based on the log level
func SetupLogger(w io.Writer, level LogLevel) *slog.Logger {
	l := New(w, level, "UEDUMP")
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return New(io.Discard, LogLevelNone, "")
}
