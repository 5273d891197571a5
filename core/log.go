package core

import (
	"context"
	"io"
	"log/slog"
)

// DebugWriter is a function type for writing debug output
type DebugWriter func(string)

// Firmware message levels
const (
	LevelErr  = slog.LevelError
	LevelStat = slog.LevelInfo
	LevelDbg  = slog.LevelDebug
)

var logger = slog.New(slog.DiscardHandler)

// SetLogger sets the root logger. Loggers handed out by Logger follow the
// root at log time, so this may run after components are built. A nil
// logger discards output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l
}

// Logger returns a logger tagged with the component name that writes
// through whatever root logger is current when a record is emitted.
func Logger(component string) *slog.Logger {
	return slog.New(&rootHandler{steps: []step{{attrs: []slog.Attr{slog.String("component", component)}}}})
}

// step is one WithAttrs or WithGroup call, replayed on the current root
type step struct {
	group string
	attrs []slog.Attr
}

type rootHandler struct {
	steps []step
}

func (h *rootHandler) current() slog.Handler {
	out := logger.Handler()
	for _, s := range h.steps {
		if s.group != "" {
			out = out.WithGroup(s.group)
		} else {
			out = out.WithAttrs(s.attrs)
		}
	}
	return out
}

func (h *rootHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return logger.Handler().Enabled(ctx, level)
}

func (h *rootHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *rootHandler) with(s step) *rootHandler {
	steps := make([]step, len(h.steps), len(h.steps)+1)
	copy(steps, h.steps)
	return &rootHandler{steps: append(steps, s)}
}

func (h *rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(step{attrs: attrs})
}

func (h *rootHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(step{group: name})
}

// NewDebugHandler returns a text handler that emits each record through w.
// This lets platforms redirect logs to UART, USB or the bench link.
func NewDebugHandler(w DebugWriter, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(writerFunc(w), &slog.HandlerOptions{Level: level})
}

type writerFunc DebugWriter

func (f writerFunc) Write(p []byte) (int, error) {
	if f != nil {
		f(string(p))
	}
	return len(p), nil
}

var _ io.Writer = writerFunc(nil)
