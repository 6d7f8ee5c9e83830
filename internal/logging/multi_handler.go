package logging

import (
	"context"
	"errors"
	"log/slog"
)

// Fanout delivers each record to every child handler that accepts its level.
// A failing child does not stop delivery to the rest; their errors are joined.
type Fanout struct {
	children []slog.Handler
}

func NewFanout(children ...slog.Handler) *Fanout {
	return &Fanout{children: children}
}

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.children {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *Fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f.children {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	children := make([]slog.Handler, len(f.children))
	for i, h := range f.children {
		children[i] = fn(h)
	}
	return &Fanout{children: children}
}
