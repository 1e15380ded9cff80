package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// switchHandler forwards to next while enabled. Clones made through
// WithAttrs/WithGroup share the same switch.
type switchHandler struct {
	next slog.Handler
	off  *atomic.Bool
}

func newSwitchHandler(next slog.Handler) *switchHandler {
	return &switchHandler{next: next, off: new(atomic.Bool)}
}

func (h *switchHandler) disable() { h.off.Store(true) }

func (h *switchHandler) enable() { h.off.Store(false) }

func (h *switchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.off.Load() {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *switchHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.off.Load() {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *switchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &switchHandler{next: h.next.WithAttrs(attrs), off: h.off}
}

func (h *switchHandler) WithGroup(name string) slog.Handler {
	return &switchHandler{next: h.next.WithGroup(name), off: h.off}
}
