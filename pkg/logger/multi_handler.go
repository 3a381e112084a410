package logger

import (
	"context"
	"log/slog"
)

// multiHandler fans records out to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, 0, len(m.handlers))
	for _, h := range m.handlers {
		children = append(children, h.WithAttrs(attrs))
	}
	return &multiHandler{handlers: children}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, 0, len(m.handlers))
	for _, h := range m.handlers {
		children = append(children, h.WithGroup(name))
	}
	return &multiHandler{handlers: children}
}

// lazyHandler resolves Default on every record, so package-level component
// loggers created during init follow a later SetGlobalLogger call.
type lazyHandler struct {
	attrs []slog.Attr
	group string
	inner *lazyHandler
}

func (h *lazyHandler) resolve() slog.Handler {
	var base slog.Handler
	if h.inner != nil {
		base = h.inner.resolve()
	} else {
		base = Default.Handler()
	}
	if h.group != "" {
		base = base.WithGroup(h.group)
	}
	if len(h.attrs) > 0 {
		base = base.WithAttrs(h.attrs)
	}
	return base
}

func (h *lazyHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return Default.Handler().Enabled(ctx, lvl)
}

func (h *lazyHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *lazyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lazyHandler{attrs: attrs, inner: h}
}

func (h *lazyHandler) WithGroup(name string) slog.Handler {
	return &lazyHandler{group: name, inner: h}
}
