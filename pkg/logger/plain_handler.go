package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// consoleHidden are attributes that only make sense in the file log.
var consoleHidden = map[string]bool{
	"intention":  true,
	"time":       true,
	"level":      true,
	"msg":        true,
	"component":  true,
	"request_id": true,
}

// plainHandler prints the message prefixed by the intention marker and
// followed by key=value pairs, without time or level decorations.
type plainHandler struct {
	w       io.Writer
	attrs   []slog.Attr
	mu      *sync.Mutex
	leveler slog.Leveler
}

func newPlainHandler(w io.Writer, leveler slog.Leveler) slog.Handler {
	return &plainHandler{w: w, leveler: leveler, mu: &sync.Mutex{}}
}

func (h *plainHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	if h.leveler == nil {
		return true
	}
	return lvl >= h.leveler.Level()
}

func (h *plainHandler) Handle(_ context.Context, r slog.Record) error {
	var flat []slog.Attr
	collect := func(a slog.Attr) {
		if a.Value.Kind() == slog.KindGroup {
			flat = append(flat, a.Value.Group()...)
			return
		}
		flat = append(flat, a)
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	var b strings.Builder
	for _, a := range flat {
		if a.Key == "intention" {
			b.WriteString(markerFor(Intention(a.Value.String())))
			b.WriteByte(' ')
			break
		}
	}
	if r.Level >= slog.LevelWarn {
		b.WriteString(r.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(r.Message)
	for _, a := range flat {
		if consoleHidden[a.Key] {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, b.String())
	return err
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

// WithGroup is a no-op for console output; grouped attrs are flattened.
func (h *plainHandler) WithGroup(string) slog.Handler {
	return h
}
