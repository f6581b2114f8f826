package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures New.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     io.Writer
	AddSource  bool
	BufferSize int

	// Buffer, when set, is used instead of allocating one.
	Buffer *Buffer

	// Shipper, when set, receives every recorded entry.
	Shipper *Shipper
}

// New creates the process logger and the buffer it records into.
func New(opts Options) (*slog.Logger, *Buffer) {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	hopts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var inner slog.Handler
	if strings.ToLower(opts.Format) == "text" {
		inner = slog.NewTextHandler(output, hopts)
	} else {
		inner = slog.NewJSONHandler(output, hopts)
	}

	buf := opts.Buffer
	if buf == nil {
		buf = NewBuffer(opts.BufferSize)
	}

	return slog.New(NewHandler(inner, buf, opts.Shipper)), buf
}

// Handler records entries into a Buffer, forwards them to an inner handler
// and optionally queues them on a Shipper.
type Handler struct {
	inner   slog.Handler
	buf     *Buffer
	shipper *Shipper
	attrs   []slog.Attr
	groups  []string
}

// NewHandler wraps inner. shipper may be nil.
func NewHandler(inner slog.Handler, buf *Buffer, shipper *Shipper) *Handler {
	if buf == nil {
		buf = NewBuffer(0)
	}
	return &Handler{inner: inner, buf: buf, shipper: shipper}
}

// Enabled reports whether the inner handler accepts level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle records r and forwards it.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	entry := Entry{
		Level:     LevelName(r.Level),
		Message:   r.Message,
		Timestamp: r.Time,
	}

	for _, a := range h.attrs {
		h.collect(&entry, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(&entry, h.qualify([]slog.Attr{a})[0])
		return true
	})

	h.buf.Append(entry)
	if h.shipper != nil {
		h.shipper.Enqueue(entry)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	cp := *h
	cp.inner = h.inner.WithAttrs(attrs)
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &cp
}

// WithGroup returns a new handler with the given group.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.inner = h.inner.WithGroup(name)
	cp.groups = append(append([]string(nil), h.groups...), name)
	return &cp
}

// qualify prefixes attribute keys with the current group path so that
// entries keep a flat data map.
func (h *Handler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *Handler) collect(e *Entry, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	switch {
	case a.Key == ContextKey && v.Kind() == slog.KindString:
		e.Context = v.String()
		return
	case a.Key == StackKey && v.Kind() == slog.KindString:
		e.Stack = v.String()
		return
	}

	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[a.Key] = serialize(attrValue(v))
}

func attrValue(v slog.Value) any {
	if v.Kind() != slog.KindGroup {
		return v.Any()
	}
	m := make(map[string]any)
	for _, a := range v.Group() {
		m[a.Key] = attrValue(a.Value.Resolve())
	}
	return m
}
