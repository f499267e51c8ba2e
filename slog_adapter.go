package logflow

import (
	"context"
	"log/slog"

	"github.com/mdzesseis/logflow/internal/record"
)

// SlogHandler adapts a Logger to log/slog.Handler, the standard
// library's generic-facade seam, letting any slog-based caller submit
// through the pipeline without depending on this package directly.
type SlogHandler struct {
	logger *Logger
	group  string
	attrs  []slog.Attr
}

// NewSlogHandler wraps logger as a slog.Handler with no group or
// attributes attached yet.
func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// Enabled reports whether logger would admit a record at level to at
// least one attached transport.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(levelName(level))
}

// Handle translates r into a record.Record and submits it. Grouped
// attributes are flattened into the metadata map with their group
// path dot-joined onto the key, since record.Record carries a flat
// map rather than slog's nested group structure.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	meta := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		addAttr(meta, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(meta, h.group, a)
		return true
	})

	h.logger.Submit(record.Record{
		Timestamp: r.Time,
		Level:     levelName(r.Level),
		Message:   r.Message,
		Meta:      meta,
	})
	return nil
}

// WithAttrs returns a new handler carrying attrs in addition to any it
// already holds, attached under the current group.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &SlogHandler{
		logger: h.logger,
		group:  h.group,
		attrs:  make([]slog.Attr, 0, len(h.attrs)+len(attrs)),
	}
	out.attrs = append(out.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" && !a.Equal(slog.Attr{}) {
			a.Key = h.group + "." + a.Key
		}
		out.attrs = append(out.attrs, a)
	}
	return out
}

// WithGroup returns a new handler that prefixes every subsequent
// attribute's key with name, dot-joined onto any existing group path.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &SlogHandler{logger: h.logger, group: group, attrs: h.attrs}
}

func addAttr(meta map[string]any, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			addAttr(meta, key, sub)
		}
		return
	}
	meta[key] = a.Value.Any()
}

// levelName maps a slog.Level to this pipeline's level names. Values
// between the four standard slog levels fall back to the nearest one
// at or below their severity.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
