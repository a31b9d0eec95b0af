// Package log routes log/slog records from a guest to its host. Records are
// serialized as LogMessageWire and delivered through print envelopes; the
// host dispatcher re-emits them with their original level and attributes.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// Printer delivers one line to the host.
type Printer interface {
	Print(message string) error
}

// Handler implements slog.Handler on top of a Printer.
type Handler struct {
	printer Printer
	attrs   []LogAttrWire
	group   string
	opts    handlerConfig
}

// HandlerOption configures a Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{level: slog.LevelInfo}
}

// WithLevel sets the minimum level reported. Records below it are dropped
// on the guest side.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file:line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a Handler printing through p.
func NewHandler(p Printer, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{printer: p, opts: cfg}
}

// Install makes a Handler over p the default slog handler.
func Install(p Printer, opts ...HandlerOption) {
	slog.SetDefault(slog.New(NewHandler(p, opts...)))
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]LogAttrWire(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, flattenAttr(h.group, a)...)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Source:    wireSource,
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Attrs:     append([]LogAttrWire(nil), h.attrs...),
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = append(msg.Attrs, flattenAttr(h.group, attr)...)
		return true
	})
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		msg.Attrs = append(msg.Attrs, LogAttrWire{
			Key:   slog.SourceKey,
			Type:  "string",
			Value: fmt.Sprintf("%s:%d", frame.File, frame.Line),
		})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: failed to marshal record for host: %v, original: %s\n", err, record.Message)
		return nil
	}
	return h.printer.Print(string(data))
}

func flattenAttr(group string, attr slog.Attr) []LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return nil
	}
	if attr.Value.Kind() != slog.KindGroup {
		wire := toLogAttrWire(attr)
		wire.Key = joinKey(group, attr.Key)
		return []LogAttrWire{wire}
	}
	prefix := group
	if attr.Key != "" {
		prefix = joinKey(group, attr.Key)
	}
	var out []LogAttrWire
	for _, a := range attr.Value.Group() {
		out = append(out, flattenAttr(prefix, a)...)
	}
	return out
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return strings.Join([]string{group, key}, ".")
}
