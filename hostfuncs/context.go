package hostfuncs

import (
	"context"

	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// HostContext wraps the context of one exchange with the request kind and
// the instance it came from. Middleware can store exchange-scoped values
// without growing the context chain.
type HostContext interface {
	context.Context

	// Kind returns the kind of the request being served.
	Kind() string

	// InstanceID identifies the guest instance.
	InstanceID() string

	// SetValue stores an exchange-scoped value. Unlike context.WithValue,
	// this mutates the existing HostContext.
	SetValue(key, value any)

	// GetValue retrieves a value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostContext struct {
	context.Context
	values     map[any]any
	kind       string
	instanceID string
}

// NewHostContext creates a HostContext wrapping ctx.
func NewHostContext(ctx context.Context, kind, instanceID string) HostContext {
	return &hostContext{
		Context:    ctx,
		kind:       kind,
		instanceID: instanceID,
		values:     make(map[any]any),
	}
}

func (c *hostContext) Kind() string       { return c.kind }
func (c *hostContext) InstanceID() string { return c.instanceID }

func (c *hostContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom returns ctx if it already is a HostContext. Otherwise it
// wraps ctx, inheriting the kind and instance of any HostContext ctx was
// derived from.
func HostContextFrom(ctx context.Context, kind string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	instanceID := ""
	if parent, ok := ctx.Value(hostContextKey{}).(HostContext); ok {
		instanceID = parent.InstanceID()
		if kind == "" {
			kind = parent.Kind()
		}
	}
	return NewHostContext(ctx, kind, instanceID)
}

type (
	hostContextKey struct{}
	codecKey       struct{}
)

// Value exposes the HostContext to code that only sees a derived context.
func (c *hostContext) Value(key any) any {
	if key == (hostContextKey{}) {
		return c
	}
	return c.Context.Value(key)
}

// WithCodec attaches the codec used to decode and encode envelopes.
func WithCodec(ctx context.Context, c wireformat.Codec) context.Context {
	return context.WithValue(ctx, codecKey{}, c)
}

// CodecFrom returns the codec attached to ctx, defaulting to JSON.
func CodecFrom(ctx context.Context) wireformat.Codec {
	if c, ok := ctx.Value(codecKey{}).(wireformat.Codec); ok {
		return c
	}
	return wireformat.JSON
}
