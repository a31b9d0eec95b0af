package hostfuncs

import (
	"context"
	"fmt"
	"sort"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// HandlerRegistry is an immutable collection of extension kinds. Once
// created via NewRegistry, handlers cannot be added or removed, so lookups
// need no locking.
type HandlerRegistry struct {
	handlers map[string]ByteHandler
	names    []string // sorted for consistent iteration
}

// RegistryOption configures a HandlerRegistry under construction.
type RegistryOption func(*registryBuilder)

type registryBuilder struct {
	handlers   map[string]ByteHandler
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable HandlerRegistry. It fails if a name is
// empty, registered twice, or shadows a built-in kind.
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithHandler("resolve-profile", resolveProfile),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{handlers: make(map[string]ByteHandler)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.handlers))
	wrapped := make(map[string]ByteHandler, len(b.handlers))
	for name, handler := range b.handlers {
		names = append(names, name)
		wrapped[name] = chain(handler, b.middleware)
	}
	sort.Strings(names)

	return &HandlerRegistry{handlers: wrapped, names: names}, nil
}

// Invoke serves an extension kind. An unregistered kind yields a
// ProtocolError.
func (r *HandlerRegistry) Invoke(ctx context.Context, kind string, payload []byte) ([]byte, error) {
	handler, ok := r.handlers[kind]
	if !ok {
		return nil, &sdkerrors.ProtocolError{Kind: kind, Err: sdkerrors.ErrUnknownKind}
	}
	return handler(HostContextFrom(ctx, kind), payload)
}

// Has reports whether kind is registered.
func (r *HandlerRegistry) Has(kind string) bool {
	if r == nil {
		return false
	}
	_, ok := r.handlers[kind]
	return ok
}

// Names returns the registered kinds in sorted order.
func (r *HandlerRegistry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

func (b *registryBuilder) addHandler(name string, handler ByteHandler) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if wireformat.IsCore(wireformat.Kind(name)) {
		return fmt.Errorf("handler name %q is a built-in kind", name)
	}
	if _, exists := b.handlers[name]; exists {
		return fmt.Errorf("duplicate handler name: %q", name)
	}
	b.handlers[name] = handler
	return nil
}

// WithByteHandler registers a raw ByteHandler for kind.
func WithByteHandler(kind string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addHandler(kind, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithHandler registers a typed handler for kind.
func WithHandler[Req any, Resp any](kind string, fn HostFunc[Req, Resp]) RegistryOption {
	return WithByteHandler(kind, NewTypedHandler(fn))
}

// WithMiddleware wraps every handler of the registry.
// Middleware executes in FIFO order (first added wraps outermost).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
