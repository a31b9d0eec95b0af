package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

type contextKey struct {
	name string
}

var (
	instanceNameKey = &contextKey{name: "instance_name"}
	exchangerKey    = &contextKey{name: "exchanger"}
)

// WithInstanceName records the instance a guest call belongs to. The router
// uses it before falling back to the module name.
func WithInstanceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, instanceNameKey, name)
}

// InstanceNameFromContext returns the name set by WithInstanceName.
func InstanceNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(instanceNameKey).(string)
	return name, ok
}

// InstanceName extracts the instance name from ctx, falling back to the
// module name.
func InstanceName(ctx context.Context, mod api.Module) string {
	if name, ok := InstanceNameFromContext(ctx); ok && name != "" {
		return name
	}
	return mod.Name()
}

// WithExchanger pins the exchanger serving guest calls made under ctx. It
// takes precedence over the router.
func WithExchanger(ctx context.Context, ex Exchanger) context.Context {
	return context.WithValue(ctx, exchangerKey, ex)
}

// ExchangerFromContext returns the exchanger set by WithExchanger.
func ExchangerFromContext(ctx context.Context) (Exchanger, bool) {
	ex, ok := ctx.Value(exchangerKey).(Exchanger)
	return ex, ok && ex != nil
}
