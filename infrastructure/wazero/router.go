package wazero

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
)

// Router maps guest instances to the exchangers serving them. One router
// backs the host module of a runtime; every instance binds under its name.
type Router struct {
	instances map[string]Exchanger
	mu        sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{instances: make(map[string]Exchanger)}
}

// Bind routes calls from the named instance to ex, replacing any previous
// binding.
func (r *Router) Bind(name string, ex Exchanger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = ex
}

// Unbind removes the binding of the named instance.
func (r *Router) Unbind(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Len returns the number of bound instances.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Resolve finds the exchanger for a call from mod.
func (r *Router) Resolve(ctx context.Context, mod api.Module) (Exchanger, bool) {
	if ex, ok := ExchangerFromContext(ctx); ok {
		return ex, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.instances[InstanceName(ctx, mod)]
	return ex, ok
}
