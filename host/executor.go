package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/hostfuncs"
	"github.com/superfaceai/one-sdk-sub004/infrastructure/capabilities"
	wazeroadapter "github.com/superfaceai/one-sdk-sub004/infrastructure/wazero"
)

// Executor instantiates guest modules in one wazero runtime.
type Executor struct {
	runtime        wazero.Runtime
	router         *wazeroadapter.Router
	logger         *slog.Logger
	instances      map[string]*Instance
	caps           ports.Capabilities
	config         entities.HostConfig
	dispatcherOpts []hostfuncs.DispatcherOption
	mu             sync.Mutex
}

// NewExecutor creates a runtime with WASI and the message exchange
// registered.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := executorConfig{config: entities.DefaultHostConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger(cfg.config.LogLevel)
	}
	caps := capabilities.Default()
	if cfg.caps != nil {
		caps = *cfg.caps
	}
	if cfg.runtimeConfig == nil {
		cfg.runtimeConfig = wazero.NewRuntimeConfig()
	}

	rt := wazero.NewRuntimeWithConfig(ctx, cfg.runtimeConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	router := wazeroadapter.NewRouter()
	adapterOpts := []wazeroadapter.AdapterOption{wazeroadapter.WithLogger(cfg.logger)}
	if cfg.config.MaxRequestSize > 0 {
		adapterOpts = append(adapterOpts, wazeroadapter.WithMaxRequestSize(uint32(cfg.config.MaxRequestSize))) //nolint:gosec // G115: validated positive
	}
	if err := wazeroadapter.RegisterExchange(ctx, rt, router, append(adapterOpts, cfg.adapterOpts...)...); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Executor{
		runtime:        rt,
		router:         router,
		logger:         cfg.logger,
		instances:      make(map[string]*Instance),
		caps:           caps,
		config:         cfg.config,
		dispatcherOpts: cfg.dispatcherOpts,
	}, nil
}

// Compile validates and compiles a guest module for repeated
// instantiation.
func (e *Executor) Compile(ctx context.Context, wasm []byte) (wazero.CompiledModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}
	return compiled, nil
}

// Instantiate compiles and instantiates wasm as a new instance.
func (e *Executor) Instantiate(ctx context.Context, wasm []byte, opts ...InstanceOption) (*Instance, error) {
	compiled, err := e.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}
	return e.InstantiateModule(ctx, compiled, opts...)
}

// InstantiateModule creates a new instance of a compiled module with its own
// dispatcher. A reactor's _initialize export runs; a command's _start does
// not, use Instance.Run for it.
func (e *Executor) InstantiateModule(ctx context.Context, compiled wazero.CompiledModule, opts ...InstanceOption) (*Instance, error) {
	ic := instanceConfig{}
	for _, opt := range opts {
		opt(&ic)
	}
	if ic.id == "" {
		ic.id = uuid.NewString()
	}

	e.mu.Lock()
	if _, taken := e.instances[ic.id]; taken {
		e.mu.Unlock()
		return nil, fmt.Errorf("instance %q already exists", ic.id)
	}
	e.mu.Unlock()

	dopts := []hostfuncs.DispatcherOption{
		hostfuncs.WithConfig(e.config),
		hostfuncs.WithLogger(e.logger),
		hostfuncs.WithInstanceID(ic.id),
		hostfuncs.WithContextValue(ic.input),
	}
	dopts = append(dopts, e.dispatcherOpts...)
	dopts = append(dopts, ic.dispatcherOpts...)
	d, err := hostfuncs.NewDispatcher(ctx, e.caps, dopts...)
	if err != nil {
		return nil, err
	}

	e.router.Bind(ic.id, d)
	modCfg := wazero.NewModuleConfig().
		WithName(ic.id).
		WithStartFunctions("_initialize")
	if ic.stdout != nil {
		modCfg = modCfg.WithStdout(ic.stdout)
	}
	if ic.stderr != nil {
		modCfg = modCfg.WithStderr(ic.stderr)
	}

	mod, err := e.runtime.InstantiateModule(wazeroadapter.WithInstanceName(ctx, ic.id), compiled, modCfg)
	if err != nil {
		e.router.Unbind(ic.id)
		return nil, errors.Join(fmt.Errorf("failed to instantiate module: %w", err), d.Close())
	}

	inst := &Instance{module: mod, dispatcher: d, executor: e, id: ic.id}
	e.mu.Lock()
	e.instances[ic.id] = inst
	e.mu.Unlock()

	e.logger.DebugContext(ctx, "instance started", "instance", ic.id, "module", compiled.Name())
	return inst, nil
}

// Instances returns the number of open instances.
func (e *Executor) Instances() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.instances)
}

func (e *Executor) forget(id string) {
	e.mu.Lock()
	delete(e.instances, id)
	e.mu.Unlock()
	e.router.Unbind(id)
}

// Close closes every open instance, then the runtime.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	open := make([]*Instance, 0, len(e.instances))
	for _, inst := range e.instances {
		open = append(open, inst)
	}
	e.mu.Unlock()

	var errs []error
	for _, inst := range open {
		errs = append(errs, inst.Close(ctx))
	}
	errs = append(errs, e.runtime.Close(ctx))
	return errors.Join(errs...)
}
