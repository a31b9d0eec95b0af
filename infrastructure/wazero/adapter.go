package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/internal/abi"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

const (
	// DefaultModuleName is the import module guests link against.
	DefaultModuleName = "sf_host_unstable"

	// ExchangeFunction is the single function exported to guests.
	ExchangeFunction = "message_exchange"

	// AbortExitCode is the exit code of a module closed after abort.
	AbortExitCode uint32 = 134

	// DefaultMaxRequestSize bounds the request read from guest memory.
	DefaultMaxRequestSize = 8 << 20
)

// Exchanger serves one encoded request envelope. hostfuncs.Dispatcher
// implements it.
type Exchanger interface {
	Exchange(ctx context.Context, payload []byte) []byte
	Codec() wireformat.Codec
	Aborted() bool
}

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	Logger *slog.Logger

	// ModuleName is the host module name (default: "sf_host_unstable").
	ModuleName string

	// MaxRequestSize limits the size of requests read from guest memory.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		if name != "" {
			c.ModuleName = name
		}
	}
}

// WithMaxRequestSize sets the maximum request size read from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		if size > 0 {
			c.MaxRequestSize = size
		}
	}
}

// WithLogger sets the logger for adapter failures.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Logger:         slog.Default(),
		ModuleName:     DefaultModuleName,
		MaxRequestSize: DefaultMaxRequestSize,
	}
}

// RegisterExchange instantiates the host module exporting message_exchange
// in runtime. Calls are served by the exchanger router resolves for the
// calling module.
func RegisterExchange(ctx context.Context, runtime wazero.Runtime, router *Router, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	_, err := runtime.NewHostModuleBuilder(cfg.ModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = handleExchange(ctx, mod, stack[0], router, cfg)
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
		WithParameterNames("request").
		Export(ExchangeFunction).
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

func handleExchange(ctx context.Context, mod api.Module, packed uint64, router *Router, cfg AdapterConfig) uint64 {
	ex, ok := router.Resolve(ctx, mod)
	if !ok {
		name := InstanceName(ctx, mod)
		cfg.Logger.ErrorContext(ctx, "wazero: no exchanger bound", "instance", name)
		return writeFailure(ctx, mod, wireformat.JSON, cfg.Logger, &sdkerrors.ProtocolError{
			Err: fmt.Errorf("no exchanger bound to instance %q", name),
		})
	}
	codec := ex.Codec()

	if packed>>abi.PtrHighBits == 0 && uint32(packed) != 0 {
		return writeFailure(ctx, mod, codec, cfg.Logger, &sdkerrors.ProtocolError{
			Err: fmt.Errorf("null request pointer with length %d", uint32(packed)),
		})
	}
	ptr, length := abi.UnpackPtrLen(packed)

	if length > cfg.MaxRequestSize {
		cfg.Logger.WarnContext(ctx, "wazero: request exceeds limit", "size", length, "limit", cfg.MaxRequestSize)
		return writeFailure(ctx, mod, codec, cfg.Logger, &sdkerrors.ProtocolError{
			Err: fmt.Errorf("%w: %d bytes exceeds %d", sdkerrors.ErrRequestTooLarge, length, cfg.MaxRequestSize),
		})
	}

	view, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return writeFailure(ctx, mod, codec, cfg.Logger, &sdkerrors.ProtocolError{
			Err: fmt.Errorf("request [%d, %d) is outside guest memory", ptr, uint64(ptr)+uint64(length)),
		})
	}
	// allocate may grow memory and invalidate view.
	request := make([]byte, length)
	copy(request, view)

	response := ex.Exchange(ctx, request)

	if ex.Aborted() {
		cfg.Logger.InfoContext(ctx, "wazero: guest aborted, closing module", "instance", InstanceName(ctx, mod))
		_ = mod.CloseWithExitCode(ctx, AbortExitCode)
		panic(sys.NewExitError(AbortExitCode))
	}
	return writeResponse(ctx, mod, response, cfg.Logger)
}

// writeResponse copies data into memory from the guest's allocate export.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte, logger *slog.Logger) uint64 {
	if len(data) == 0 {
		return 0
	}
	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		logger.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if ptr == 0 {
		logger.ErrorContext(ctx, "wazero: guest allocate returned null", "size", len(data))
		return 0
	}

	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory", "ptr", ptr, "size", len(data))
		return 0
	}
	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by the request limit
}

func writeFailure(ctx context.Context, mod api.Module, codec wireformat.Codec, logger *slog.Logger, cause error) uint64 {
	out, err := wireformat.EncodeResponse(codec, wireformat.Failure(cause))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to encode error response", "error", err, "cause", cause)
		return 0
	}
	return writeResponse(ctx, mod, out, logger)
}
