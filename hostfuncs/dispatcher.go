package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/policy"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	guestlog "github.com/superfaceai/one-sdk-sub004/log"
	"github.com/superfaceai/one-sdk-sub004/resource"
	"github.com/superfaceai/one-sdk-sub004/syncbridge"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// Output is the result a guest recorded with set-output-success or
// set-output-failure.
type Output struct {
	Value   any
	Failure bool
}

// Dispatcher serves the exchanges of one guest instance. It owns the
// instance's resource table and sync bridge; nothing is shared between
// dispatchers.
type Dispatcher struct {
	ctxValue   any
	baseURL    *url.URL
	policy     ports.Policy
	codec      wireformat.Codec
	registry   *HandlerRegistry
	grants     *entities.GrantSet
	logger     *slog.Logger
	table      *resource.Table
	bridge     *syncbridge.Bridge
	output     *Output
	handler    func(req wireformat.Request) ByteHandler
	caps       ports.Capabilities
	instanceID string
	config     entities.HostConfig
	mu         sync.Mutex
	outputMu   sync.Mutex
	closeOnce  sync.Once
	closeErr   error
	aborted    atomic.Bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherSettings)

type dispatcherSettings struct {
	ctxValue   any
	policy     ports.Policy
	registry   *HandlerRegistry
	logger     *slog.Logger
	strategy   syncbridge.Strategy
	instanceID string
	middleware []Middleware
	config     entities.HostConfig
}

// WithConfig replaces the host configuration.
func WithConfig(cfg entities.HostConfig) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.config = cfg
	}
}

// WithHostOptions applies HostConfig options on top of the current
// configuration.
func WithHostOptions(opts ...entities.HostConfigOption) DispatcherOption {
	return func(s *dispatcherSettings) {
		for _, opt := range opts {
			opt(&s.config)
		}
	}
}

// WithContextValue sets the value returned to take-context.
func WithContextValue(v any) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.ctxValue = v
	}
}

// WithRegistry serves extension kinds from r.
func WithRegistry(r *HandlerRegistry) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.registry = r
	}
}

// WithPolicy sets the policy that checks network and file requests against
// the configured grants. When grants are configured and no policy is
// given, a default policy is used. Without grants nothing is checked.
func WithPolicy(p ports.Policy) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.policy = p
	}
}

// WithLogger sets the logger used for exchanges and guest prints.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(s *dispatcherSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrategy overrides the strategy named by the configuration.
func WithStrategy(st syncbridge.Strategy) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.strategy = st
	}
}

// WithExchangeMiddleware wraps the handling of every exchange, built-in
// kinds included. Panic recovery is always installed innermost.
func WithExchangeMiddleware(mw ...Middleware) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithInstanceID sets the identifier used in logs. Defaults to a random
// UUID.
func WithInstanceID(id string) DispatcherOption {
	return func(s *dispatcherSettings) {
		s.instanceID = id
	}
}

// NewDispatcher creates the dispatcher for one guest instance. Host tasks
// started on its behalf inherit ctx.
func NewDispatcher(ctx context.Context, caps ports.Capabilities, opts ...DispatcherOption) (*Dispatcher, error) {
	s := dispatcherSettings{
		config: entities.DefaultHostConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.instanceID == "" {
		s.instanceID = uuid.NewString()
	}

	codec, err := wireformat.ByName(s.config.Codec)
	if err != nil {
		return nil, &sdkerrors.ConfigError{Field: "codec", Err: err}
	}

	var base *url.URL
	if s.config.BaseURL != "" {
		base, err = url.Parse(s.config.BaseURL)
		if err != nil || !base.IsAbs() {
			return nil, &sdkerrors.ConfigError{Field: "base_url", Err: fmt.Errorf("invalid base url %q", s.config.BaseURL)}
		}
	}
	for _, sec := range s.config.Security {
		if err := sec.Check(); err != nil {
			return nil, &sdkerrors.ConfigError{Field: "security", Err: err}
		}
	}

	logger := s.logger.With("instance", s.instanceID)
	if s.policy == nil && s.config.Grants != nil {
		s.policy = policy.NewPolicy(policy.WithDenialHandler(policy.NewSlogDenialHandler(logger)))
	}
	if s.strategy == nil {
		s.strategy = syncbridge.NewStrategy(s.config)
	}

	bridgeOpts := []syncbridge.Option{
		syncbridge.WithStrategy(s.strategy),
		syncbridge.WithMaxConcurrent(s.config.MaxConcurrentOperations),
		syncbridge.WithLogger(logger),
	}
	if caps.Timers != nil && s.config.ExchangeTimeout() > 0 {
		bridgeOpts = append(bridgeOpts, syncbridge.WithTimeout(caps.Timers, s.config.ExchangeTimeout()))
	}

	d := &Dispatcher{
		ctxValue:   s.ctxValue,
		baseURL:    base,
		policy:     s.policy,
		codec:      codec,
		registry:   s.registry,
		grants:     s.config.Grants,
		logger:     logger,
		table:      resource.NewTable(),
		bridge:     syncbridge.New(ctx, bridgeOpts...),
		caps:       caps,
		instanceID: s.instanceID,
		config:     s.config,
	}

	mw := append(append([]Middleware{}, s.middleware...), PanicRecoveryMiddleware())
	d.handler = func(req wireformat.Request) ByteHandler {
		return chain(func(ctx context.Context, payload []byte) ([]byte, error) {
			return d.serve(ctx, req, payload)
		}, mw)
	}
	return d, nil
}

// InstanceID identifies the guest instance in logs.
func (d *Dispatcher) InstanceID() string { return d.instanceID }

// Codec returns the envelope codec.
func (d *Dispatcher) Codec() wireformat.Codec { return d.codec }

// Exchange serves one request envelope and returns exactly one response
// envelope. It never fails: every problem is reported as an error
// envelope. Only one exchange may be in flight; a concurrent call gets a
// protocol error.
func (d *Dispatcher) Exchange(ctx context.Context, payload []byte) []byte {
	if !d.mu.TryLock() {
		return d.fail(ctx, &sdkerrors.ProtocolError{Err: sdkerrors.ErrExchangeInFlight})
	}
	defer d.mu.Unlock()

	if d.aborted.Load() {
		return d.fail(ctx, &sdkerrors.AbortError{Instance: d.instanceID})
	}
	if limit := d.config.MaxRequestSize; limit > 0 && len(payload) > limit {
		return d.fail(ctx, &sdkerrors.ProtocolError{
			Err: fmt.Errorf("%w: %d bytes exceeds %d", sdkerrors.ErrRequestTooLarge, len(payload), limit),
		})
	}

	req, err := wireformat.DecodeRequest(d.codec, payload)
	if err != nil {
		d.logger.WarnContext(ctx, "malformed request", "error", err)
		return d.fail(ctx, err)
	}

	hctx := NewHostContext(WithCodec(ctx, d.codec), string(req.Kind()), d.instanceID)
	resp, err := d.handler(req)(hctx, payload)
	if err != nil {
		return d.fail(hctx, err)
	}
	return resp
}

func (d *Dispatcher) serve(ctx context.Context, req wireformat.Request, payload []byte) ([]byte, error) {
	if u, ok := req.(*wireformat.Unknown); ok {
		if !d.registry.Has(string(u.Name)) {
			return nil, &sdkerrors.ProtocolError{Kind: string(u.Name), Err: sdkerrors.ErrUnknownKind}
		}
		return d.registry.Invoke(ctx, string(u.Name), payload)
	}

	resp, err := d.handleCore(ctx, req)
	if err != nil {
		d.logger.DebugContext(ctx, "request failed", "kind", req.Kind(), "error", err)
		resp = wireformat.Failure(err)
	}
	return wireformat.EncodeResponse(d.codec, resp)
}

func (d *Dispatcher) handleCore(ctx context.Context, req wireformat.Request) (wireformat.Response, error) {
	switch r := req.(type) {
	case *wireformat.TakeContext:
		resp := wireformat.OK()
		resp.Context = d.ctxValue
		return resp, nil
	case *wireformat.SetOutputSuccess:
		d.setOutput(Output{Value: r.Output})
		return wireformat.OK(), nil
	case *wireformat.SetOutputFailure:
		d.setOutput(Output{Value: r.Output, Failure: true})
		return wireformat.OK(), nil
	case *wireformat.HTTPCall:
		return d.httpCall(r)
	case *wireformat.HTTPCallHead:
		return d.httpCallHead(ctx, r)
	case *wireformat.StreamRead:
		return d.streamRead(ctx, r)
	case *wireformat.StreamWrite:
		return d.streamWrite(ctx, r)
	case *wireformat.StreamClose:
		return d.streamClose(r)
	case *wireformat.FileOpen:
		return d.fileOpen(ctx, r)
	case *wireformat.Print:
		d.print(ctx, r.Message)
		return wireformat.OK(), nil
	case *wireformat.Abort:
		d.aborted.Store(true)
		d.logger.WarnContext(ctx, "guest aborted")
		return wireformat.OK(), nil
	default:
		return wireformat.Response{}, &sdkerrors.ProtocolError{Kind: string(req.Kind()), Err: sdkerrors.ErrUnknownKind}
	}
}

func (d *Dispatcher) setOutput(out Output) {
	d.outputMu.Lock()
	defer d.outputMu.Unlock()
	if d.output != nil {
		d.logger.Debug("output replaced", "failure", out.Failure)
	}
	d.output = &out
}

// Output returns the result recorded by the guest, if any.
func (d *Dispatcher) Output() (Output, bool) {
	d.outputMu.Lock()
	defer d.outputMu.Unlock()
	if d.output == nil {
		return Output{}, false
	}
	return *d.output, true
}

// Aborted reports whether the guest sent abort.
func (d *Dispatcher) Aborted() bool {
	return d.aborted.Load()
}

// print logs a guest line. Lines produced by the guest log package are
// re-emitted with their level and attributes.
func (d *Dispatcher) print(ctx context.Context, message string) {
	if msg, ok := guestlog.Decode(message); ok {
		d.logger.Log(ctx, msg.SlogLevel(), msg.Message, append(msg.Args(), "source", "guest")...)
		return
	}
	d.logger.InfoContext(ctx, message, "source", "guest")
}

// Close releases every live resource, then stops all host work. It is safe
// to call more than once.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = errors.Join(d.table.Close(), d.bridge.Close())
		if d.closeErr != nil {
			d.logger.Warn("instance teardown failed", "error", d.closeErr)
		}
	})
	return d.closeErr
}

// Resources returns the number of live handles.
func (d *Dispatcher) Resources() int { return d.table.Len() }

// PendingOperations returns the number of host operations not yet
// delivered to the guest.
func (d *Dispatcher) PendingOperations() int { return d.bridge.Pending() }

func (d *Dispatcher) fail(ctx context.Context, err error) []byte {
	out, encErr := wireformat.EncodeResponse(d.codec, wireformat.Failure(err))
	if encErr != nil {
		d.logger.ErrorContext(ctx, "failed to encode error response", "error", encErr, "cause", err)
		out, _ = wireformat.EncodeResponse(d.codec, wireformat.Response{
			Kind:  wireformat.ResponseError,
			Error: "internal error: response encoding failed",
		})
	}
	return out
}
