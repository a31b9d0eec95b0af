package syncbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// Task is host work started on behalf of the guest. The context is
// cancelled when the operation times out, is discarded, or the bridge
// closes.
type Task func(ctx context.Context) (any, error)

// Bridge owns the operations of one guest instance.
type Bridge struct {
	ctx      context.Context
	strategy Strategy
	timers   ports.Timers
	logger   *slog.Logger
	cancel   context.CancelFunc
	group    *errgroup.Group
	ops      map[uint32]*Operation
	timeout  time.Duration
	mu       sync.Mutex
	closed   bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithStrategy sets how the guest waits. Default is Blocking.
func WithStrategy(s Strategy) Option {
	return func(b *Bridge) {
		if s != nil {
			b.strategy = s
		}
	}
}

// WithTimeout fails operations that run longer than d, using timers to
// schedule the deadline.
func WithTimeout(timers ports.Timers, d time.Duration) Option {
	return func(b *Bridge) {
		b.timers = timers
		b.timeout = d
	}
}

// WithMaxConcurrent limits the number of host tasks running at once.
// Start blocks while the limit is reached.
func WithMaxConcurrent(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.group.SetLimit(n)
		}
	}
}

// WithLogger sets the logger used for host task failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Bridge whose tasks inherit ctx.
func New(ctx context.Context, opts ...Option) *Bridge {
	b := &Bridge{
		strategy: NewBlocking(),
		logger:   slog.Default(),
		group:    new(errgroup.Group),
		ops:      make(map[uint32]*Operation),
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Strategy returns the configured strategy.
func (b *Bridge) Strategy() Strategy { return b.strategy }

// Start runs fn on a host goroutine and registers its operation under key.
// Only one operation may be outstanding per key.
func (b *Bridge) Start(key uint32, name string, fn Task) (*Operation, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, &sdkerrors.ResourceError{Handle: key, Op: name, Err: sdkerrors.ErrBridgeClosed}
	}
	if _, busy := b.ops[key]; busy {
		b.mu.Unlock()
		return nil, &sdkerrors.ResourceError{Handle: key, Op: name, Err: sdkerrors.ErrOperationPending}
	}
	opCtx, cancel := context.WithCancel(b.ctx)
	op := newOperation(key, name, cancel)
	b.ops[key] = op
	b.mu.Unlock()

	if b.timeout > 0 && b.timers != nil {
		timeoutErr := &sdkerrors.CapabilityError{
			Capability: "timers",
			Op:         "deadline",
			Err:        &sdkerrors.TimeoutError{Operation: name, Duration: b.timeout},
		}
		id := b.timers.SetTimeout(b.timeout, func() {
			b.strategy.Deliver(func() {
				if op.fail(timeoutErr) {
					cancel()
				}
			})
		})
		op.setStopTimer(func() { b.timers.ClearTimeout(id) })
	}

	b.group.Go(func() error {
		payload, err := b.run(opCtx, fn)
		if err != nil {
			b.logger.DebugContext(opCtx, "host task failed", "handle", key, "task", name, "error", err)
		}
		b.strategy.Deliver(func() {
			var settled bool
			if err != nil {
				settled = op.fail(err)
			} else {
				settled = op.resolve(payload)
			}
			if !settled {
				release(payload)
			}
		})
		return nil
	})
	return op, nil
}

func (b *Bridge) run(ctx context.Context, fn Task) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Await parks the caller until the operation for key settles, then
// destroys it and returns its result. If the wait ends first (ctx done or
// strategy gave up) the operation is discarded.
func (b *Bridge) Await(ctx context.Context, key uint32) (any, error) {
	b.mu.Lock()
	op, ok := b.ops[key]
	b.mu.Unlock()
	if !ok {
		return nil, &sdkerrors.ResourceError{Handle: key, Op: "await", Err: sdkerrors.ErrHandleNotFound}
	}

	_, waitErr := b.strategy.Await(ctx, op)
	if done, payload, err := op.Poll(); done {
		b.forget(key, op)
		op.cancel()
		return payload, err
	}
	b.Discard(key)
	return nil, waitErr
}

// Run starts fn and immediately awaits it.
func (b *Bridge) Run(ctx context.Context, key uint32, name string, fn Task) (any, error) {
	if _, err := b.Start(key, name, fn); err != nil {
		return nil, err
	}
	return b.Await(ctx, key)
}

// Discard drops the operation for key, if any. A late result is released
// when it arrives.
func (b *Bridge) Discard(key uint32) {
	b.mu.Lock()
	op, ok := b.ops[key]
	if ok {
		delete(b.ops, key)
	}
	b.mu.Unlock()

	if ok {
		op.discard()
	}
}

func (b *Bridge) forget(key uint32, op *Operation) {
	b.mu.Lock()
	if b.ops[key] == op {
		delete(b.ops, key)
	}
	b.mu.Unlock()
}

// Pending returns the number of operations not yet delivered.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Close cancels all host tasks, waits for them to return, and releases
// every undelivered result. It is safe to call more than once.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	ops := b.ops
	b.ops = make(map[uint32]*Operation)
	b.mu.Unlock()

	b.cancel()
	for _, op := range ops {
		op.discard()
	}
	err := b.group.Wait()
	if c, ok := b.strategy.(*Cooperative); ok {
		c.RunPending()
	}
	return err
}
