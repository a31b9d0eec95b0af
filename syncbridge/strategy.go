package syncbridge

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// Strategy decides how a guest call waits for an Operation. All strategies
// give the guest the same observable behavior.
type Strategy interface {
	Name() string
	// Deliver applies a host-side completion to its operation.
	Deliver(complete func())
	// Await parks the calling goroutine until op settles or ctx is done.
	Await(ctx context.Context, op *Operation) (any, error)
}

// Blocking parks the guest on the operation's condition variable. Host
// completions are applied directly on the host goroutine.
type Blocking struct{}

// NewBlocking returns the blocking strategy.
func NewBlocking() *Blocking { return &Blocking{} }

func (*Blocking) Name() string            { return entities.StrategyBlocking }
func (*Blocking) Deliver(complete func()) { complete() }

func (*Blocking) Await(ctx context.Context, op *Operation) (any, error) {
	return op.wait(ctx)
}

// Polling re-checks the operation at a paced interval and gives up after a
// fixed number of polls.
type Polling struct {
	limiter *rate.Limiter
	budget  int
}

// NewPolling polls at most budget times, once per interval.
func NewPolling(budget int, interval time.Duration) *Polling {
	if budget <= 0 {
		budget = 1
	}
	return &Polling{budget: budget, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (*Polling) Name() string            { return entities.StrategyPolling }
func (*Polling) Deliver(complete func()) { complete() }

func (p *Polling) Await(ctx context.Context, op *Operation) (any, error) {
	for attempt := 0; attempt < p.budget; attempt++ {
		if done, payload, err := op.Poll(); done {
			return payload, err
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if done, payload, err := op.Poll(); done {
		return payload, err
	}
	return nil, &sdkerrors.CapabilityError{Capability: "bridge", Op: "poll", Err: sdkerrors.ErrPollBudget}
}

// Cooperative queues host completions and lets the blocked guest call apply
// them on its own goroutine, so operation state only changes while the
// guest is parked at the exchange boundary.
type Cooperative struct {
	wake  chan struct{}
	queue []func()
	mu    sync.Mutex
}

// NewCooperative returns an empty run queue.
func NewCooperative() *Cooperative {
	return &Cooperative{wake: make(chan struct{}, 1)}
}

func (*Cooperative) Name() string { return entities.StrategyCooperative }

func (c *Cooperative) Deliver(complete func()) {
	c.mu.Lock()
	c.queue = append(c.queue, complete)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cooperative) Await(ctx context.Context, op *Operation) (any, error) {
	for {
		c.RunPending()
		if done, payload, err := op.Poll(); done {
			return payload, err
		}
		select {
		case <-c.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// RunPending applies every queued completion and returns how many ran.
func (c *Cooperative) RunPending() int {
	c.mu.Lock()
	queued := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, complete := range queued {
		complete()
	}
	return len(queued)
}

// NewStrategy builds the strategy named by a HostConfig.
func NewStrategy(cfg entities.HostConfig) Strategy {
	switch cfg.Strategy {
	case entities.StrategyPolling:
		return NewPolling(cfg.PollAttempts(), cfg.PollInterval())
	case entities.StrategyCooperative:
		return NewCooperative()
	default:
		return NewBlocking()
	}
}
