package syncbridge

import (
	"context"
	"io"
	"sync"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// State of an Operation. Pending moves to Resolved or Failed exactly once.
type State int

const (
	Pending State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation is one in-flight host task.
type Operation struct {
	payload   any
	err       error
	cond      *sync.Cond
	cancel    context.CancelFunc
	stopTimer func()
	name      string
	mu        sync.Mutex
	state     State
	key       uint32
}

func newOperation(key uint32, name string, cancel context.CancelFunc) *Operation {
	op := &Operation{key: key, name: name, cancel: cancel}
	op.cond = sync.NewCond(&op.mu)
	return op
}

// Key returns the handle the operation belongs to.
func (op *Operation) Key() uint32 { return op.key }

// Name returns the label given at Start.
func (op *Operation) Name() string { return op.name }

// State returns the current state.
func (op *Operation) State() State {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.state
}

// Poll reports whether the operation has settled, without blocking.
func (op *Operation) Poll() (bool, any, error) {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.state == Pending {
		return false, nil, nil
	}
	return true, op.payload, op.err
}

func (op *Operation) resolve(payload any) bool {
	return op.settle(Resolved, payload, nil)
}

func (op *Operation) fail(err error) bool {
	return op.settle(Failed, nil, err)
}

func (op *Operation) settle(state State, payload any, err error) bool {
	op.mu.Lock()
	if op.state != Pending {
		op.mu.Unlock()
		return false
	}
	op.state = state
	op.payload = payload
	op.err = err
	stop := op.stopTimer
	op.stopTimer = nil
	op.cond.Broadcast()
	op.mu.Unlock()

	if stop != nil {
		stop()
	}
	return true
}

// wait blocks on the condition variable until the operation settles or ctx
// is done.
func (op *Operation) wait(ctx context.Context) (any, error) {
	stop := context.AfterFunc(ctx, func() {
		op.mu.Lock()
		op.cond.Broadcast()
		op.mu.Unlock()
	})
	defer stop()

	op.mu.Lock()
	defer op.mu.Unlock()
	for op.state == Pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op.cond.Wait()
	}
	return op.payload, op.err
}

// discard gives up on the operation. A pending operation fails so that a
// late result is released on arrival; a settled but undelivered payload is
// released now.
func (op *Operation) discard() {
	if op.cancel != nil {
		op.cancel()
	}
	if op.fail(sdkerrors.ErrOperationDiscarded) {
		return
	}
	op.mu.Lock()
	payload := op.payload
	op.payload = nil
	op.mu.Unlock()
	release(payload)
}

func (op *Operation) setStopTimer(stop func()) {
	op.mu.Lock()
	if op.state != Pending {
		op.mu.Unlock()
		stop()
		return
	}
	op.stopTimer = stop
	op.mu.Unlock()
}

// release closes payloads that hold host resources nobody will collect.
func release(payload any) {
	if c, ok := payload.(io.Closer); ok {
		_ = c.Close()
	}
}
