package capabilities

import (
	"sync"
	"time"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// Timers schedules callbacks with time.AfterFunc.
type Timers struct {
	timers map[ports.TimerID]*time.Timer
	mu     sync.Mutex
	next   ports.TimerID
}

var _ ports.Timers = (*Timers)(nil)

// NewTimers creates an empty timer set.
func NewTimers() *Timers {
	return &Timers{timers: make(map[ports.TimerID]*time.Timer)}
}

func (t *Timers) SetTimeout(d time.Duration, fn func()) ports.TimerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.timers[id] = time.AfterFunc(d, func() {
		t.mu.Lock()
		delete(t.timers, id)
		t.mu.Unlock()
		fn()
	})
	return id
}

func (t *Timers) ClearTimeout(id ports.TimerID) bool {
	t.mu.Lock()
	timer, ok := t.timers[id]
	delete(t.timers, id)
	t.mu.Unlock()

	if !ok {
		return false
	}
	return timer.Stop()
}

// Pending returns the number of scheduled callbacks that have not run.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
