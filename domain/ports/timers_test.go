package ports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// MockTimers records scheduled callbacks and fires them on demand.
type MockTimers struct {
	callbacks map[TimerID]func()
	next      TimerID
}

func (m *MockTimers) SetTimeout(_ time.Duration, fn func()) TimerID {
	if m.callbacks == nil {
		m.callbacks = make(map[TimerID]func())
	}
	m.next++
	m.callbacks[m.next] = fn
	return m.next
}

func (m *MockTimers) ClearTimeout(id TimerID) bool {
	_, ok := m.callbacks[id]
	delete(m.callbacks, id)
	return ok
}

func (m *MockTimers) Fire(id TimerID) {
	if fn, ok := m.callbacks[id]; ok {
		delete(m.callbacks, id)
		fn()
	}
}

var _ Timers = (*MockTimers)(nil)

func TestMockTimers(t *testing.T) {
	m := &MockTimers{}
	fired := 0

	a := m.SetTimeout(time.Second, func() { fired++ })
	b := m.SetTimeout(time.Second, func() { fired += 10 })
	assert.NotEqual(t, a, b)

	assert.True(t, m.ClearTimeout(b))
	assert.False(t, m.ClearTimeout(b))

	m.Fire(a)
	m.Fire(b)
	assert.Equal(t, 1, fired)
}
