package ports

import "time"

// TimerID identifies a scheduled callback.
type TimerID uint64

// Timers schedules host callbacks. Callbacks run on a host goroutine.
type Timers interface {
	SetTimeout(d time.Duration, fn func()) TimerID
	// ClearTimeout cancels a pending callback. It reports whether the
	// callback was stopped before it ran.
	ClearTimeout(id TimerID) bool
}
