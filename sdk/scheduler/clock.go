// Package scheduler provides the timer seam used for deferred note-offs,
// sequence gaps and sweeps, plus cancellable handles for groups of timers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending callback. Stop reports whether the call stopped
// the timer, false if it already fired or was stopped.
type Timer = clockwork.Timer

// Clock schedules callbacks. Callbacks may run on any goroutine; tests
// drive it with clockwork.NewFakeClock.
type Clock = clockwork.Clock

// Real returns the wall clock.
func Real() Clock { return clockwork.NewRealClock() }

// Sleep blocks for d on clock c, or until ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	t := c.AfterFunc(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}

// Task groups timers scheduled for one action so they can be cancelled
// together. The zero value is not usable; use NewTask.
type Task struct {
	clock  Clock
	mu     sync.Mutex
	timers []Timer
	done   bool
}

// NewTask creates an empty task on clock c.
func NewTask(c Clock) *Task {
	return &Task{clock: c}
}

// After schedules f on the task's clock. After Cancel it is a no-op.
func (t *Task) After(d time.Duration, f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.timers = append(t.timers, t.clock.AfterFunc(d, f))
}

// Len reports how many timers were scheduled on the task.
func (t *Task) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

// Cancel stops every timer that has not fired yet and returns how many it stopped.
// Safe on a nil task.
func (t *Task) Cancel() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	stopped := 0
	for _, timer := range t.timers {
		if timer.Stop() {
			stopped++
		}
	}
	return stopped
}
