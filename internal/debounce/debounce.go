// Package debounce provides a restartable quiet-period timer.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period applied to free-text search input.
const DefaultDelay = 300 * time.Millisecond

// Timer runs the most recently scheduled function once the delay has elapsed
// without another Reset. A fire that a later Reset, Cancel or Stop superseded
// is dropped.
type Timer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New returns a Timer with the given delay. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Timer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Timer{delay: delay}
}

// Delay returns the quiet period.
func (t *Timer) Delay() time.Duration { return t.delay }

// Start schedules fn. It is an alias of Reset for callers that read better
// with it on the first keystroke.
func (t *Timer) Start(fn func()) { t.Reset(fn) }

// Reset discards any pending fire and schedules fn after the delay.
func (t *Timer) Reset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		current := gen == t.gen && !t.stopped
		if current {
			t.timer = nil
		}
		t.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending fire, if any. The Timer stays usable.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Pending reports whether a fire is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop cancels any pending fire and makes later Resets no-ops.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.stopped = true
}

func (t *Timer) cancelLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
