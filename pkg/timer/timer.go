// Package timer provides repeating timers whose callbacks run on a single
// control thread, plus the event loop that owns that thread.
package timer

import "time"

// Handle cancels a scheduled task. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler runs fn every interval on the scheduler's control thread.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Handle
	Now() time.Time
}

// Timer is a named repeating timer that can be started and stopped any
// number of times. It is not safe for concurrent use; callers drive it from
// the scheduler's control thread.
type Timer struct {
	name     string
	interval time.Duration
	fn       func()
	sched    Scheduler

	handle   Handle
	lastFire time.Time
}

// New creates a stopped timer.
func New(name string, sched Scheduler, interval time.Duration, fn func()) *Timer {
	return &Timer{
		name:     name,
		interval: interval,
		fn:       fn,
		sched:    sched,
	}
}

// Start arms the timer. Starting a running timer is a no-op.
func (t *Timer) Start() {
	if t.handle != nil {
		return
	}
	t.handle = t.sched.Every(t.interval, t.fire)
}

// Stop disarms the timer. Stopping a stopped timer is a no-op.
func (t *Timer) Stop() {
	if t.handle == nil {
		return
	}
	t.handle.Cancel()
	t.handle = nil
}

// Running reports whether the timer is armed.
func (t *Timer) Running() bool {
	return t.handle != nil
}

// Interval returns the firing interval.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// LastFire returns when the timer last fired, or the zero time.
func (t *Timer) LastFire() time.Time {
	return t.lastFire
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) fire() {
	if t.handle == nil {
		return
	}
	t.lastFire = t.sched.Now()
	t.fn()
}
