// Package testutil provides deterministic fakes for driving the presence
// tracker and its collaborators in tests.
package testutil

import (
	"sync"
	"time"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/notification"
)

// MockNotifier is a notification.Notifier that records what it is asked to
// send. Errors queued with FailNext are returned by the next sends, in order.
type MockNotifier struct {
	mu       sync.Mutex
	sent     []notification.Notification
	attempts int
	failures []error
}

// NewMockNotifier creates a notifier that accepts everything.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements notification.Notifier.
func (m *MockNotifier) Send(n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}

	m.sent = append(m.sent, n)
	return nil
}

// FailNext makes the next len(errs) sends fail with errs in order.
func (m *MockNotifier) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

// Sent returns a copy of the notifications that were accepted.
func (m *MockNotifier) Sent() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.sent))
	copy(result, m.sent)
	return result
}

// Titles returns the titles of accepted notifications in send order.
func (m *MockNotifier) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	titles := make([]string, 0, len(m.sent))
	for _, n := range m.sent {
		titles = append(titles, n.Title)
	}
	return titles
}

// Attempts returns how many sends were made, failed ones included.
func (m *MockNotifier) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// MockProbe is a scripted interfaces.IdleProbe. Elapsed idle time grows with
// the attached clock while the probe reports idle.
type MockProbe struct {
	mu         sync.Mutex
	clock      *ManualScheduler
	idle       bool
	idleSince  time.Duration
	fixed      *time.Duration
	isIdleCall int
}

// NewMockProbe creates a probe reporting active, tied to clock.
func NewMockProbe(clock *ManualScheduler) *MockProbe {
	return &MockProbe{clock: clock}
}

// IsIdle implements interfaces.IdleProbe.
func (m *MockProbe) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isIdleCall++
	return m.idle
}

// ElapsedTime implements interfaces.IdleProbe.
func (m *MockProbe) ElapsedTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fixed != nil {
		return *m.fixed
	}
	if !m.idle {
		return 0
	}
	return m.clock.TickCount() - m.idleSince
}

// SetIdle switches the reported state. idleFor back-dates the start of the
// idle span, modelling a threshold that was already crossed.
func (m *MockProbe) SetIdle(idle bool, idleFor time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = idle
	m.idleSince = m.clock.TickCount() - idleFor
}

// SetElapsed pins ElapsedTime to d regardless of state.
func (m *MockProbe) SetElapsed(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = &d
}

// GetIsIdleCallCount returns how many times IsIdle was called
func (m *MockProbe) GetIsIdleCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isIdleCall
}

// MockRateLimiter is an interfaces.RateLimiter that replays scripted
// decisions. The last decision repeats once the script runs out; an empty
// script allows everything. Reset rewinds the script.
type MockRateLimiter struct {
	mu        sync.Mutex
	decisions []bool
	next      int
	allows    int
	resets    int
}

// NewMockRateLimiter creates a limiter answering Allow with decisions.
func NewMockRateLimiter(decisions ...bool) *MockRateLimiter {
	return &MockRateLimiter{decisions: decisions}
}

// Allow implements interfaces.RateLimiter.
func (m *MockRateLimiter) Allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allows++
	if len(m.decisions) == 0 {
		return true
	}
	i := m.next
	if i >= len(m.decisions) {
		i = len(m.decisions) - 1
	} else {
		m.next++
	}
	return m.decisions[i]
}

// Reset implements interfaces.RateLimiter.
func (m *MockRateLimiter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.next = 0
}

// Calls returns how many times Allow and Reset were called.
func (m *MockRateLimiter) Calls() (allows, resets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allows, m.resets
}

// Recorder is an events.Publisher that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements events.Publisher.
func (r *Recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// IdleStates returns the idle payloads in emission order.
func (r *Recorder) IdleStates() []events.IdleStateChanged {
	r.mu.Lock()
	defer r.mu.Unlock()

	var states []events.IdleStateChanged
	for _, e := range r.events {
		if p, ok := e.IdleState(); ok {
			states = append(states, p)
		}
	}
	return states
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
