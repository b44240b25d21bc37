package idle

import (
	"sync"
	"time"
)

// ActivityTracker is a Source fed by the host. It reports the time since the
// last UpdateActivity call and serves as the final fallback when no system
// mechanism is available.
type ActivityTracker struct {
	mu           sync.RWMutex
	lastActivity time.Time
	now          func() time.Time
}

var _ Source = (*ActivityTracker)(nil)

// NewActivityTracker creates a tracker whose last activity is now.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		lastActivity: time.Now(),
		now:          time.Now,
	}
}

// Name implements Source.
func (a *ActivityTracker) Name() string {
	return "activity"
}

// IdleTime implements Source. It never fails; activity recorded in the
// future reads as zero idle time.
func (a *ActivityTracker) IdleTime() (time.Duration, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	idle := a.now().Sub(a.lastActivity)
	if idle < 0 {
		idle = 0
	}
	return idle, nil
}

// LastActivity returns the last recorded activity time.
func (a *ActivityTracker) LastActivity() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.lastActivity
}

// UpdateActivity records activity now.
func (a *ActivityTracker) UpdateActivity() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastActivity = a.now()
}

// UpdateActivityTime records activity at t.
func (a *ActivityTracker) UpdateActivityTime(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastActivity = t
}
