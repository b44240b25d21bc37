//go:build windows

package idle

import "time"

// TickCount implements interfaces.Clock.
func (MonotonicClock) TickCount() time.Duration {
	return time.Duration(tickCount64()) * time.Millisecond
}
