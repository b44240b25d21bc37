//go:build !linux && !darwin && !windows

package idle

import "time"

// TickCount implements interfaces.Clock.
func (MonotonicClock) TickCount() time.Duration {
	return sinceStart()
}
