//go:build linux || darwin

package idle

import (
	"time"

	"golang.org/x/sys/unix"
)

// TickCount implements interfaces.Clock.
func (MonotonicClock) TickCount() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return sinceStart()
	}
	return time.Duration(ts.Nano())
}
