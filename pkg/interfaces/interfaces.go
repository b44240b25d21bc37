// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import "time"

// IdleProbe reports whether the machine is idle and for how long.
// The idle threshold is owned by the probe, not by its consumers.
type IdleProbe interface {
	IsIdle() bool
	ElapsedTime() time.Duration
}

// Clock reports a monotonic, process-wide tick count.
type Clock interface {
	TickCount() time.Duration
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
	Reset()
}
