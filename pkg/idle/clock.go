package idle

import (
	"time"

	"github.com/Veraticus/presenced/pkg/interfaces"
)

// processStart anchors the fallback tick count.
var processStart = time.Now()

// MonotonicClock is the platform tick count: a monotonic duration since an
// arbitrary fixed origin, usually boot.
type MonotonicClock struct{}

var _ interfaces.Clock = MonotonicClock{}

// NewClock returns the platform clock.
func NewClock() MonotonicClock {
	return MonotonicClock{}
}

func sinceStart() time.Duration {
	return time.Since(processStart)
}
