package idle

import (
	"testing"
	"time"
)

func TestMonotonicClock_TickCount(t *testing.T) {
	clock := NewClock()

	first := clock.TickCount()
	time.Sleep(5 * time.Millisecond)
	second := clock.TickCount()

	if first < 0 {
		t.Errorf("TickCount() = %v, want non-negative", first)
	}

	if second < first {
		t.Errorf("TickCount went backwards: %v then %v", first, second)
	}
}
