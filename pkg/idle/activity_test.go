package idle

import (
	"sync"
	"testing"
	"time"
)

func TestNewActivityTracker(t *testing.T) {
	tracker := NewActivityTracker()

	if tracker.lastActivity.IsZero() {
		t.Error("Initial last activity time should not be zero")
	}

	if time.Since(tracker.lastActivity) > time.Second {
		t.Error("Initial last activity time should be recent")
	}

	if tracker.Name() != "activity" {
		t.Errorf("Name() = %q, want %q", tracker.Name(), "activity")
	}
}

func TestActivityTracker_IdleTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastActivity time.Time
		expected     time.Duration
	}{
		{
			name:         "Recent activity",
			lastActivity: now.Add(-30 * time.Second),
			expected:     30 * time.Second,
		},
		{
			name:         "Activity long ago",
			lastActivity: now.Add(-2 * time.Hour),
			expected:     2 * time.Hour,
		},
		{
			name:         "Activity right now",
			lastActivity: now,
			expected:     0,
		},
		{
			name:         "Activity in the future clamps to zero",
			lastActivity: now.Add(time.Minute),
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewActivityTracker()
			tracker.now = func() time.Time { return now }
			tracker.UpdateActivityTime(tt.lastActivity)

			idle, err := tracker.IdleTime()
			if err != nil {
				t.Fatalf("IdleTime returned unexpected error: %v", err)
			}

			if idle != tt.expected {
				t.Errorf("IdleTime = %v, want %v", idle, tt.expected)
			}
		})
	}
}

func TestActivityTracker_UpdateActivity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewActivityTracker()
	tracker.now = func() time.Time { return now }
	tracker.UpdateActivityTime(now.Add(-time.Hour))

	now = now.Add(5 * time.Second)
	tracker.UpdateActivity()

	if !tracker.LastActivity().Equal(now) {
		t.Errorf("LastActivity = %v, want %v", tracker.LastActivity(), now)
	}

	idle, _ := tracker.IdleTime()
	if idle != 0 {
		t.Errorf("IdleTime after UpdateActivity = %v, want 0", idle)
	}
}

func TestActivityTracker_UpdateActivityTime(t *testing.T) {
	tracker := NewActivityTracker()

	pastTime := time.Now().Add(-1 * time.Hour)
	tracker.UpdateActivityTime(pastTime)

	if result := tracker.LastActivity(); !result.Equal(pastTime) {
		t.Errorf("UpdateActivityTime did not set correct time: got %v, want %v", result, pastTime)
	}

	futureTime := time.Now().Add(1 * time.Hour)
	tracker.UpdateActivityTime(futureTime)

	if result := tracker.LastActivity(); !result.Equal(futureTime) {
		t.Errorf("UpdateActivityTime did not set correct time: got %v, want %v", result, futureTime)
	}
}

func TestActivityTracker_ConcurrentAccess(t *testing.T) {
	tracker := NewActivityTracker()

	numReaders := 10
	numWriters := 5
	iterations := 100

	var wg sync.WaitGroup

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if _, err := tracker.IdleTime(); err != nil {
					t.Errorf("IdleTime error: %v", err)
				}
				_ = tracker.LastActivity()
			}
		}()
	}

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if j%2 == 0 {
					tracker.UpdateActivity()
				} else {
					tracker.UpdateActivityTime(time.Now().Add(time.Duration(id) * time.Second))
				}
			}
		}(i)
	}

	done := make(chan bool)
	go func() {
		wg.Wait()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock")
	}
}
