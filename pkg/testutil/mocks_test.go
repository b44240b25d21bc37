package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/notification"
)

func TestMockNotifier(t *testing.T) {
	t.Run("records sends", func(t *testing.T) {
		mock := NewMockNotifier()

		for _, title := range []string{"Away", "Back"} {
			if err := mock.Send(notification.Notification{Title: title}); err != nil {
				t.Fatalf("Send() error = %v, want nil", err)
			}
		}

		if got := mock.Titles(); len(got) != 2 || got[0] != "Away" || got[1] != "Back" {
			t.Errorf("Titles() = %v, want [Away Back]", got)
		}
		if mock.Attempts() != 2 {
			t.Errorf("Attempts() = %d, want 2", mock.Attempts())
		}
	})

	t.Run("queued failures are returned in order", func(t *testing.T) {
		mock := NewMockNotifier()
		first, second := errors.New("first"), errors.New("second")
		mock.FailNext(first, second)

		if err := mock.Send(notification.Notification{Title: "a"}); err != first {
			t.Errorf("Send() error = %v, want %v", err, first)
		}
		if err := mock.Send(notification.Notification{Title: "b"}); err != second {
			t.Errorf("Send() error = %v, want %v", err, second)
		}
		if err := mock.Send(notification.Notification{Title: "c"}); err != nil {
			t.Errorf("Send() error = %v, want nil once failures are used up", err)
		}

		if len(mock.Sent()) != 1 || mock.Sent()[0].Title != "c" {
			t.Errorf("Sent() = %v, want only c", mock.Sent())
		}
		if mock.Attempts() != 3 {
			t.Errorf("Attempts() = %d, want 3", mock.Attempts())
		}
	})
}

func TestManualScheduler(t *testing.T) {
	t.Run("fires in deadline order", func(t *testing.T) {
		s := NewManualScheduler(time.Unix(0, 0), 0)
		var order []string

		s.Every(2*time.Second, func() { order = append(order, "slow") })
		s.Every(time.Second, func() { order = append(order, "fast") })

		s.Advance(4 * time.Second)

		want := []string{"fast", "slow", "fast", "fast", "slow", "fast"}
		if len(order) != len(want) {
			t.Fatalf("fired %v, want %v", order, want)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("fired %v, want %v", order, want)
			}
		}
	})

	t.Run("cancel stops a task", func(t *testing.T) {
		s := NewManualScheduler(time.Unix(0, 0), 0)
		calls := 0

		h := s.Every(time.Second, func() { calls++ })
		s.Advance(2 * time.Second)
		h.Cancel()
		h.Cancel()
		s.Advance(5 * time.Second)

		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
		if s.Pending() != 0 {
			t.Errorf("Pending() = %d, want 0", s.Pending())
		}
	})

	t.Run("tick count includes offset", func(t *testing.T) {
		s := NewManualScheduler(time.Unix(100, 0), time.Hour)
		s.Advance(3 * time.Second)

		if got := s.TickCount(); got != time.Hour+3*time.Second {
			t.Errorf("TickCount() = %v, want %v", got, time.Hour+3*time.Second)
		}
		if !s.Now().Equal(time.Unix(103, 0)) {
			t.Errorf("Now() = %v, want %v", s.Now(), time.Unix(103, 0))
		}
	})
}

func TestMockProbe(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0), time.Hour)
	probe := NewMockProbe(s)

	if probe.IsIdle() || probe.ElapsedTime() != 0 {
		t.Error("new probe should report active with zero elapsed time")
	}

	probe.SetIdle(true, 10*time.Second)
	s.Advance(5 * time.Second)

	if !probe.IsIdle() {
		t.Error("IsIdle() = false, want true")
	}
	if got := probe.ElapsedTime(); got != 15*time.Second {
		t.Errorf("ElapsedTime() = %v, want 15s", got)
	}

	probe.SetElapsed(time.Minute)
	if got := probe.ElapsedTime(); got != time.Minute {
		t.Errorf("ElapsedTime() = %v, want 1m", got)
	}
	if probe.GetIsIdleCallCount() != 2 {
		t.Errorf("GetIsIdleCallCount() = %d, want 2", probe.GetIsIdleCallCount())
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	now := time.Now()

	r.Publish(events.NewSessionChanged(events.SessionChangeLock, now))
	r.Publish(events.NewIdleStateChanged(events.IdleStateChanged{IsIdle: true}, now))

	if len(r.Events()) != 2 {
		t.Fatalf("Events() returned %d, want 2", len(r.Events()))
	}
	if states := r.IdleStates(); len(states) != 1 || !states[0].IsIdle {
		t.Errorf("IdleStates() = %v, want one idle state", states)
	}

	r.Reset()
	if len(r.Events()) != 0 {
		t.Error("Reset() did not clear events")
	}
}

func TestMockRateLimiter(t *testing.T) {
	tests := []struct {
		name      string
		decisions []bool
		want      []bool
	}{
		{name: "empty script allows", decisions: nil, want: []bool{true, true}},
		{name: "last decision repeats", decisions: []bool{true, false}, want: []bool{true, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockRateLimiter(tt.decisions...)
			for i, want := range tt.want {
				if got := mock.Allow(); got != want {
					t.Errorf("Allow() #%d = %v, want %v", i, got, want)
				}
			}
		})
	}

	t.Run("reset rewinds", func(t *testing.T) {
		mock := NewMockRateLimiter(true, false)
		mock.Allow()
		mock.Allow()
		mock.Reset()

		if !mock.Allow() {
			t.Error("Allow() after Reset = false, want true")
		}
		allows, resets := mock.Calls()
		if allows != 3 || resets != 1 {
			t.Errorf("Calls() = %d, %d, want 3, 1", allows, resets)
		}
	})
}
