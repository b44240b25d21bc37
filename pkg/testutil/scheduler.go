package testutil

import (
	"sort"
	"time"

	"github.com/Veraticus/presenced/pkg/timer"
)

// ManualScheduler is a deterministic timer.Scheduler driven by Advance. It
// doubles as an interfaces.Clock whose tick count is the virtual time elapsed
// since the epoch passed to NewManualScheduler.
type ManualScheduler struct {
	epoch  time.Time
	now    time.Time
	nextID int
	tasks  []*manualTask
}

type manualTask struct {
	id       int
	interval time.Duration
	due      time.Time
	fn       func()
	sched    *ManualScheduler
	gone     bool
}

// NewManualScheduler creates a scheduler whose virtual clock starts at epoch.
// Tick counts start at offset so back-dated timestamps stay positive.
func NewManualScheduler(epoch time.Time, offset time.Duration) *ManualScheduler {
	return &ManualScheduler{
		epoch: epoch.Add(-offset),
		now:   epoch,
	}
}

// Every implements timer.Scheduler.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) timer.Handle {
	s.nextID++
	task := &manualTask{
		id:       s.nextID,
		interval: interval,
		due:      s.now.Add(interval),
		fn:       fn,
		sched:    s,
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Now implements timer.Scheduler.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// TickCount implements interfaces.Clock.
func (s *ManualScheduler) TickCount() time.Duration {
	return s.now.Sub(s.epoch)
}

// Pending returns the number of armed tasks.
func (s *ManualScheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves virtual time forward by d, running every task that comes due
// in deadline order. Tasks sharing a deadline run in scheduling order.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		task := s.nextDue(target)
		if task == nil {
			break
		}
		s.now = task.due
		task.due = task.due.Add(task.interval)
		task.fn()
	}
	s.now = target
}

func (s *ManualScheduler) nextDue(target time.Time) *manualTask {
	var due []*manualTask
	for _, task := range s.tasks {
		if !task.due.After(target) {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (t *manualTask) Cancel() {
	if t.gone {
		return
	}
	t.gone = true
	tasks := t.sched.tasks[:0]
	for _, other := range t.sched.tasks {
		if other != t {
			tasks = append(tasks, other)
		}
	}
	t.sched.tasks = tasks
}
