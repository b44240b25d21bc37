package timer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// DefaultQueueSize is the task queue depth used when none is configured.
const DefaultQueueSize = 64

// Loop is a single-threaded event loop. Every task posted to it and every
// timer scheduled on it runs on the goroutine that called Run.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given task queue depth.
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run executes queued tasks until ctx is cancelled. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and fails once the loop has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Every schedules fn on the loop every interval. A tick that finds the queue
// full is dropped; the next tick observes the current state instead.
func (l *Loop) Every(interval time.Duration, fn func()) Handle {
	task := &loopTask{
		stop: make(chan struct{}),
	}
	run := func() {
		if task.cancelled() {
			return
		}
		fn()
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				select {
				case l.tasks <- run:
				default:
				}
			}
		}
	}()

	return task
}

type loopTask struct {
	mu   sync.Mutex
	stop chan struct{}
	gone bool
}

func (t *loopTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gone {
		return
	}
	t.gone = true
	close(t.stop)
}

func (t *loopTask) cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gone
}
