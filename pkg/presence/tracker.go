// Package presence turns polled idle samples and session signals into clean,
// non-duplicated presence events.
//
// A Tracker owns two timers. The poll timer samples the idle probe at a short
// interval and drives Active/Idle edges. The sustain timer runs exactly while
// the machine is idle and re-emits the idle state at a long interval. Lock and
// unlock signals override the poll path: locking suspends polling and starts
// an idle span, unlocking closes it and resumes polling.
//
// Every method must be called from the scheduler's control thread. Use a
// Dispatcher to deliver signals that originate on other goroutines.
package presence

import (
	"errors"
	"time"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/interfaces"
	"github.com/Veraticus/presenced/pkg/timer"
	"github.com/rs/zerolog"
)

var (
	ErrNoProbe     = errors.New("presence: idle probe is required")
	ErrNoClock     = errors.New("presence: clock is required")
	ErrNoScheduler = errors.New("presence: scheduler is required")
	ErrNoPublisher = errors.New("presence: event publisher is required")
)

const (
	// DefaultPollInterval is how often the idle probe is sampled.
	DefaultPollInterval = time.Second
	// SustainFactor relates the sustain interval to the poll interval.
	SustainFactor = 60
)

// Config holds the timer intervals.
type Config struct {
	PollInterval    time.Duration
	SustainInterval time.Duration
}

// Deps are the collaborators a Tracker cannot run without.
type Deps struct {
	Probe     interfaces.IdleProbe
	Clock     interfaces.Clock
	Scheduler timer.Scheduler
	Publisher events.Publisher
	Logger    zerolog.Logger
}

// State is a snapshot of the tracker's presence state.
type State struct {
	IsIdle         bool
	Locked         bool
	IdleStart      time.Duration
	IdleStartSet   bool
	IdleEnd        time.Duration
	IdleEndSet     bool
	Started        bool
	PollRunning    bool
	SustainRunning bool
}

// Tracker is the presence state machine.
type Tracker struct {
	probe interfaces.IdleProbe
	clock interfaces.Clock
	sched timer.Scheduler
	pub   events.Publisher
	log   zerolog.Logger

	poll    *timer.Timer
	sustain *timer.Timer

	isIdle       bool
	locked       bool
	idleStart    time.Duration
	idleStartSet bool
	idleEnd      time.Duration
	idleEndSet   bool
	started      bool
}

// New creates a stopped tracker. Zero intervals fall back to the defaults.
func New(cfg Config, deps Deps) (*Tracker, error) {
	switch {
	case deps.Probe == nil:
		return nil, ErrNoProbe
	case deps.Clock == nil:
		return nil, ErrNoClock
	case deps.Scheduler == nil:
		return nil, ErrNoScheduler
	case deps.Publisher == nil:
		return nil, ErrNoPublisher
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.SustainInterval <= 0 {
		cfg.SustainInterval = SustainFactor * cfg.PollInterval
	}

	t := &Tracker{
		probe: deps.Probe,
		clock: deps.Clock,
		sched: deps.Scheduler,
		pub:   deps.Publisher,
		log:   deps.Logger.With().Str("component", "presence").Logger(),
	}
	t.poll = timer.New("poll", deps.Scheduler, cfg.PollInterval, t.pollIdle)
	t.sustain = timer.New("sustain", deps.Scheduler, cfg.SustainInterval, t.heartbeat)
	return t, nil
}

// Start arms the timers the current state calls for: the poll timer unless
// the session is locked, the sustain timer while idle. Starting a started
// tracker is a no-op.
func (t *Tracker) Start() {
	if t.started {
		return
	}
	t.started = true
	if t.isIdle {
		t.sustain.Start()
	}
	if !t.locked {
		t.poll.Start()
	}
	t.log.Debug().
		Dur("poll_interval", t.poll.Interval()).
		Dur("sustain_interval", t.sustain.Interval()).
		Msg("presence tracker started")
}

// Stop disarms both timers. Presence state is kept so a later Start resumes
// from it.
func (t *Tracker) Stop() {
	if !t.started {
		return
	}
	t.started = false
	t.poll.Stop()
	t.sustain.Stop()
	t.log.Debug().Msg("presence tracker stopped")
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	return State{
		IsIdle:         t.isIdle,
		Locked:         t.locked,
		IdleStart:      t.idleStart,
		IdleStartSet:   t.idleStartSet,
		IdleEnd:        t.idleEnd,
		IdleEndSet:     t.idleEndSet,
		Started:        t.started,
		PollRunning:    t.poll.Running(),
		SustainRunning: t.sustain.Running(),
	}
}

// pollIdle evaluates at most one edge per tick.
func (t *Tracker) pollIdle() {
	idle := t.probe.IsIdle()
	elapsed := t.probe.ElapsedTime()
	now := t.clock.TickCount()

	switch {
	case idle && !t.sustain.Running():
		start := now - elapsed
		if start < 0 {
			start = 0
		}
		t.beginIdle(start, elapsed)
	case !idle && t.sustain.Running():
		t.endIdle(now)
	}
}

// heartbeat re-emits the idle state without touching idleStart.
func (t *Tracker) heartbeat() {
	if !t.isIdle {
		return
	}
	elapsed := t.clock.TickCount() - t.idleStart
	t.emitIdle(events.IdleStateChanged{IsIdle: true, ElapsedTime: elapsed, Heartbeat: true})
}

// HandleLock applies a lock or unlock signal.
func (t *Tracker) HandleLock(locked bool) {
	if !t.started {
		t.log.Info().Bool("locked", locked).Msg("ignoring lock signal while tracker is stopped")
		return
	}
	if locked {
		t.lock()
		return
	}
	t.unlock()
}

func (t *Tracker) lock() {
	t.locked = true
	t.poll.Stop()

	if t.sustain.Running() {
		t.log.Info().Msg("session locked while already idle")
		return
	}

	t.log.Info().Msg("session locked")
	t.beginIdle(t.clock.TickCount(), t.probe.ElapsedTime())
}

func (t *Tracker) unlock() {
	t.locked = false
	now := t.clock.TickCount()

	if !t.isIdle {
		// No open span: close a zero-length one at now.
		t.idleStart = now
		t.idleStartSet = true
	}

	t.log.Info().Msg("session unlocked")
	t.endIdle(now)
	t.poll.Start()
}

func (t *Tracker) beginIdle(start, elapsed time.Duration) {
	t.isIdle = true
	t.idleStart = start
	t.idleStartSet = true
	t.log.Debug().Dur("elapsed", elapsed).Msg("idle")
	t.emitIdle(events.IdleStateChanged{IsIdle: true, ElapsedTime: elapsed})
	t.sustain.Start()
}

func (t *Tracker) endIdle(now time.Duration) {
	t.sustain.Stop()
	t.isIdle = false
	t.idleEnd = now
	t.idleEndSet = true

	elapsed := t.idleEnd - t.idleStart
	if elapsed < 0 {
		elapsed = 0
	}
	t.log.Debug().Dur("elapsed", elapsed).Msg("active")
	t.emitIdle(events.IdleStateChanged{IsIdle: false, ElapsedTime: elapsed})
}

// HandleSessionEnd publishes a session-end event.
func (t *Tracker) HandleSessionEnd(reason events.SessionEndReason) {
	t.log.Info().Str("reason", string(reason)).Msg("session ending")
	t.pub.Publish(events.NewSessionEnd(reason, t.sched.Now()))
}

// HandleSessionChanged publishes a session-changed event and applies lock or
// unlock reasons after it.
func (t *Tracker) HandleSessionChanged(reason events.SessionChangeReason) {
	t.log.Info().Str("reason", string(reason)).Msg("session changed")
	t.pub.Publish(events.NewSessionChanged(reason, t.sched.Now()))

	switch reason {
	case events.SessionChangeLock:
		t.HandleLock(true)
	case events.SessionChangeUnlock:
		t.HandleLock(false)
	}
}

func (t *Tracker) emitIdle(p events.IdleStateChanged) {
	t.pub.Publish(events.NewIdleStateChanged(p, t.sched.Now()))
}
