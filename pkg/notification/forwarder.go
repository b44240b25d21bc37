package notification

import (
	"fmt"
	"sync"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/interfaces"
	"github.com/rs/zerolog"
)

// DefaultQueueSize bounds the notifications waiting to be sent.
const DefaultQueueSize = 32

// ForwarderConfig selects which events become notifications.
type ForwarderConfig struct {
	// Types lists the forwarded event types. Empty forwards nothing.
	Types []events.Type
	// Heartbeats also forwards periodic idle re-emissions.
	Heartbeats bool
	// QueueSize bounds pending sends; zero means DefaultQueueSize.
	QueueSize int
}

// Forwarder subscribes to the event bus and sends selected events through a
// Notifier. Sends run on the forwarder's own goroutine so a slow notifier
// never stalls event delivery; when the queue is full the event is dropped.
type Forwarder struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	types       map[events.Type]bool
	heartbeats  bool
	log         zerolog.Logger

	queue chan Notification
	done  chan struct{}
	once  sync.Once
	mu    sync.RWMutex
	stop  bool
}

// NewForwarder creates a forwarder and starts its send goroutine. rateLimiter
// may be nil.
func NewForwarder(cfg ForwarderConfig, notifier Notifier, rateLimiter interfaces.RateLimiter, log zerolog.Logger) *Forwarder {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	types := make(map[events.Type]bool, len(cfg.Types))
	for _, t := range cfg.Types {
		types[t] = true
	}

	f := &Forwarder{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		types:       types,
		heartbeats:  cfg.Heartbeats,
		log:         log.With().Str("component", "notification").Logger(),
		queue:       make(chan Notification, size),
		done:        make(chan struct{}),
	}
	go f.run()
	return f
}

// Attach subscribes the forwarder to every system event on bus.
func (f *Forwarder) Attach(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(events.TopicSystem, "", f.Handle)
}

// Wants reports whether e would be forwarded.
func (f *Forwarder) Wants(e events.Event) bool {
	if !f.types[e.Type] {
		return false
	}
	if p, ok := e.IdleState(); ok && p.Heartbeat {
		return f.heartbeats
	}
	return true
}

// Handle is the bus handler.
func (f *Forwarder) Handle(e events.Event) {
	if !f.Wants(e) {
		return
	}

	if f.rateLimiter != nil && !f.rateLimiter.Allow() {
		f.log.Debug().Str("event", string(e.Type)).Msg("notification rate limited")
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.stop {
		return
	}

	select {
	case f.queue <- Format(e):
	default:
		f.log.Warn().Str("event", string(e.Type)).Msg("notification queue full, dropping")
	}
}

// Close stops accepting events, sends whatever is queued and waits for the
// send goroutine to exit.
func (f *Forwarder) Close() error {
	f.once.Do(func() {
		f.mu.Lock()
		f.stop = true
		close(f.queue)
		f.mu.Unlock()
	})
	<-f.done
	return nil
}

func (f *Forwarder) run() {
	defer close(f.done)
	for n := range f.queue {
		if err := f.notifier.Send(n); err != nil {
			// Best effort: a failed notification is logged and forgotten.
			f.log.Warn().Err(err).Str("title", n.Title).Msg("failed to send notification")
		}
	}
}

// Format renders an event as a notification.
func Format(e events.Event) Notification {
	n := Notification{
		Title:    "Presence",
		Message:  e.String(),
		Time:     e.At,
		Priority: PriorityDefault,
	}

	switch p := e.Payload.(type) {
	case events.IdleStateChanged:
		switch {
		case p.Heartbeat:
			n.Title = "Still away"
			n.Message = fmt.Sprintf("Idle for %s", p.ElapsedTime)
			n.Tags = []string{"hourglass"}
			n.Priority = PriorityLow
		case p.IsIdle:
			n.Title = "Away"
			n.Message = fmt.Sprintf("Idle for %s", p.ElapsedTime)
			n.Tags = []string{"zzz"}
		default:
			n.Title = "Back"
			n.Message = fmt.Sprintf("Active again after %s idle", p.ElapsedTime)
			n.Tags = []string{"wave"}
		}
	case events.SessionChanged:
		n.Title = "Session changed"
		n.Message = sessionChangeMessage(p.Reason)
		n.Tags = []string{"computer"}
	case events.SessionEnd:
		n.Title = "Session ending"
		n.Message = sessionEndMessage(p.Reason)
		n.Tags = []string{"warning"}
		n.Priority = PriorityHigh
	}
	return n
}

func sessionChangeMessage(r events.SessionChangeReason) string {
	switch r {
	case events.SessionChangeLock:
		return "Session locked"
	case events.SessionChangeUnlock:
		return "Session unlocked"
	case events.SessionChangeRemoteConnect:
		return "Remote session connected"
	case events.SessionChangeRemoteDisconnect:
		return "Remote session disconnected"
	default:
		return "Session changed for an unknown reason"
	}
}

func sessionEndMessage(r events.SessionEndReason) string {
	switch r {
	case events.SessionEndLogoff:
		return "User is logging off"
	case events.SessionEndRestartOrShutdown:
		return "System is restarting or shutting down"
	default:
		return "Session is ending for an unknown reason"
	}
}
