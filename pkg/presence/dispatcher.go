package presence

import (
	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/session"
	"github.com/rs/zerolog"
)

// Poster runs functions on the tracker's control thread.
type Poster interface {
	Post(fn func()) error
}

// Dispatcher is a session.Handler that hands every signal to the tracker on
// its control thread, preserving arrival order.
type Dispatcher struct {
	tracker *Tracker
	post    Poster
	log     zerolog.Logger
}

var _ session.Handler = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher for t.
func NewDispatcher(t *Tracker, post Poster) *Dispatcher {
	return &Dispatcher{
		tracker: t,
		post:    post,
		log:     t.log,
	}
}

func (d *Dispatcher) dispatch(signal string, fn func()) {
	if err := d.post.Post(fn); err != nil {
		d.log.Warn().Err(err).Str("signal", signal).Msg("dropping session signal")
	}
}

// OnLock implements session.Handler.
func (d *Dispatcher) OnLock() {
	d.dispatch("lock", func() { d.tracker.HandleLock(true) })
}

// OnUnlock implements session.Handler.
func (d *Dispatcher) OnUnlock() {
	d.dispatch("unlock", func() { d.tracker.HandleLock(false) })
}

// OnSessionEnd implements session.Handler.
func (d *Dispatcher) OnSessionEnd(reason events.SessionEndReason) {
	d.dispatch("session-end", func() { d.tracker.HandleSessionEnd(reason) })
}

// OnSessionChanged implements session.Handler.
func (d *Dispatcher) OnSessionChanged(reason events.SessionChangeReason) {
	d.dispatch("session-changed", func() { d.tracker.HandleSessionChanged(reason) })
}
