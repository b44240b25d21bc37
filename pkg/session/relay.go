package session

import (
	"context"
	"sync"

	"github.com/Veraticus/presenced/pkg/events"
)

// Relay is a SignalSource driven by its owner. Hosts that already run the
// platform's message loop translate notifications themselves and push them
// through a Relay. Signals sent while the relay is stopped are dropped.
type Relay struct {
	mu      sync.Mutex
	handler Handler
}

// NewRelay creates a stopped relay.
func NewRelay() *Relay {
	return &Relay{}
}

// Start implements SignalSource.
func (r *Relay) Start(_ context.Context, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handler != nil {
		return ErrAlreadyStarted
	}
	r.handler = h
	return nil
}

// Stop implements SignalSource.
func (r *Relay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = nil
	return nil
}

func (r *Relay) current() Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handler
}

// Lock forwards a lock signal.
func (r *Relay) Lock() {
	if h := r.current(); h != nil {
		h.OnLock()
	}
}

// Unlock forwards an unlock signal.
func (r *Relay) Unlock() {
	if h := r.current(); h != nil {
		h.OnUnlock()
	}
}

// SessionEnd forwards a session-end signal.
func (r *Relay) SessionEnd(reason events.SessionEndReason) {
	if h := r.current(); h != nil {
		h.OnSessionEnd(reason)
	}
}

// SessionChanged forwards a session-change signal.
func (r *Relay) SessionChanged(reason events.SessionChangeReason) {
	if h := r.current(); h != nil {
		h.OnSessionChanged(reason)
	}
}
