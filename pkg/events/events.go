// Package events defines the presence events published to subscribers and the
// bus that delivers them.
package events

import (
	"fmt"
	"time"
)

// Topic groups related event types.
type Topic string

// TopicSystem carries every machine-level presence event.
const TopicSystem Topic = "system"

// Type identifies an event within a topic.
type Type string

const (
	TypeIdleStateChanged Type = "idle-state-changed"
	TypeSessionChanged   Type = "session-changed"
	TypeSessionEnd       Type = "session-end"
)

// Types lists every event type in the system topic.
var Types = []Type{TypeIdleStateChanged, TypeSessionChanged, TypeSessionEnd}

// ParseType validates a textual event type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// SessionEndReason is why the user session is ending.
type SessionEndReason string

const (
	SessionEndLogoff            SessionEndReason = "logoff"
	SessionEndRestartOrShutdown SessionEndReason = "restart-or-shutdown"
	SessionEndUnknown           SessionEndReason = "unknown"
)

// SessionChangeReason is why the user session changed.
type SessionChangeReason string

const (
	SessionChangeRemoteConnect    SessionChangeReason = "remote-connect"
	SessionChangeRemoteDisconnect SessionChangeReason = "remote-disconnect"
	SessionChangeLock             SessionChangeReason = "lock"
	SessionChangeUnlock           SessionChangeReason = "unlock"
	SessionChangeUnknown          SessionChangeReason = "unknown"
)

// IdleStateChanged is the payload of TypeIdleStateChanged.
// Heartbeat is set on periodic re-emissions while the machine stays idle.
type IdleStateChanged struct {
	IsIdle      bool          `json:"isIdle"`
	ElapsedTime time.Duration `json:"elapsedTime"`
	Heartbeat   bool          `json:"heartbeat,omitempty"`
}

// SessionChanged is the payload of TypeSessionChanged.
type SessionChanged struct {
	Reason SessionChangeReason `json:"reason"`
}

// SessionEnd is the payload of TypeSessionEnd.
type SessionEnd struct {
	Reason SessionEndReason `json:"reason"`
}

// Event is a single published presence event. Payload holds one of
// IdleStateChanged, SessionChanged or SessionEnd by value.
type Event struct {
	Topic   Topic     `json:"topic"`
	Type    Type      `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// NewIdleStateChanged builds an idle-state-changed event.
func NewIdleStateChanged(p IdleStateChanged, at time.Time) Event {
	return Event{Topic: TopicSystem, Type: TypeIdleStateChanged, Payload: p, At: at}
}

// NewSessionChanged builds a session-changed event.
func NewSessionChanged(reason SessionChangeReason, at time.Time) Event {
	return Event{Topic: TopicSystem, Type: TypeSessionChanged, Payload: SessionChanged{Reason: reason}, At: at}
}

// NewSessionEnd builds a session-end event.
func NewSessionEnd(reason SessionEndReason, at time.Time) Event {
	return Event{Topic: TopicSystem, Type: TypeSessionEnd, Payload: SessionEnd{Reason: reason}, At: at}
}

// IdleState returns the idle payload, if e carries one.
func (e Event) IdleState() (IdleStateChanged, bool) {
	p, ok := e.Payload.(IdleStateChanged)
	return p, ok
}

// String renders a short human-readable description of the event.
func (e Event) String() string {
	switch p := e.Payload.(type) {
	case IdleStateChanged:
		if p.Heartbeat {
			return fmt.Sprintf("%s: still idle for %s", e.Type, p.ElapsedTime)
		}
		if p.IsIdle {
			return fmt.Sprintf("%s: idle for %s", e.Type, p.ElapsedTime)
		}
		return fmt.Sprintf("%s: active after %s idle", e.Type, p.ElapsedTime)
	case SessionChanged:
		return fmt.Sprintf("%s: %s", e.Type, p.Reason)
	case SessionEnd:
		return fmt.Sprintf("%s: %s", e.Type, p.Reason)
	default:
		return string(e.Type)
	}
}
