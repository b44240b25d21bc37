package main

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/rs/zerolog"
)

// EventWriter prints every event on the bus as one JSON object per line.
type EventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	log zerolog.Logger
}

type eventRecord struct {
	Topic   events.Topic `json:"topic"`
	Type    events.Type  `json:"type"`
	At      time.Time    `json:"at"`
	Payload any          `json:"payload"`
}

// idleRecord renders durations in milliseconds rather than nanoseconds.
type idleRecord struct {
	IsIdle    bool   `json:"isIdle"`
	ElapsedMs int64  `json:"elapsedMs"`
	Elapsed   string `json:"elapsed"`
	Heartbeat bool   `json:"heartbeat,omitempty"`
}

// NewEventWriter creates a writer emitting to w.
func NewEventWriter(w io.Writer, log zerolog.Logger) *EventWriter {
	return &EventWriter{enc: json.NewEncoder(w), log: log}
}

// Attach subscribes the writer to every system event.
func (w *EventWriter) Attach(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(events.TopicSystem, "", w.Write)
}

// Write encodes e. Encoding failures are logged, never returned, because the
// bus has nowhere to report them.
func (w *EventWriter) Write(e events.Event) {
	rec := eventRecord{Topic: e.Topic, Type: e.Type, At: e.At, Payload: e.Payload}
	if p, ok := e.IdleState(); ok {
		rec.Payload = idleRecord{
			IsIdle:    p.IsIdle,
			ElapsedMs: p.ElapsedTime.Milliseconds(),
			Elapsed:   p.ElapsedTime.String(),
			Heartbeat: p.Heartbeat,
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(rec); err != nil {
		w.log.Warn().Err(err).Str("event", string(e.Type)).Msg("failed to write event")
	}
}
