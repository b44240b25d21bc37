package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(TopicSystem, "", func(e Event) { got = append(got, "a:"+string(e.Type)) })
	bus.Subscribe(TopicSystem, "", func(e Event) { got = append(got, "b:"+string(e.Type)) })

	now := time.Now()
	bus.Publish(NewSessionChanged(SessionChangeLock, now))
	bus.Publish(NewIdleStateChanged(IdleStateChanged{IsIdle: true}, now))

	assert.Equal(t, []string{
		"a:session-changed",
		"b:session-changed",
		"a:idle-state-changed",
		"b:idle-state-changed",
	}, got)
}

func TestBus_SubscribeFiltersByType(t *testing.T) {
	bus := NewBus()
	var ends []SessionEndReason

	bus.Subscribe(TopicSystem, TypeSessionEnd, func(e Event) {
		p, ok := e.Payload.(SessionEnd)
		require.True(t, ok)
		ends = append(ends, p.Reason)
	})

	now := time.Now()
	bus.Publish(NewSessionChanged(SessionChangeUnlock, now))
	bus.Publish(NewSessionEnd(SessionEndLogoff, now))
	bus.Publish(Event{Topic: "other", Type: TypeSessionEnd, Payload: SessionEnd{Reason: SessionEndUnknown}})

	assert.Equal(t, []SessionEndReason{SessionEndLogoff}, ends)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0

	unsubscribe := bus.Subscribe(TopicSystem, "", func(Event) { calls++ })
	require.Equal(t, 1, bus.Len())

	bus.Publish(NewSessionEnd(SessionEndLogoff, time.Now()))
	unsubscribe()
	unsubscribe()
	bus.Publish(NewSessionEnd(SessionEndLogoff, time.Now()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_SubscriberAddedDuringPublishMissesCurrentEvent(t *testing.T) {
	bus := NewBus()
	late := 0

	bus.Subscribe(TopicSystem, "", func(Event) {
		bus.Subscribe(TopicSystem, "", func(Event) { late++ })
	})

	bus.Publish(NewSessionEnd(SessionEndUnknown, time.Now()))
	assert.Equal(t, 0, late)

	bus.Publish(NewSessionEnd(SessionEndUnknown, time.Now()))
	assert.Equal(t, 1, late)
}

func TestBus_NilHandler(t *testing.T) {
	bus := NewBus()
	unsubscribe := bus.Subscribe(TopicSystem, "", nil)
	unsubscribe()
	assert.Equal(t, 0, bus.Len())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("session-end")
	require.NoError(t, err)
	assert.Equal(t, TypeSessionEnd, typ)

	_, err = ParseType("idle")
	assert.Error(t, err)
}

func TestEvent_String(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "idle-state-changed: idle for 3s",
		NewIdleStateChanged(IdleStateChanged{IsIdle: true, ElapsedTime: 3 * time.Second}, now).String())
	assert.Equal(t, "idle-state-changed: active after 1m0s idle",
		NewIdleStateChanged(IdleStateChanged{ElapsedTime: time.Minute}, now).String())
	assert.Equal(t, "idle-state-changed: still idle for 2m0s",
		NewIdleStateChanged(IdleStateChanged{IsIdle: true, Heartbeat: true, ElapsedTime: 2 * time.Minute}, now).String())
	assert.Equal(t, "session-end: logoff", NewSessionEnd(SessionEndLogoff, now).String())
}
