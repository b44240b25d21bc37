package events

import "sync"

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Publisher is the outward channel the tracker emits on.
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	id    uint64
	topic Topic
	typ   Type
	fn    Handler
}

// Bus delivers events synchronously and in order to every subscriber
// registered at the time of emission.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events on topic. An empty typ matches every type
// on the topic. The returned function removes the subscription and is safe to
// call more than once.
func (b *Bus) Subscribe(topic Topic, typ Type, fn Handler) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, typ: typ, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber in subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.topic != e.Topic {
			continue
		}
		if s.typ != "" && s.typ != e.Type {
			continue
		}
		s.fn(e)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
