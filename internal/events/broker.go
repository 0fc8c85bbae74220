// Path: internal/events/broker.go
package events

import "sync"

// Topics published inside the process.
const (
	// TopicFavoritesChanged carries the favorites snapshot after a toggle.
	TopicFavoritesChanged = "favorites:changed"
	// TopicCatalogRefreshed carries the number of entries in the new catalog.
	TopicCatalogRefreshed = "catalog:refreshed"
	// TopicThemeChanged carries the new dark-mode flag.
	TopicThemeChanged = "theme:changed"
)

// Event represents a message passed through the broker.
type Event struct {
	Topic string
	Data  any
}

// Broker implements a simple in-memory pub/sub system.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe creates a new subscription to a topic.
// The returned cancel function removes the subscription and closes the channel.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 4)
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.unsubscribe(topic, ch) })
	}
	return ch, cancel
}

func (b *Broker) unsubscribe(topic string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, c := range subs {
		if c == ch {
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
}

// Publish sends an event to all subscribers of a topic.
// A nil broker drops everything.
func (b *Broker) Publish(topic string, data any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{Topic: topic, Data: data}
	for _, ch := range b.subscribers[topic] {
		// Non-blocking send; a slow subscriber misses the event.
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports how many subscriptions a topic has.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}
