package sse

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// TopicAll receives every event published through Broadcast.
const TopicAll = "*"

const subscriberBuffer = 16

// Event is one server-sent event. Data is JSON-encoded by the writer.
type Event struct {
	Topic string
	Event string
	Data  any
}

// Hub fans events out to stream subscribers. A topic is an employee id or
// TopicAll. Slow subscribers lose events instead of blocking publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	dropped     atomic.Int64
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns the event channel for topic and a function that
// unsubscribes and closes it. The function is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
			close(ch)
		})
	}
}

// Publish delivers event to the subscribers of topic without blocking.
func (h *Hub) Publish(topic string, event Event) {
	event.Topic = topic

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[topic] {
		select {
		case ch <- event:
		default:
			if n := h.dropped.Add(1); n%100 == 1 {
				slog.Debug("SSE subscriber buffer full, dropping event", "topic", topic, "event", event.Event, "dropped_total", n)
			}
		}
	}
}

// Broadcast publishes event on topic and on TopicAll.
func (h *Hub) Broadcast(topic string, event Event) {
	h.Publish(topic, event)
	h.Publish(TopicAll, event)
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Dropped returns how many events were discarded for full buffers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
