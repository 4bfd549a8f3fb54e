package realtime

import (
	"sync"
	"sync/atomic"
)

// Hub routes messages to the subscriptions joined to their topic. It is
// local to one process.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Subscription]struct{}
	bufSize int
	dropped atomic.Int64
}

func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		topics:  make(map[string]map[*Subscription]struct{}),
		bufSize: bufSize,
	}
}

// Subscription is one consumer's view of the hub, usually one WebSocket
// connection. Messages for every joined topic arrive on C().
type Subscription struct {
	hub    *Hub
	ch     chan Message
	joined map[string]struct{}
	closed bool
}

func (h *Hub) Subscribe() *Subscription {
	return &Subscription{
		hub:    h,
		ch:     make(chan Message, h.bufSize),
		joined: make(map[string]struct{}),
	}
}

func (s *Subscription) C() <-chan Message { return s.ch }

// Join adds the subscription to topic. Joining twice is a no-op.
func (s *Subscription) Join(topic string) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	s.joined[topic] = struct{}{}
}

func (s *Subscription) Leave(topic string) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(s, topic)
}

// Joined reports whether the subscription currently receives topic
func (s *Subscription) Joined(topic string) bool {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	_, ok := s.joined[topic]
	return ok
}

// Close leaves every topic and closes C()
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	for topic := range s.joined {
		h.remove(s, topic)
	}
	s.closed = true
	close(s.ch)
}

// remove must be called with h.mu held
func (h *Hub) remove(s *Subscription, topic string) {
	delete(s.joined, topic)
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Deliver hands msg to every subscriber of its topic without blocking.
// Subscribers whose buffer is full miss the message. It returns the
// number of subscribers that received it.
func (h *Hub) Deliver(msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.topics[msg.Topic] {
		select {
		case s.ch <- msg:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped counts messages lost to full subscriber buffers
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Subscribers returns the number of subscriptions joined to topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
