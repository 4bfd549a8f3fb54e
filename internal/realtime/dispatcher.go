package realtime

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Dispatcher decouples request handlers from the broker. Publish only
// enqueues; a single worker drains the queue into the broker. When the
// queue is full the message is dropped and counted.
type Dispatcher struct {
	broker  Broker
	queue   chan Message
	timeout time.Duration
	dropped atomic.Int64
}

func NewDispatcher(broker Broker, queueSize int, publishTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Second
	}
	return &Dispatcher{
		broker:  broker,
		queue:   make(chan Message, queueSize),
		timeout: publishTimeout,
	}
}

// Publish schedules payload for delivery on topic. It never blocks and
// never reports failure to the caller.
func (d *Dispatcher) Publish(topic, event string, payload any) {
	msg, err := NewMessage(topic, event, payload)
	if err != nil {
		log.Printf("Warning: failed to encode realtime event: %v (event=%s, topic=%s)", err, event, topic)
		return
	}
	select {
	case d.queue <- msg:
	default:
		n := d.dropped.Add(1)
		log.Printf("Warning: realtime queue full, dropping event (event=%s, topic=%s, dropped=%d)", event, topic, n)
	}
}

// Run drains the queue until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	log.Println("Starting realtime dispatcher...")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.send(ctx, msg)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.broker.Publish(pubCtx, msg); err != nil {
		log.Printf("Failed to publish realtime event: %v (event=%s, topic=%s)", err, msg.Event, msg.Topic)
	}
}

// Dropped counts messages rejected because the queue was full
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Pending is the number of queued messages not yet handed to the broker
func (d *Dispatcher) Pending() int { return len(d.queue) }
