package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-redis/redis/v8"
)

// LocalBroker delivers straight into the hub of this process. It is used
// when no Redis address is configured.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker { return &LocalBroker{hub: hub} }

func (b *LocalBroker) Publish(_ context.Context, msg Message) error {
	b.hub.Deliver(msg)
	return nil
}

func (b *LocalBroker) Ping(context.Context) error { return nil }

// RedisBroker publishes each message on a Redis channel named after its
// topic and feeds everything received on those channels into the local
// hub, so every API instance reaches its own WebSocket clients.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	prefix string
}

func NewRedisBroker(client *redis.Client, hub *Hub, prefix string) *RedisBroker {
	if prefix == "" {
		prefix = "traveldesk:"
	}
	return &RedisBroker{client: client, hub: hub, prefix: prefix}
}

func (b *RedisBroker) channel(topic string) string { return b.prefix + topic }

func (b *RedisBroker) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(msg.Topic), data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", msg.Topic, err)
	}
	return nil
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Start subscribes to every topic channel and returns once Redis has
// confirmed the subscription. Messages are then forwarded to the hub
// until ctx is cancelled. It must return before the HTTP server starts
// accepting connections, otherwise early events would be lost.
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	log.Printf("Realtime subscriber started (pattern=%s*)", b.prefix)

	go b.forward(ctx, pubsub)
	return nil
}

func (b *RedisBroker) forward(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Realtime subscriber stopped")
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.Printf("Warning: dropping undecodable realtime message: %v (channel=%s)", err, m.Channel)
				continue
			}
			if msg.Topic == "" {
				msg.Topic = strings.TrimPrefix(m.Channel, b.prefix)
			}
			b.hub.Deliver(msg)
		}
	}
}
