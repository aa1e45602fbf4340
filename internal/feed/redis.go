package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisFeed delivers events over Redis pub/sub. Events are JSON on the
// wire; malformed payloads are dropped with a log line.
type RedisFeed struct {
	client *redis.Client
}

// NewRedisFeed connects to Redis at the given URL and verifies the
// connection with a ping.
func NewRedisFeed(ctx context.Context, redisURL string) (*RedisFeed, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisFeed{client: client}, nil
}

// Publish emits the event as JSON on the topic channel.
func (f *RedisFeed) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding feed event: %w", err)
	}
	if err := f.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription on the topic and decodes events
// until ctx is cancelled.
func (f *RedisFeed) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	sub := f.client.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("feed: dropping malformed event on %s: %v", topic, err)
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// Close shuts down the underlying Redis client.
func (f *RedisFeed) Close() error {
	return f.client.Close()
}
