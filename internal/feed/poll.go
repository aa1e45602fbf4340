package feed

import (
	"context"
	"time"
)

// PollFeed is the fallback when no push channel is configured: every
// subscription gets a synthetic refresh event on a fixed interval and the
// subscriber refetches. Publish is a no-op since there is nobody to push
// to.
type PollFeed struct {
	interval time.Duration
}

// NewPollFeed creates a polling feed ticking at the given interval.
func NewPollFeed(interval time.Duration) *PollFeed {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PollFeed{interval: interval}
}

func (f *PollFeed) Publish(ctx context.Context, topic string, ev Event) error {
	return nil
}

func (f *PollFeed) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	events := make(chan Event, 1)
	go func() {
		defer close(events)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case events <- Event{Op: OpRefresh, At: now}:
				default:
					// Subscriber is behind; it will refetch on the
					// next tick anyway.
				}
			}
		}
	}()
	return events, nil
}

func (f *PollFeed) Close() error {
	return nil
}

// NopFeed delivers nothing. Used in tests and when a component opts out
// of live updates entirely.
type NopFeed struct{}

func (NopFeed) Publish(ctx context.Context, topic string, ev Event) error {
	return nil
}

func (NopFeed) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	events := make(chan Event)
	go func() {
		<-ctx.Done()
		close(events)
	}()
	return events, nil
}

func (NopFeed) Close() error {
	return nil
}
