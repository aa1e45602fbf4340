package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisFeedRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, err := NewRedisFeed(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisFeed: %v", err)
	}
	defer f.Close()

	events, err := f.Subscribe(ctx, NotificationTopic("u1"))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := Event{Table: "notifications", Op: OpInsert, RecordID: "n1", At: time.Now().UTC().Truncate(time.Second)}
	if err := f.Publish(ctx, NotificationTopic("u1"), want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-events:
		if got.Table != want.Table || got.Op != want.Op || got.RecordID != want.RecordID {
			t.Errorf("received %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisFeedTopicIsolation(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, err := NewRedisFeed(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisFeed: %v", err)
	}
	defer f.Close()

	u1, err := f.Subscribe(ctx, NotificationTopic("u1"))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := f.Publish(ctx, NotificationTopic("u2"), Event{Op: OpInsert, RecordID: "n1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case ev := <-u1:
		t.Errorf("u1 received event for u2's topic: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPollFeedEmitsRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewPollFeed(20 * time.Millisecond)
	events, err := f.Subscribe(ctx, TaskTopic)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Op != OpRefresh {
			t.Errorf("Op = %q, want %q", ev.Op, OpRefresh)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh event")
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	events, err := NopFeed{}.Subscribe(ctx, TaskTopic)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("received unexpected event")
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close on cancel")
	}
}
