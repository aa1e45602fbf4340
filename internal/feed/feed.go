// Package feed provides the change-feed capability: a best-effort push
// channel over record changes. Core logic must stay correct from fetching
// alone; a feed only shortens the time until fresh data shows up.
package feed

import (
	"context"
	"time"
)

// Event operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"

	// OpRefresh is a synthetic event emitted by the polling feed; it
	// carries no record and asks the subscriber to refetch.
	OpRefresh = "refresh"
)

// Event describes a single record change on a topic.
type Event struct {
	Table    string    `json:"table"`
	Op       string    `json:"op"`
	RecordID string    `json:"record_id,omitempty"`
	At       time.Time `json:"at"`
}

// ChangeFeed is the push capability. Publish and Subscribe are both
// best-effort: a lost event is acceptable, a blocked caller is not.
type ChangeFeed interface {
	// Publish emits an event on a topic. Errors are for the caller to
	// log; delivery is not guaranteed.
	Publish(ctx context.Context, topic string, ev Event) error

	// Subscribe returns a channel of events for a topic. The channel
	// closes when ctx is cancelled or the feed is closed.
	Subscribe(ctx context.Context, topic string) (<-chan Event, error)

	Close() error
}

// NotificationTopic is the per-recipient topic new notifications are
// published on.
func NotificationTopic(recipientID string) string {
	return "notifications:" + recipientID
}

// TaskTopic is the shared topic for task changes.
const TaskTopic = "tasks"

// CommentTopic is the per-entity topic for comment thread changes.
func CommentTopic(entityType, entityID string) string {
	return "comments:" + entityType + ":" + entityID
}
