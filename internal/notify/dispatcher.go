// Package notify creates and reads inbox notifications. Dispatch is
// best-effort and deduplicated; the inbox read path stays correct from
// fetching alone, with the change feed only accelerating delivery.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/store"
)

// DedupWindow is the lookback used to suppress a duplicate notification
// to the same recipient for the same deep link.
const DedupWindow = time.Hour

// Request describes one fan-out: who acted, who should hear about it,
// and where the notification should link to.
type Request struct {
	Type model.NotificationType

	// SenderID is empty for system-generated notifications such as
	// deadline reminders.
	SenderID   string
	SenderName string

	RecipientIDs []string

	// Content is the originating text; it is truncated for storage.
	Content string

	// Link is the application-relative deep link opened on click.
	Link string

	ReferenceType string
	ReferenceID   string
}

// Dispatcher fans notifications out to recipients.
type Dispatcher struct {
	store store.Store
	feed  feed.ChangeFeed
}

// NewDispatcher creates a dispatcher writing through the given store and
// publishing on the given change feed.
func NewDispatcher(st store.Store, f feed.ChangeFeed) *Dispatcher {
	return &Dispatcher{store: st, feed: f}
}

// Dispatch creates one notification per recipient, excluding the sender
// and any recipient already notified for the same link within the dedup
// window. A failed dedup lookup is logged and dispatch proceeds without
// it; a failed insert is returned to the caller. Delivery is best-effort
// throughout: callers must not fail their primary action on a Dispatch
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	recipients := make([]string, 0, len(req.RecipientIDs))
	seen := make(map[string]bool, len(req.RecipientIDs))
	for _, id := range req.RecipientIDs {
		if id == "" || id == req.SenderID || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return nil
	}

	recent, err := d.store.RecentRecipientsWithLink(ctx, recipients, req.Link, time.Now().Add(-DedupWindow))
	if err != nil {
		log.Printf("notify: dedup lookup failed, proceeding without it: %v", err)
		recent = nil
	}

	remaining := recipients[:0]
	for _, id := range recipients {
		if !recent[id] {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	var senderID *string
	if req.SenderID != "" {
		senderID = &req.SenderID
	}

	title := Title(req.Type, req.SenderName)
	message := TruncateMessage(req.Content)
	now := time.Now().UTC()

	rows := make([]model.Notification, 0, len(remaining))
	for _, id := range remaining {
		rows = append(rows, model.Notification{
			ID:            uuid.New().String(),
			RecipientID:   id,
			SenderID:      senderID,
			Type:          req.Type,
			Title:         title,
			Message:       message,
			Link:          req.Link,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
			CreatedAt:     now,
		})
	}

	if err := d.store.CreateNotifications(ctx, rows); err != nil {
		return fmt.Errorf("inserting notifications: %w", err)
	}

	for _, n := range rows {
		ev := feed.Event{Table: "notifications", Op: feed.OpInsert, RecordID: n.ID, At: now}
		if err := d.feed.Publish(ctx, feed.NotificationTopic(n.RecipientID), ev); err != nil {
			log.Printf("notify: publishing to %s failed: %v", n.RecipientID, err)
		}
	}

	return nil
}
