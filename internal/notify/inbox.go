package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/store"
)

// InboxLimit is how many notifications the inbox holds locally.
const InboxLimit = 50

// Inbox is the per-user read path: a locally held window of the newest
// non-dismissed notifications. Mutations write to the store first and
// update local state only on success, so a failed call leaves the inbox
// exactly as it was.
type Inbox struct {
	store       store.Store
	recipientID string
	items       []model.Notification
}

// NewInbox creates an empty inbox for the given recipient. Call Load to
// populate it.
func NewInbox(st store.Store, recipientID string) *Inbox {
	return &Inbox{store: st, recipientID: recipientID}
}

// Load replaces the local window with the newest notifications from the
// store.
func (in *Inbox) Load(ctx context.Context) error {
	items, err := in.store.ListNotifications(ctx, in.recipientID, InboxLimit)
	if err != nil {
		return fmt.Errorf("loading inbox: %w", err)
	}
	in.items = items
	return nil
}

// Items returns the locally held notifications, newest first.
func (in *Inbox) Items() []model.Notification {
	return in.items
}

// UnreadCount derives the unread total from the held items. It is never
// maintained as a separate counter, so a refetch cannot make it drift.
func (in *Inbox) UnreadCount() int {
	count := 0
	for _, n := range in.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Apply folds a change-feed event into the local window. Inserts are
// fetched by id and prepended unless already present (push may race the
// insert's own response); anything else falls back to a reload.
func (in *Inbox) Apply(ctx context.Context, ev feed.Event) error {
	if ev.Op != feed.OpInsert || ev.RecordID == "" {
		return in.Load(ctx)
	}

	for _, n := range in.items {
		if n.ID == ev.RecordID {
			return nil
		}
	}

	n, err := in.store.GetNotification(ctx, ev.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching pushed notification: %w", err)
	}
	if n.RecipientID != in.recipientID || n.Dismissed {
		return nil
	}

	in.items = append([]model.Notification{*n}, in.items...)
	if len(in.items) > InboxLimit {
		in.items = in.items[:InboxLimit]
	}
	return nil
}

// MarkRead marks one notification as read, server first.
func (in *Inbox) MarkRead(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if err := in.store.MarkNotificationRead(ctx, id, now); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	for i := range in.items {
		if in.items[i].ID == id {
			in.items[i].Read = true
			in.items[i].ReadAt = &now
			break
		}
	}
	return nil
}

// MarkAllRead marks every held notification as read, server first.
func (in *Inbox) MarkAllRead(ctx context.Context) error {
	now := time.Now().UTC()
	if err := in.store.MarkAllNotificationsRead(ctx, in.recipientID, now); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	for i := range in.items {
		if !in.items[i].Read {
			in.items[i].Read = true
			in.items[i].ReadAt = &now
		}
	}
	return nil
}

// ClearAll dismisses everything, server first. Rows are kept server-side;
// dismissal only empties the inbox.
func (in *Inbox) ClearAll(ctx context.Context) error {
	if err := in.store.DismissAllNotifications(ctx, in.recipientID); err != nil {
		return fmt.Errorf("clearing inbox: %w", err)
	}
	in.items = nil
	return nil
}
