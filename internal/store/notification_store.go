package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const notificationColumns = "id, recipient_id, sender_id, type, title, message, link, " +
	"reference_type, reference_id, read, read_at, dismissed, created_at"

// CreateNotifications bulk-inserts notification rows in one transaction.
// Generates UUIDs for rows without an ID.
func (s *SQLStore) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, s.rebind(`
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title,
			n.Message, n.Link, n.ReferenceType, n.ReferenceID,
			boolToInt(n.Read), utcPtr(n.ReadAt), boolToInt(n.Dismissed),
			n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting notification for %s: %w", n.RecipientID, err)
		}
	}

	return tx.Commit()
}

// ListNotifications retrieves up to limit non-dismissed notifications for a
// recipient, newest first.
func (s *SQLStore) ListNotifications(
	ctx context.Context,
	recipientID string,
	limit int,
) ([]model.Notification, error) {
	query := "SELECT " + notificationColumns + ` FROM notifications
		WHERE recipient_id = ? AND dismissed = 0
		ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.rebind(query), recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// GetNotification retrieves a single notification by ID.
func (s *SQLStore) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	row := s.db.QueryRowxContext(ctx, s.rebind(
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ?"), id)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}
	return &n, nil
}

// RecentRecipientsWithLink returns the subset of recipientIDs that already
// have a non-dismissed notification for the given link created after since.
// This backs the dispatcher's deduplication window.
func (s *SQLStore) RecentRecipientsWithLink(
	ctx context.Context,
	recipientIDs []string,
	link string,
	since time.Time,
) (map[string]bool, error) {
	if len(recipientIDs) == 0 {
		return map[string]bool{}, nil
	}

	placeholders := make([]string, len(recipientIDs))
	args := make([]interface{}, 0, len(recipientIDs)+2)
	args = append(args, link, since.UTC())
	for i, id := range recipientIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := `SELECT DISTINCT recipient_id FROM notifications
		WHERE link = ? AND dismissed = 0 AND created_at > ?
		AND recipient_id IN (` + strings.Join(placeholders, ", ") + `)`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying recent notifications for %s: %w", link, err)
	}

	recent := make(map[string]bool, len(ids))
	for _, id := range ids {
		recent[id] = true
	}
	return recent, nil
}

// HasNotification reports whether the recipient has ever received a
// notification of the given type for the given reference. Backs the
// once-per-tier reminder guarantee; deliberately not time-windowed.
func (s *SQLStore) HasNotification(
	ctx context.Context,
	recipientID string,
	typ model.NotificationType,
	referenceID string,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.rebind(`
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = ? AND type = ? AND reference_id = ?`),
		recipientID, string(typ), referenceID,
	)
	if err != nil {
		return false, fmt.Errorf("checking %s notification for task %s: %w", typ, referenceID, err)
	}
	return count > 0, nil
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLStore) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notifications SET read = 1, read_at = ? WHERE id = ?"),
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification for a recipient
// as read.
func (s *SQLStore) MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notifications SET read = 1, read_at = ? WHERE recipient_id = ? AND read = 0"),
		at.UTC(), recipientID,
	)
	if err != nil {
		return fmt.Errorf("marking all notifications read for %s: %w", recipientID, err)
	}
	return nil
}

// DismissAllNotifications dismisses every notification for a recipient.
// Rows are kept; dismissal only removes them from the inbox.
func (s *SQLStore) DismissAllNotifications(ctx context.Context, recipientID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notifications SET dismissed = 1 WHERE recipient_id = ? AND dismissed = 0"),
		recipientID,
	)
	if err != nil {
		return fmt.Errorf("dismissing notifications for %s: %w", recipientID, err)
	}
	return nil
}

// scanNotification scans a notification row.
func scanNotification(row interface{ Scan(dest ...interface{}) error }) (model.Notification, error) {
	var (
		n            model.Notification
		typ          string
		readInt      int
		dismissedInt int
		readAt       *time.Time
	)

	err := row.Scan(
		&n.ID, &n.RecipientID, &n.SenderID, &typ, &n.Title, &n.Message,
		&n.Link, &n.ReferenceType, &n.ReferenceID,
		&readInt, &readAt, &dismissedInt, &n.CreatedAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Type = model.NotificationType(typ)
	n.Read = readInt != 0
	n.Dismissed = dismissedInt != 0
	n.ReadAt = readAt
	return n, nil
}
