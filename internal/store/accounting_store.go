package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/model"
)

const orderColumns = "id, vendor, description, amount_cents, currency, status, due_date, invoice_url, created_by, created_at, updated_at"
const subscriptionColumns = "id, vendor, description, amount_cents, currency, billing_interval, active, renews_at, created_by, created_at, updated_at"

// CreateOrder inserts a new accounting order. Generates a UUID if ID is empty.
func (s *SQLStore) CreateOrder(ctx context.Context, o model.Order) error {
	if strings.TrimSpace(o.Vendor) == "" {
		return fmt.Errorf("order vendor must not be empty")
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = model.OrderStatusDraft
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.Vendor, o.Description, o.AmountCents, o.Currency, o.Status,
		utcPtr(o.DueDate), o.InvoiceURL, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// UpdateOrder updates an existing order by ID.
func (s *SQLStore) UpdateOrder(ctx context.Context, o model.Order) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE orders SET vendor = ?, description = ?, amount_cents = ?,
			currency = ?, status = ?, due_date = ?, invoice_url = ?, updated_at = ?
		WHERE id = ?`),
		o.Vendor, o.Description, o.AmountCents, o.Currency, o.Status,
		utcPtr(o.DueDate), o.InvoiceURL, time.Now().UTC(), o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOrders retrieves all orders, newest first.
func (s *SQLStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			o       model.Order
			dueDate *time.Time
		)
		err := rows.Scan(
			&o.ID, &o.Vendor, &o.Description, &o.AmountCents, &o.Currency,
			&o.Status, &dueDate, &o.InvoiceURL, &o.CreatedBy,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		o.DueDate = dueDate
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateSubscription inserts a new subscription. Generates a UUID if ID is
// empty.
func (s *SQLStore) CreateSubscription(ctx context.Context, sub model.Subscription) error {
	if strings.TrimSpace(sub.Vendor) == "" {
		return fmt.Errorf("subscription vendor must not be empty")
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Interval == "" {
		sub.Interval = model.BillingMonthly
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sub.ID, sub.Vendor, sub.Description, sub.AmountCents, sub.Currency,
		sub.Interval, boolToInt(sub.Active), sub.RenewsAt.UTC(),
		sub.CreatedBy, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating subscription: %w", err)
	}
	return nil
}

// UpdateSubscription updates an existing subscription by ID.
func (s *SQLStore) UpdateSubscription(ctx context.Context, sub model.Subscription) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE subscriptions SET vendor = ?, description = ?, amount_cents = ?,
			currency = ?, billing_interval = ?, active = ?, renews_at = ?, updated_at = ?
		WHERE id = ?`),
		sub.Vendor, sub.Description, sub.AmountCents, sub.Currency,
		sub.Interval, boolToInt(sub.Active), sub.RenewsAt.UTC(),
		time.Now().UTC(), sub.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subscription %s: %w", sub.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscriptions retrieves all subscriptions ordered by renewal date.
func (s *SQLStore) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions ORDER BY renews_at")
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var (
			sub       model.Subscription
			activeInt int
		)
		err := rows.Scan(
			&sub.ID, &sub.Vendor, &sub.Description, &sub.AmountCents,
			&sub.Currency, &sub.Interval, &activeInt, &sub.RenewsAt,
			&sub.CreatedBy, &sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription row: %w", err)
		}
		sub.Active = activeInt != 0
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
