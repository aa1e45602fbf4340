// Package accounting manages purchase orders and recurring
// subscriptions. Amounts are minor currency units throughout.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrPermissionDenied is returned when the actor's role cannot access
// accounting.
var ErrPermissionDenied = errors.New("permission denied")

// OrderInput is a validated order payload.
type OrderInput struct {
	Vendor      string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	AmountCents int64  `validate:"gte=0"`
	Currency    string `validate:"required,len=3,alpha"`
	Status      string `validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate     *time.Time
	InvoiceURL  string `validate:"omitempty,url"`
}

// SubscriptionInput is a validated subscription payload.
type SubscriptionInput struct {
	Vendor      string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	AmountCents int64  `validate:"gte=0"`
	Currency    string `validate:"required,len=3,alpha"`
	Interval    string `validate:"required,oneof=monthly yearly"`
	Active      bool
	RenewsAt    time.Time `validate:"required"`
}

// Service drives accounting records against the store.
type Service struct {
	store    store.Store
	validate *validator.Validate
}

// NewService creates an accounting service.
func NewService(st store.Store) *Service {
	return &Service{store: st, validate: validator.New()}
}

// CreateOrder validates and stores a new order.
func (s *Service) CreateOrder(ctx context.Context, actor *session.Session, in OrderInput) error {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating order: %w", err)
	}
	return s.store.CreateOrder(ctx, model.Order{
		Vendor:      in.Vendor,
		Description: in.Description,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Status:      in.Status,
		DueDate:     in.DueDate,
		InvoiceURL:  in.InvoiceURL,
		CreatedBy:   actor.UserID,
	})
}

// UpdateOrder validates and applies changes to an existing order.
func (s *Service) UpdateOrder(ctx context.Context, actor *session.Session, id string, in OrderInput) error {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating order: %w", err)
	}
	return s.store.UpdateOrder(ctx, model.Order{
		ID:          id,
		Vendor:      in.Vendor,
		Description: in.Description,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Status:      in.Status,
		DueDate:     in.DueDate,
		InvoiceURL:  in.InvoiceURL,
	})
}

// Orders lists all orders, newest first.
func (s *Service) Orders(ctx context.Context, actor *session.Session) ([]model.Order, error) {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return nil, ErrPermissionDenied
	}
	return s.store.ListOrders(ctx)
}

// RefreshOverdue flips sent orders whose due date has passed to overdue.
// Returns how many orders changed.
func (s *Service) RefreshOverdue(ctx context.Context, actor *session.Session, now time.Time) (int, error) {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return 0, ErrPermissionDenied
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, o := range orders {
		if o.Status != model.OrderStatusSent || o.DueDate == nil || !o.DueDate.Before(now) {
			continue
		}
		o.Status = model.OrderStatusOverdue
		if err := s.store.UpdateOrder(ctx, o); err != nil {
			return changed, fmt.Errorf("marking order %s overdue: %w", o.ID, err)
		}
		changed++
	}
	return changed, nil
}

// CreateSubscription validates and stores a new subscription.
func (s *Service) CreateSubscription(ctx context.Context, actor *session.Session, in SubscriptionInput) error {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating subscription: %w", err)
	}
	return s.store.CreateSubscription(ctx, model.Subscription{
		Vendor:      in.Vendor,
		Description: in.Description,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Interval:    in.Interval,
		Active:      in.Active,
		RenewsAt:    in.RenewsAt,
		CreatedBy:   actor.UserID,
	})
}

// UpdateSubscription validates and applies changes to a subscription.
func (s *Service) UpdateSubscription(ctx context.Context, actor *session.Session, id string, in SubscriptionInput) error {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("validating subscription: %w", err)
	}
	return s.store.UpdateSubscription(ctx, model.Subscription{
		ID:          id,
		Vendor:      in.Vendor,
		Description: in.Description,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Interval:    in.Interval,
		Active:      in.Active,
		RenewsAt:    in.RenewsAt,
	})
}

// Subscriptions lists all subscriptions ordered by renewal date.
func (s *Service) Subscriptions(ctx context.Context, actor *session.Session) ([]model.Subscription, error) {
	if !access.Can(actor.Role, access.FeatureAccounting) {
		return nil, ErrPermissionDenied
	}
	return s.store.ListSubscriptions(ctx)
}

// MonthlyTotalCents sums active subscription costs normalized to a
// monthly figure; yearly amounts are divided by twelve.
func MonthlyTotalCents(subs []model.Subscription) int64 {
	var total int64
	for _, sub := range subs {
		if !sub.Active {
			continue
		}
		switch sub.Interval {
		case model.BillingYearly:
			total += sub.AmountCents / 12
		default:
			total += sub.AmountCents
		}
	}
	return total
}
