package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/tests/testutil"
)

func actor(role access.Role) *session.Session {
	return &session.Session{UserID: "u1", DisplayName: "Anna", Role: role}
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	manager := actor(access.RoleManager)

	due := time.Now().UTC().Add(30 * 24 * time.Hour)
	err := svc.CreateOrder(ctx, manager, OrderInput{
		Vendor:      "Libeco",
		AmountCents: 125000,
		Currency:    "EUR",
		Status:      model.OrderStatusSent,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	orders, err := svc.Orders(ctx, manager)
	if err != nil {
		t.Fatalf("Orders: %v", err)
	}
	if len(orders) != 1 || orders[0].AmountCents != 125000 {
		t.Fatalf("orders = %+v", orders)
	}
}

func TestOrderValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	manager := actor(access.RoleManager)

	tests := []struct {
		name string
		in   OrderInput
	}{
		{"missing vendor", OrderInput{Currency: "EUR"}},
		{"bad currency", OrderInput{Vendor: "x", Currency: "EURO"}},
		{"negative amount", OrderInput{Vendor: "x", Currency: "EUR", AmountCents: -5}},
		{"unknown status", OrderInput{Vendor: "x", Currency: "EUR", Status: "pending"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateOrder(ctx, manager, tt.in); err == nil {
				t.Error("invalid order accepted")
			}
		})
	}
}

func TestAccountingRequiresRole(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	staff := actor(access.RoleStaff)

	if err := svc.CreateOrder(ctx, staff, OrderInput{Vendor: "x", Currency: "EUR"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("CreateOrder as staff: %v", err)
	}
	if _, err := svc.Orders(ctx, staff); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Orders as staff: %v", err)
	}
	if _, err := svc.Subscriptions(ctx, staff); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Subscriptions as staff: %v", err)
	}
}

func TestRefreshOverdue(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	manager := actor(access.RoleManager)
	now := time.Now().UTC()

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	for _, in := range []OrderInput{
		{Vendor: "late", Currency: "EUR", Status: model.OrderStatusSent, DueDate: &past},
		{Vendor: "on-time", Currency: "EUR", Status: model.OrderStatusSent, DueDate: &future},
		{Vendor: "paid", Currency: "EUR", Status: model.OrderStatusPaid, DueDate: &past},
		{Vendor: "undated", Currency: "EUR", Status: model.OrderStatusSent},
	} {
		if err := svc.CreateOrder(ctx, manager, in); err != nil {
			t.Fatalf("CreateOrder(%s): %v", in.Vendor, err)
		}
	}

	changed, err := svc.RefreshOverdue(ctx, manager, now)
	if err != nil {
		t.Fatalf("RefreshOverdue: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}

	orders, _ := svc.Orders(ctx, manager)
	for _, o := range orders {
		wantOverdue := o.Vendor == "late"
		if (o.Status == model.OrderStatusOverdue) != wantOverdue {
			t.Errorf("order %s status = %s", o.Vendor, o.Status)
		}
	}
}

func TestSubscriptionsAndMonthlyTotal(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	owner := actor(access.RoleOwner)

	renews := time.Now().UTC().Add(30 * 24 * time.Hour)
	for _, in := range []SubscriptionInput{
		{Vendor: "Figma", AmountCents: 1500, Currency: "EUR", Interval: model.BillingMonthly, Active: true, RenewsAt: renews},
		{Vendor: "Shopify", AmountCents: 36000, Currency: "EUR", Interval: model.BillingYearly, Active: true, RenewsAt: renews},
		{Vendor: "Old CRM", AmountCents: 9900, Currency: "EUR", Interval: model.BillingMonthly, Active: false, RenewsAt: renews},
	} {
		if err := svc.CreateSubscription(ctx, owner, in); err != nil {
			t.Fatalf("CreateSubscription(%s): %v", in.Vendor, err)
		}
	}

	subs, err := svc.Subscriptions(ctx, owner)
	if err != nil {
		t.Fatalf("Subscriptions: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("subs = %d", len(subs))
	}

	// 1500 monthly + 36000/12 yearly; the inactive one is skipped.
	if got := MonthlyTotalCents(subs); got != 4500 {
		t.Errorf("MonthlyTotalCents = %d, want 4500", got)
	}
}

func TestSubscriptionValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewTestStore(t))
	owner := actor(access.RoleOwner)

	err := svc.CreateSubscription(ctx, owner, SubscriptionInput{
		Vendor:   "x",
		Currency: "EUR",
		Interval: "weekly",
		RenewsAt: time.Now(),
	})
	if err == nil {
		t.Error("unknown interval accepted")
	}
}
