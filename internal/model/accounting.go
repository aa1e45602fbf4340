package model

import "time"

// Accounting order statuses.
const (
	OrderStatusDraft   = "draft"
	OrderStatusSent    = "sent"
	OrderStatusPaid    = "paid"
	OrderStatusOverdue = "overdue"
)

// Subscription billing intervals.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Order is a purchase or supplier order tracked by the accounting views.
// Amounts are stored in minor currency units (cents) to avoid float drift.
type Order struct {
	ID          string     `json:"id" db:"id"`
	Vendor      string     `json:"vendor" db:"vendor"`
	Description string     `json:"description" db:"description"`
	AmountCents int64      `json:"amount_cents" db:"amount_cents"`
	Currency    string     `json:"currency" db:"currency"`
	Status      string     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	InvoiceURL  string     `json:"invoice_url,omitempty" db:"invoice_url"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Subscription is a recurring cost (software, services, rent).
type Subscription struct {
	ID          string    `json:"id" db:"id"`
	Vendor      string    `json:"vendor" db:"vendor"`
	Description string    `json:"description" db:"description"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Interval    string    `json:"interval" db:"billing_interval"`
	Active      bool      `json:"active" db:"active"`
	RenewsAt    time.Time `json:"renews_at" db:"renews_at"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
