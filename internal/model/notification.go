package model

import "time"

// NotificationType identifies what kind of activity produced a notification.
type NotificationType string

const (
	NotificationMention       NotificationType = "mention"
	NotificationComment       NotificationType = "comment"
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationDeadline24h   NotificationType = "deadline_24h"
	NotificationDeadline48h   NotificationType = "deadline_48h"
	NotificationDeadline7d    NotificationType = "deadline_7d"
)

// Notification is an inbox entry for a single recipient. Content is never
// updated after creation; only the read and dismissed flags are mutated.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// RecipientID is the profile the notification is addressed to.
	RecipientID string `json:"recipient_id" db:"recipient_id"`

	// SenderID is the acting user, nil for system-generated entries
	// such as deadline reminders.
	SenderID *string `json:"sender_id,omitempty" db:"sender_id"`

	Type NotificationType `json:"type" db:"type"`

	// Title is resolved from the type's template at creation time.
	Title string `json:"title" db:"title"`

	// Message is the originating content, truncated to 100 characters.
	Message string `json:"message" db:"message"`

	// Link is an application-relative deep link, optionally carrying an
	// item query parameter (e.g. "/moodboards/42?item=7").
	Link string `json:"link" db:"link"`

	// ReferenceType and ReferenceID point back at the originating record
	// (e.g. "task" + task id) for existence checks and navigation.
	ReferenceType string `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID   string `json:"reference_id,omitempty" db:"reference_id"`

	Read      bool       `json:"read" db:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
	Dismissed bool       `json:"dismissed" db:"dismissed"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
