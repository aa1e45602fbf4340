package store

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/atelier/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// TaskFilter controls filtering for task queries. Ordering beyond
// created_at is derived client-side (see internal/task).
type TaskFilter struct {
	Status     *string
	AssigneeID *string
	Query      *string
	Limit      int
}

// Store defines the persistence interface over the hosted record store.
type Store interface {
	// === Profiles ===

	UpsertProfile(ctx context.Context, p model.Profile) error
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)

	// === Tasks ===

	CreateTask(ctx context.Context, t model.Task) error
	UpdateTask(ctx context.Context, t model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	SetTaskStatus(ctx context.Context, id, status string, completedAt, deletedAt *time.Time) error
	SetTaskAssignees(ctx context.Context, taskID string, userIDs []string) error
	HardDeleteTask(ctx context.Context, id string) error
	ListExpiredDeleted(ctx context.Context, deletedBefore time.Time) ([]model.Task, error)

	// === Notifications ===

	CreateNotifications(ctx context.Context, ns []model.Notification) error
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error)
	RecentRecipientsWithLink(ctx context.Context, recipientIDs []string, link string, since time.Time) (map[string]bool, error)
	HasNotification(ctx context.Context, recipientID string, typ model.NotificationType, referenceID string) (bool, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) error
	DismissAllNotifications(ctx context.Context, recipientID string) error

	// === Comments ===

	CreateComment(ctx context.Context, c model.Comment) error
	UpdateCommentContent(ctx context.Context, id, content string) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, entityType, entityID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// === Material / label libraries ===

	CreateMaterial(ctx context.Context, m model.Material) error
	UpdateMaterial(ctx context.Context, m model.Material) error
	DeleteMaterial(ctx context.Context, id string) error
	ListMaterials(ctx context.Context) ([]model.Material, error)

	CreateLabel(ctx context.Context, l model.Label) error
	UpdateLabel(ctx context.Context, l model.Label) error
	DeleteLabel(ctx context.Context, id string) error
	ListLabels(ctx context.Context) ([]model.Label, error)

	// === Moodboards ===

	CreateMoodboard(ctx context.Context, b model.Moodboard) error
	ListMoodboards(ctx context.Context) ([]model.Moodboard, error)
	CreateMoodboardItem(ctx context.Context, it model.MoodboardItem) error
	ListMoodboardItems(ctx context.Context, boardID string) ([]model.MoodboardItem, error)
	DeleteMoodboardItem(ctx context.Context, id string) error

	// === Accounting ===

	CreateOrder(ctx context.Context, o model.Order) error
	UpdateOrder(ctx context.Context, o model.Order) error
	ListOrders(ctx context.Context) ([]model.Order, error)
	CreateSubscription(ctx context.Context, s model.Subscription) error
	UpdateSubscription(ctx context.Context, s model.Subscription) error
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
}
