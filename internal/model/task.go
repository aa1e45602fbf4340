package model

import "time"

// Task status constants.
const (
	TaskStatusActive    = "active"
	TaskStatusCompleted = "completed"
	TaskStatusDeleted   = "deleted"
)

// DeletedRetention is how long a soft-deleted task is kept before it
// becomes eligible for permanent removal.
const DeletedRetention = 7 * 24 * time.Hour

// Task is a tracked work item with an optional deadline and a set of
// assignees. Status transitions are owned by internal/task.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// CompletedAt is set iff Status == completed.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// DeletedAt is set iff Status == deleted.
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	// Assignees is populated from the task_assignees join table.
	Assignees []string `json:"assignees,omitempty" db:"-"`
}

// IsAssignee reports whether the given profile id is assigned to the task.
func (t Task) IsAssignee(userID string) bool {
	for _, id := range t.Assignees {
		if id == userID {
			return true
		}
	}
	return false
}
