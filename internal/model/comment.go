package model

import "time"

// Comment entity kinds a thread can hang off.
const (
	CommentEntityMoodboardItem = "moodboard_item"
	CommentEntityProduct       = "product"
	CommentEntityTask          = "task"
)

// Comment is a single entry in a per-entity thread. Threads nest one level:
// a comment either has no parent or its parent is a top-level comment.
type Comment struct {
	ID       string `json:"id" db:"id"`
	AuthorID string `json:"author_id" db:"author_id"`

	// EntityType and EntityID identify the record the thread belongs to.
	EntityType string `json:"entity_type" db:"entity_type"`
	EntityID   string `json:"entity_id" db:"entity_id"`

	// ParentID is nil for top-level comments.
	ParentID *string `json:"parent_id,omitempty" db:"parent_id"`

	// Content is raw text; committed mentions appear as literal
	// "@Display Name" substrings.
	Content string `json:"content" db:"content"`

	// TaggedUserIDs is the explicit tag list recorded at mention commit
	// time. It is independent of the content text: editing a mention out
	// of the text does not untag the user.
	TaggedUserIDs []string `json:"tagged_user_ids,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
