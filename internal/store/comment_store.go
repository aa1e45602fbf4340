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

const commentColumns = "id, author_id, entity_type, entity_id, parent_id, content, created_at, updated_at"

// CreateComment inserts a comment and its tagged-user join rows. Generates
// a UUID if ID is empty. Replies may only attach to top-level comments.
func (s *SQLStore) CreateComment(ctx context.Context, c model.Comment) error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("comment content must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if c.ParentID != nil {
		parent, err := s.GetCommentByID(ctx, *c.ParentID)
		if err != nil {
			return fmt.Errorf("resolving parent comment: %w", err)
		}
		if parent.ParentID != nil {
			return fmt.Errorf("comments nest at most one level")
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.AuthorID, c.EntityType, c.EntityID, c.ParentID,
		c.Content, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	for _, userID := range dedupStrings(c.TaggedUserIDs) {
		_, err = tx.ExecContext(ctx, s.rebind(
			"INSERT INTO comment_tags (comment_id, user_id) VALUES (?, ?)"),
			c.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("tagging %s on comment %s: %w", userID, c.ID, err)
		}
	}

	return tx.Commit()
}

// UpdateCommentContent replaces the text of a comment. The tagged-user set
// is untouched: edits never retroactively untag anyone.
func (s *SQLStore) UpdateCommentContent(ctx context.Context, id, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("comment content must not be empty")
	}

	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE comments SET content = ?, updated_at = ? WHERE id = ?"),
		content, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating comment %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCommentByID retrieves a single comment with its tagged users.
func (s *SQLStore) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	row := s.db.QueryRowxContext(ctx, s.rebind(
		"SELECT "+commentColumns+" FROM comments WHERE id = ?"), id)

	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment %s: %w", id, err)
	}

	tags, err := s.commentTags(ctx, id)
	if err != nil {
		return nil, err
	}
	c.TaggedUserIDs = tags
	return &c, nil
}

// ListComments retrieves the full thread for an entity, oldest first.
func (s *SQLStore) ListComments(ctx context.Context, entityType, entityID string) ([]model.Comment, error) {
	rows, err := s.db.QueryxContext(ctx, s.rebind(
		"SELECT "+commentColumns+` FROM comments
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at`),
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying comments for %s %s: %w", entityType, entityID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range comments {
		tags, err := s.commentTags(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].TaggedUserIDs = tags
	}

	return comments, nil
}

// DeleteComment removes a comment; direct replies and tag rows cascade via
// foreign keys.
func (s *SQLStore) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM comments WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// commentTags loads the tagged user ids for a comment.
func (s *SQLStore) commentTags(ctx context.Context, commentID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.rebind(
		"SELECT user_id FROM comment_tags WHERE comment_id = ? ORDER BY user_id"), commentID)
	if err != nil {
		return nil, fmt.Errorf("loading tags for comment %s: %w", commentID, err)
	}
	return ids, nil
}

// scanComment scans a comment row.
func scanComment(row interface{ Scan(dest ...interface{}) error }) (model.Comment, error) {
	var (
		c        model.Comment
		parentID *string
	)

	err := row.Scan(
		&c.ID, &c.AuthorID, &c.EntityType, &c.EntityID, &parentID,
		&c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, err
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("scanning comment row: %w", err)
	}

	c.ParentID = parentID
	return c, nil
}
