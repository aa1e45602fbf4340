// Package comment manages per-entity comment threads and their mention
// fan-out. Posting succeeds even when notification delivery fails; the
// primary write is never held hostage by the secondary one.
package comment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrPermissionDenied is returned when the actor may not edit or delete
// the comment.
var ErrPermissionDenied = errors.New("permission denied")

// Service drives comment threads against the store.
type Service struct {
	store    store.Store
	notifier *notify.Dispatcher
	feed     feed.ChangeFeed
}

// NewService creates a comment service.
func NewService(st store.Store, notifier *notify.Dispatcher, f feed.ChangeFeed) *Service {
	return &Service{store: st, notifier: notifier, feed: f}
}

// CreateInput is one new comment. Link is the deep link mention
// notifications should open, supplied by the caller since only the UI
// knows the enclosing page.
type CreateInput struct {
	EntityType string
	EntityID   string
	ParentID   *string
	Content    string

	TaggedUserIDs []string
	Link          string
}

// Create posts a comment, then fans out mention notifications and a
// thread-change event. The fan-out is best-effort: its failures are
// logged and the posted comment is returned regardless.
func (s *Service) Create(ctx context.Context, actor *session.Session, in CreateInput) (*model.Comment, error) {
	if !access.Can(actor.Role, access.FeatureComments) {
		return nil, ErrPermissionDenied
	}

	c := model.Comment{
		ID:            uuid.New().String(),
		AuthorID:      actor.UserID,
		EntityType:    in.EntityType,
		EntityID:      in.EntityID,
		ParentID:      in.ParentID,
		Content:       in.Content,
		TaggedUserIDs: in.TaggedUserIDs,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("posting comment: %w", err)
	}

	ev := feed.Event{Table: "comments", Op: feed.OpInsert, RecordID: c.ID, At: c.CreatedAt}
	if err := s.feed.Publish(ctx, feed.CommentTopic(in.EntityType, in.EntityID), ev); err != nil {
		log.Printf("comment: publishing thread event: %v", err)
	}

	if len(in.TaggedUserIDs) > 0 {
		err := s.notifier.Dispatch(ctx, notify.Request{
			Type:          model.NotificationMention,
			SenderID:      actor.UserID,
			SenderName:    actor.DisplayName,
			RecipientIDs:  in.TaggedUserIDs,
			Content:       in.Content,
			Link:          in.Link,
			ReferenceType: in.EntityType,
			ReferenceID:   in.EntityID,
		})
		if err != nil {
			log.Printf("comment: mention dispatch failed: %v", err)
		}
	}

	if in.ParentID != nil {
		s.notifyParentAuthor(ctx, actor, in)
	}

	return &c, nil
}

// notifyParentAuthor tells the parent comment's author about a reply,
// unless they were already tagged in it.
func (s *Service) notifyParentAuthor(ctx context.Context, actor *session.Session, in CreateInput) {
	parent, err := s.store.GetCommentByID(ctx, *in.ParentID)
	if err != nil {
		log.Printf("comment: loading parent for reply notice: %v", err)
		return
	}
	for _, id := range in.TaggedUserIDs {
		if id == parent.AuthorID {
			return
		}
	}

	err = s.notifier.Dispatch(ctx, notify.Request{
		Type:          model.NotificationComment,
		SenderID:      actor.UserID,
		SenderName:    actor.DisplayName,
		RecipientIDs:  []string{parent.AuthorID},
		Content:       in.Content,
		Link:          in.Link,
		ReferenceType: in.EntityType,
		ReferenceID:   in.EntityID,
	})
	if err != nil {
		log.Printf("comment: reply dispatch failed: %v", err)
	}
}

// Edit replaces a comment's text. Only the author may edit, and editing
// never changes the tagged-user set.
func (s *Service) Edit(ctx context.Context, actor *session.Session, commentID, content string) error {
	c, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.UserID {
		return ErrPermissionDenied
	}
	return s.store.UpdateCommentContent(ctx, commentID, content)
}

// Delete removes a comment and its direct replies. Allowed for the
// author and for moderation-capable roles.
func (s *Service) Delete(ctx context.Context, actor *session.Session, commentID string) error {
	c, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.UserID && !access.Can(actor.Role, access.FeatureModerate) {
		return ErrPermissionDenied
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	ev := feed.Event{Table: "comments", Op: feed.OpDelete, RecordID: commentID, At: time.Now().UTC()}
	if err := s.feed.Publish(ctx, feed.CommentTopic(c.EntityType, c.EntityID), ev); err != nil {
		log.Printf("comment: publishing thread event: %v", err)
	}
	return nil
}

// List returns the full thread for an entity, oldest first.
func (s *Service) List(ctx context.Context, entityType, entityID string) ([]model.Comment, error) {
	return s.store.ListComments(ctx, entityType, entityID)
}
