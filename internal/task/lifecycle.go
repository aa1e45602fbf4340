// Package task owns the task state machine, the derived deadline flags,
// and the reminder sweep. Transition errors always surface to the caller;
// the notifications a transition fans out are best-effort and never fail
// the transition itself.
package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrInvalidTransition is returned when a transition is not legal from
// the task's current status.
var ErrInvalidTransition = errors.New("invalid task transition")

// ErrPermissionDenied is returned when the actor's role does not allow
// the operation.
var ErrPermissionDenied = errors.New("permission denied")

// Service drives task transitions against the store.
type Service struct {
	store    store.Store
	notifier *notify.Dispatcher
}

// NewService creates a task service.
func NewService(st store.Store, notifier *notify.Dispatcher) *Service {
	return &Service{store: st, notifier: notifier}
}

// Create persists a new active task and notifies its assignees.
func (s *Service) Create(ctx context.Context, actor *session.Session, t model.Task) (*model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatorID = actor.UserID
	t.Status = model.TaskStatusActive
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	created, err := s.store.GetTaskByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notify.Request{
		Type:          model.NotificationTaskAssigned,
		SenderID:      actor.UserID,
		SenderName:    actor.DisplayName,
		RecipientIDs:  created.Assignees,
		Content:       created.Title,
		Link:          taskLink(created.ID),
		ReferenceType: "task",
		ReferenceID:   created.ID,
	})
	return created, nil
}

// Assign replaces the task's assignee set and notifies anyone newly added.
func (s *Service) Assign(ctx context.Context, actor *session.Session, taskID string, userIDs []string) error {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(t.Assignees))
	for _, id := range t.Assignees {
		existing[id] = true
	}

	if err := s.store.SetTaskAssignees(ctx, taskID, userIDs); err != nil {
		return err
	}

	var added []string
	for _, id := range userIDs {
		if !existing[id] {
			added = append(added, id)
		}
	}

	s.dispatch(ctx, notify.Request{
		Type:          model.NotificationTaskAssigned,
		SenderID:      actor.UserID,
		SenderName:    actor.DisplayName,
		RecipientIDs:  added,
		Content:       t.Title,
		Link:          taskLink(taskID),
		ReferenceType: "task",
		ReferenceID:   taskID,
	})
	return nil
}

// Complete moves an active task to completed and notifies the other
// assignees; the notification deep-links back to the task so completion
// can be undone via Reopen.
func (s *Service) Complete(ctx context.Context, actor *session.Session, taskID string) (*model.Task, error) {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TaskStatusActive {
		return nil, fmt.Errorf("completing %s task: %w", t.Status, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	if err := s.store.SetTaskStatus(ctx, taskID, model.TaskStatusCompleted, &now, nil); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatusCompleted
	t.CompletedAt = &now

	s.dispatch(ctx, notify.Request{
		Type:          model.NotificationTaskCompleted,
		SenderID:      actor.UserID,
		SenderName:    actor.DisplayName,
		RecipientIDs:  t.Assignees,
		Content:       t.Title,
		Link:          taskLink(taskID),
		ReferenceType: "task",
		ReferenceID:   taskID,
	})
	return t, nil
}

// Reopen moves a completed task back to active, clearing completed_at.
func (s *Service) Reopen(ctx context.Context, taskID string) (*model.Task, error) {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TaskStatusCompleted {
		return nil, fmt.Errorf("reopening %s task: %w", t.Status, ErrInvalidTransition)
	}

	if err := s.store.SetTaskStatus(ctx, taskID, model.TaskStatusActive, nil, nil); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatusActive
	t.CompletedAt = nil
	return t, nil
}

// SoftDelete moves an active or completed task to deleted, starting the
// retention window.
func (s *Service) SoftDelete(ctx context.Context, taskID string) (*model.Task, error) {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TaskStatusDeleted {
		return nil, fmt.Errorf("deleting %s task: %w", t.Status, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	if err := s.store.SetTaskStatus(ctx, taskID, model.TaskStatusDeleted, nil, &now); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatusDeleted
	t.CompletedAt = nil
	t.DeletedAt = &now
	return t, nil
}

// Recover moves a deleted task back to active, clearing deleted_at.
func (s *Service) Recover(ctx context.Context, taskID string) (*model.Task, error) {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TaskStatusDeleted {
		return nil, fmt.Errorf("recovering %s task: %w", t.Status, ErrInvalidTransition)
	}

	if err := s.store.SetTaskStatus(ctx, taskID, model.TaskStatusActive, nil, nil); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatusActive
	t.DeletedAt = nil
	return t, nil
}

// Purge permanently removes a soft-deleted task together with its
// comments and assignment rows. Irreversible, so gated on the moderate
// feature and only legal from the deleted status.
func (s *Service) Purge(ctx context.Context, actor *session.Session, taskID string) error {
	if !access.Can(actor.Role, access.FeatureModerate) {
		return ErrPermissionDenied
	}

	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Status != model.TaskStatusDeleted {
		return fmt.Errorf("purging %s task: %w", t.Status, ErrInvalidTransition)
	}

	return s.store.HardDeleteTask(ctx, taskID)
}

// PurgeExpired permanently removes every soft-deleted task whose
// retention window has elapsed. Explicit user action, never run on a
// timer. Returns how many tasks were removed.
func (s *Service) PurgeExpired(ctx context.Context, actor *session.Session) (int, error) {
	if !access.Can(actor.Role, access.FeatureModerate) {
		return 0, ErrPermissionDenied
	}

	cutoff := time.Now().UTC().Add(-model.DeletedRetention)
	expired, err := s.store.ListExpiredDeleted(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, t := range expired {
		if err := s.store.HardDeleteTask(ctx, t.ID); err != nil {
			return purged, fmt.Errorf("purging task %s: %w", t.ID, err)
		}
		purged++
	}
	return purged, nil
}

// dispatch sends notifications without letting a failure reach the
// transition that triggered it.
func (s *Service) dispatch(ctx context.Context, req notify.Request) {
	if s.notifier == nil || len(req.RecipientIDs) == 0 {
		return
	}
	if err := s.notifier.Dispatch(ctx, req); err != nil {
		log.Printf("task: notification dispatch failed: %v", err)
	}
}

func taskLink(taskID string) string {
	return "/tasks/" + taskID
}
