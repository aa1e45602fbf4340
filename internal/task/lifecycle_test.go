package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/tests/testutil"
)

func newTestService(t *testing.T) (*Service, *store.SQLStore) {
	t.Helper()
	st := testutil.NewTestStore(t)
	return NewService(st, notify.NewDispatcher(st, feed.NopFeed{})), st
}

func actor(id, name string, role access.Role) *session.Session {
	return &session.Session{UserID: id, DisplayName: name, Role: role}
}

func TestCreateNotifiesAssignees(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	anna := actor("u1", "Anna", access.RoleStaff)

	created, err := svc.Create(ctx, anna, model.Task{
		Title:     "Cut linen samples",
		Assignees: []string{"u1", "u2", "u3"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != model.TaskStatusActive {
		t.Errorf("status = %q", created.Status)
	}
	if len(created.Assignees) != 3 {
		t.Errorf("assignees = %v", created.Assignees)
	}

	// The creator is excluded from the fan-out.
	for _, tt := range []struct {
		recipient string
		want      int
	}{{"u1", 0}, {"u2", 1}, {"u3", 1}} {
		ns, err := st.ListNotifications(ctx, tt.recipient, 0)
		if err != nil {
			t.Fatalf("ListNotifications: %v", err)
		}
		if len(ns) != tt.want {
			t.Errorf("recipient %s has %d notifications, want %d", tt.recipient, len(ns), tt.want)
		}
	}
}

func TestCompleteAndReopen(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	anna := actor("u1", "Anna", access.RoleStaff)

	created, err := svc.Create(ctx, anna, model.Task{
		Title:     "Order zippers",
		Assignees: []string{"u1", "u2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := svc.Complete(ctx, anna, created.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.TaskStatusCompleted || done.CompletedAt == nil {
		t.Errorf("after Complete: status=%q completedAt=%v", done.Status, done.CompletedAt)
	}

	// Other assignees hear about the completion, the actor does not.
	ns, err := st.ListNotifications(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	var completions int
	for _, n := range ns {
		if n.Type == model.NotificationTaskCompleted {
			completions++
			if n.Link != "/tasks/"+created.ID {
				t.Errorf("completion link = %q", n.Link)
			}
		}
	}
	if completions != 1 {
		t.Errorf("u2 has %d completion notifications, want 1", completions)
	}

	// Completing again is invalid; reopening restores active.
	if _, err := svc.Complete(ctx, anna, created.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double Complete: %v", err)
	}

	reopened, err := svc.Reopen(ctx, created.ID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.Status != model.TaskStatusActive || reopened.CompletedAt != nil {
		t.Errorf("after Reopen: status=%q completedAt=%v", reopened.Status, reopened.CompletedAt)
	}

	stored, err := st.GetTaskByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if stored.CompletedAt != nil {
		t.Error("completed_at not cleared in store")
	}
}

func TestSoftDeleteRecoverPurge(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	manager := actor("u1", "Anna", access.RoleManager)
	staff := actor("u2", "Ben", access.RoleStaff)

	created, err := svc.Create(ctx, manager, model.Task{Title: "Archive samples"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := svc.SoftDelete(ctx, created.ID)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if deleted.Status != model.TaskStatusDeleted || deleted.DeletedAt == nil {
		t.Errorf("after SoftDelete: status=%q deletedAt=%v", deleted.Status, deleted.DeletedAt)
	}
	if _, err := svc.SoftDelete(ctx, created.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double SoftDelete: %v", err)
	}

	recovered, err := svc.Recover(ctx, created.ID)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered.Status != model.TaskStatusActive || recovered.DeletedAt != nil {
		t.Errorf("after Recover: status=%q deletedAt=%v", recovered.Status, recovered.DeletedAt)
	}

	// Purge requires the deleted status and a moderation-capable role.
	if err := svc.Purge(ctx, manager, created.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Purge of active task: %v", err)
	}
	if _, err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := svc.Purge(ctx, staff, created.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Purge as staff: %v", err)
	}
	if err := svc.Purge(ctx, manager, created.ID); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, err := st.GetTaskByID(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("task still present after purge: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	manager := actor("u1", "Anna", access.RoleManager)

	expired, err := svc.Create(ctx, manager, model.Task{Title: "Old junk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fresh, err := svc.Create(ctx, manager, model.Task{Title: "Recent junk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	longAgo := time.Now().UTC().Add(-8 * 24 * time.Hour)
	recently := time.Now().UTC().Add(-time.Hour)
	if err := st.SetTaskStatus(ctx, expired.ID, model.TaskStatusDeleted, nil, &longAgo); err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}
	if err := st.SetTaskStatus(ctx, fresh.ID, model.TaskStatusDeleted, nil, &recently); err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}

	if _, err := svc.PurgeExpired(ctx, actor("u2", "Ben", access.RoleViewer)); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("PurgeExpired as viewer: %v", err)
	}

	purged, err := svc.PurgeExpired(ctx, manager)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d tasks, want 1", purged)
	}
	if _, err := st.GetTaskByID(ctx, expired.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expired task survived: %v", err)
	}
	if _, err := st.GetTaskByID(ctx, fresh.ID); err != nil {
		t.Errorf("fresh deleted task was purged: %v", err)
	}
}

func TestAssignNotifiesOnlyNewAssignees(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	anna := actor("u1", "Anna", access.RoleStaff)

	created, err := svc.Create(ctx, anna, model.Task{
		Title:     "Press shoot prep",
		Assignees: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Assign(ctx, anna, created.ID, []string{"u2", "u3"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// u2 was already assigned at creation: one notification total. u3 is
	// new: one notification.
	for _, recipient := range []string{"u2", "u3"} {
		ns, err := st.ListNotifications(ctx, recipient, 0)
		if err != nil {
			t.Fatalf("ListNotifications: %v", err)
		}
		if len(ns) != 1 {
			t.Errorf("recipient %s has %d notifications, want 1", recipient, len(ns))
		}
	}
}

func TestRecoverRequiresDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	anna := actor("u1", "Anna", access.RoleStaff)

	created, err := svc.Create(ctx, anna, model.Task{Title: "Swatch review"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Recover(ctx, created.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Recover of active task: %v", err)
	}
	if _, err := svc.Reopen(ctx, created.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reopen of active task: %v", err)
	}
}
