package task

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/tests/testutil"
)

func seedTask(t *testing.T, st *store.SQLStore, id string, deadline *time.Time, assignees ...string) {
	t.Helper()
	err := st.CreateTask(context.Background(), model.Task{
		ID:        id,
		Title:     "task " + id,
		Status:    model.TaskStatusActive,
		Deadline:  deadline,
		CreatorID: "creator",
		Assignees: assignees,
	})
	if err != nil {
		t.Fatalf("seeding task %s: %v", id, err)
	}
}

func reminderTypes(t *testing.T, st *store.SQLStore, recipient string) map[model.NotificationType]int {
	t.Helper()
	ns, err := st.ListNotifications(context.Background(), recipient, 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	counts := make(map[model.NotificationType]int)
	for _, n := range ns {
		counts[n.Type]++
	}
	return counts
}

func TestSweepTiers(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	now := time.Now().UTC()

	seedTask(t, st, "due-12h", tp(now.Add(12*time.Hour)), "u1")
	seedTask(t, st, "due-36h", tp(now.Add(36*time.Hour)), "u1")
	seedTask(t, st, "due-5d", tp(now.Add(5*24*time.Hour)), "u1")
	seedTask(t, st, "due-10d", tp(now.Add(10*24*time.Hour)), "u1")
	seedTask(t, st, "overdue", tp(now.Add(-2*time.Hour)), "u1")
	seedTask(t, st, "no-deadline", nil, "u1")

	sw := NewSweeper(st, feed.NopFeed{}, "u1", time.Hour)
	created, err := sw.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if created != 3 {
		t.Errorf("created %d reminders, want 3", created)
	}

	counts := reminderTypes(t, st, "u1")
	for typ, want := range map[model.NotificationType]int{
		model.NotificationDeadline24h: 1,
		model.NotificationDeadline48h: 1,
		model.NotificationDeadline7d:  1,
	} {
		if counts[typ] != want {
			t.Errorf("%s count = %d, want %d", typ, counts[typ], want)
		}
	}
}

func TestSweepFiresEachTierOnce(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	now := time.Now().UTC()

	seedTask(t, st, "t1", tp(now.Add(12*time.Hour)), "u1")

	sw := NewSweeper(st, feed.NopFeed{}, "u1", time.Hour)
	if _, err := sw.Sweep(ctx, now); err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	created, err := sw.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if created != 0 {
		t.Errorf("second sweep created %d reminders, want 0", created)
	}
}

func TestSweepTiersFireIndependently(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	now := time.Now().UTC()

	// Six days out: the 7d tier fires.
	seedTask(t, st, "t1", tp(now.Add(6*24*time.Hour)), "u1")
	sw := NewSweeper(st, feed.NopFeed{}, "u1", time.Hour)
	if _, err := sw.Sweep(ctx, now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	// Four days later the same deadline sits in the 48h tier, which has
	// not fired yet for this task.
	later := now.Add(4*24*time.Hour + 14*time.Hour)
	created, err := sw.Sweep(ctx, later)
	if err != nil {
		t.Fatalf("Sweep (later): %v", err)
	}
	if created != 1 {
		t.Errorf("created %d reminders, want 1", created)
	}

	counts := reminderTypes(t, st, "u1")
	if counts[model.NotificationDeadline7d] != 1 || counts[model.NotificationDeadline48h] != 1 {
		t.Errorf("tier counts = %v", counts)
	}
}

func TestSweepOnlyAssignedTasks(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	now := time.Now().UTC()

	seedTask(t, st, "mine", tp(now.Add(12*time.Hour)), "u1")
	seedTask(t, st, "theirs", tp(now.Add(12*time.Hour)), "u2")

	sw := NewSweeper(st, feed.NopFeed{}, "u1", time.Hour)
	created, err := sw.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if created != 1 {
		t.Errorf("created %d reminders, want 1", created)
	}
	if got := reminderTypes(t, st, "u2"); len(got) != 0 {
		t.Errorf("unassigned user received reminders: %v", got)
	}
}

func TestSweepSkipsCompletedTasks(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	now := time.Now().UTC()

	seedTask(t, st, "t1", tp(now.Add(12*time.Hour)), "u1")
	completedAt := now
	if err := st.SetTaskStatus(ctx, "t1", model.TaskStatusCompleted, &completedAt, nil); err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}

	sw := NewSweeper(st, feed.NopFeed{}, "u1", time.Hour)
	created, err := sw.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if created != 0 {
		t.Errorf("created %d reminders for a completed task", created)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		until time.Duration
		want  model.NotificationType
	}{
		{-time.Hour, ""},
		{0, ""},
		{time.Hour, model.NotificationDeadline24h},
		{24 * time.Hour, model.NotificationDeadline24h},
		{25 * time.Hour, model.NotificationDeadline48h},
		{48 * time.Hour, model.NotificationDeadline48h},
		{49 * time.Hour, model.NotificationDeadline7d},
		{7 * 24 * time.Hour, model.NotificationDeadline7d},
		{7*24*time.Hour + time.Minute, ""},
	}

	for _, tt := range tests {
		if got := tierFor(tt.until); got != tt.want {
			t.Errorf("tierFor(%v) = %q, want %q", tt.until, got, tt.want)
		}
	}
}
