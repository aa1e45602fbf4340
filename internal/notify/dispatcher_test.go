package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/tests/testutil"
)

func TestDispatchExcludesSender(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	d := NewDispatcher(st, feed.NopFeed{})

	err := d.Dispatch(ctx, Request{
		Type:         model.NotificationMention,
		SenderID:     "author",
		SenderName:   "Anna Bergström",
		RecipientIDs: []string{"author", "u2", "u3", "u2"},
		Content:      "please review the linen swatch",
		Link:         "/moodboards/42?item=7",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	for _, tt := range []struct {
		recipient string
		want      int
	}{
		{"author", 0},
		{"u2", 1},
		{"u3", 1},
	} {
		got, err := st.ListNotifications(ctx, tt.recipient, 0)
		if err != nil {
			t.Fatalf("ListNotifications(%s): %v", tt.recipient, err)
		}
		if len(got) != tt.want {
			t.Errorf("recipient %s has %d notifications, want %d", tt.recipient, len(got), tt.want)
		}
	}

	ns, _ := st.ListNotifications(ctx, "u2", 0)
	if ns[0].Title != "Anna Bergström mentioned you" {
		t.Errorf("title = %q", ns[0].Title)
	}
	if ns[0].SenderID == nil || *ns[0].SenderID != "author" {
		t.Errorf("sender = %v", ns[0].SenderID)
	}
}

func TestDispatchIdempotentWithinWindow(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	d := NewDispatcher(st, feed.NopFeed{})

	req := Request{
		Type:         model.NotificationComment,
		SenderID:     "author",
		SenderName:   "Ben",
		RecipientIDs: []string{"u2", "u3"},
		Content:      "new thread",
		Link:         "/tasks/9",
	}

	if err := d.Dispatch(ctx, req); err != nil {
		t.Fatalf("first Dispatch: %v", err)
	}
	if err := d.Dispatch(ctx, req); err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}

	for _, recipient := range []string{"u2", "u3"} {
		got, err := st.ListNotifications(ctx, recipient, 0)
		if err != nil {
			t.Fatalf("ListNotifications(%s): %v", recipient, err)
		}
		if len(got) != 1 {
			t.Errorf("recipient %s has %d notifications, want 1", recipient, len(got))
		}
	}
}

func TestDispatchOutsideWindowCreatesAgain(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	d := NewDispatcher(st, feed.NopFeed{})

	// Seed a notification for the same (recipient, link) two hours old.
	err := st.CreateNotifications(ctx, []model.Notification{{
		RecipientID: "u2",
		Type:        model.NotificationComment,
		Link:        "/tasks/9",
		CreatedAt:   time.Now().UTC().Add(-2 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}

	err = d.Dispatch(ctx, Request{
		Type:         model.NotificationComment,
		SenderID:     "author",
		RecipientIDs: []string{"u2"},
		Link:         "/tasks/9",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	got, err := st.ListNotifications(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected stale row plus a fresh one, got %d rows", len(got))
	}
}

func TestDispatchNobodyLeft(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	d := NewDispatcher(st, feed.NopFeed{})

	err := d.Dispatch(ctx, Request{
		Type:         model.NotificationMention,
		SenderID:     "author",
		RecipientIDs: []string{"author", "", "author"},
		Link:         "/tasks/1",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	got, err := st.ListNotifications(ctx, "author", 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
}

func TestDispatchTruncatesMessage(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)
	d := NewDispatcher(st, feed.NopFeed{})

	long := strings.Repeat("a", 150)
	err := d.Dispatch(ctx, Request{
		Type:         model.NotificationMention,
		SenderID:     "author",
		RecipientIDs: []string{"u2"},
		Content:      long,
		Link:         "/tasks/1",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	got, err := st.ListNotifications(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	want := strings.Repeat("a", 100) + "…"
	if got[0].Message != want {
		t.Errorf("message = %q (len %d)", got[0].Message, len(got[0].Message))
	}
}
