package task

import (
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/model"
)

func tp(t time.Time) *time.Time { return &t }

func TestIsUrgent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline *time.Time
		want     bool
	}{
		{"no deadline", nil, false},
		{"tomorrow", tp(now.Add(24 * time.Hour)), true},
		{"in six days", tp(now.Add(6 * 24 * time.Hour)), true},
		{"exactly seven days", tp(now.Add(7 * 24 * time.Hour)), true},
		{"in eight days", tp(now.Add(8 * 24 * time.Hour)), false},
		{"already past", tp(now.Add(-time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUrgent(tt.deadline, now); got != tt.want {
				t.Errorf("IsUrgent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline *time.Time
		want     bool
	}{
		{"no deadline", nil, false},
		{"later today", tp(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)), false},
		{"earlier today", tp(time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)), false},
		{"yesterday late", tp(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)), true},
		{"tomorrow", tp(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.deadline, now); got != tt.want {
				t.Errorf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRecentlyOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline *time.Time
		want     bool
	}{
		{"not overdue", tp(now.Add(24 * time.Hour)), false},
		{"three days past", tp(now.Add(-3 * 24 * time.Hour)), true},
		{"seven days past", tp(now.Add(-7 * 24 * time.Hour)), true},
		{"ten days past", tp(now.Add(-10 * 24 * time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRecentlyOverdue(tt.deadline, now)
			if got != tt.want {
				t.Errorf("IsRecentlyOverdue = %v, want %v", got, tt.want)
			}
			// Recently overdue always implies overdue.
			if got && !IsOverdue(tt.deadline, now) {
				t.Error("recently overdue but not overdue")
			}
		})
	}
}

func TestDaysUntilPermanentDelete(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		deletedAt *time.Time
		want      int
	}{
		{"never deleted", nil, 0},
		{"just deleted", tp(now), 7},
		{"six and a half days in", tp(now.Add(-6*24*time.Hour - 12*time.Hour)), 1},
		{"exactly expired", tp(now.Add(-7 * 24 * time.Hour)), 0},
		{"eight days in", tp(now.Add(-8 * 24 * time.Hour)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntilPermanentDelete(tt.deletedAt, now); got != tt.want {
				t.Errorf("DaysUntilPermanentDelete = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSortActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{ID: "old", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "new", CreatedAt: now.Add(-time.Hour)},
		{ID: "due-3d", Deadline: tp(now.Add(3 * 24 * time.Hour)), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "due-1d", Deadline: tp(now.Add(24 * time.Hour)), CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "overdue", Deadline: tp(now.Add(-24 * time.Hour)), CreatedAt: now.Add(-36 * time.Hour)},
		{ID: "far", Deadline: tp(now.Add(30 * 24 * time.Hour)), CreatedAt: now.Add(-12 * time.Hour)},
	}

	SortActive(tasks, now)

	want := []string{"due-1d", "due-3d", "new", "far", "overdue", "old"}
	for i, id := range want {
		if tasks[i].ID != id {
			var got []string
			for _, tk := range tasks {
				got = append(got, tk.ID)
			}
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortCompletedAndDeleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	completed := []model.Task{
		{ID: "a", CompletedAt: tp(now.Add(-2 * time.Hour)), CreatedAt: now.Add(-90 * time.Hour)},
		{ID: "b", CompletedAt: tp(now.Add(-time.Hour)), CreatedAt: now.Add(-100 * time.Hour)},
		{ID: "c", CreatedAt: now.Add(-30 * time.Minute)}, // fallback to created_at
	}
	SortCompleted(completed)
	if completed[0].ID != "c" || completed[1].ID != "b" || completed[2].ID != "a" {
		t.Errorf("completed order = %s,%s,%s", completed[0].ID, completed[1].ID, completed[2].ID)
	}

	deleted := []model.Task{
		{ID: "x", DeletedAt: tp(now.Add(-3 * time.Hour)), CreatedAt: now.Add(-10 * time.Hour)},
		{ID: "y", DeletedAt: tp(now.Add(-time.Hour)), CreatedAt: now.Add(-20 * time.Hour)},
	}
	SortDeleted(deleted)
	if deleted[0].ID != "y" {
		t.Errorf("deleted order starts with %s, want y", deleted[0].ID)
	}
}
