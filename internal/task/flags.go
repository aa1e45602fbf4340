package task

import (
	"sort"
	"time"

	"github.com/atelierhq/atelier/internal/model"
)

// urgentHorizon is how far ahead a deadline counts as urgent.
const urgentHorizon = 7 * 24 * time.Hour

// IsUrgent reports whether the deadline is within the next seven days.
// A deadline already in the past is not urgent by this flag alone; it is
// overdue instead.
func IsUrgent(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	if deadline.Before(now) {
		return false
	}
	return !deadline.After(now.Add(urgentHorizon))
}

// IsOverdue compares calendar dates only: a deadline is overdue once its
// date is strictly before today's, regardless of time of day.
func IsOverdue(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	dy, dm, dd := deadline.Date()
	ny, nm, nd := now.Date()
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return d.Before(n)
}

// IsRecentlyOverdue reports whether the deadline is overdue by at most
// seven whole days.
func IsRecentlyOverdue(deadline *time.Time, now time.Time) bool {
	if !IsOverdue(deadline, now) {
		return false
	}
	dy, dm, dd := deadline.Date()
	ny, nm, nd := now.Date()
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return n.Sub(d) <= 7*24*time.Hour
}

// DaysUntilPermanentDelete returns how many whole days remain of the
// deleted-task retention window, floored at zero.
func DaysUntilPermanentDelete(deletedAt *time.Time, now time.Time) int {
	if deletedAt == nil {
		return 0
	}
	remaining := deletedAt.Add(model.DeletedRetention).Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// SortActive orders the active list for display: urgent not-yet-due tasks
// first by soonest deadline, then everything else newest first.
func SortActive(tasks []model.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		aUrgent := IsUrgent(a.Deadline, now)
		bUrgent := IsUrgent(b.Deadline, now)
		if aUrgent != bUrgent {
			return aUrgent
		}
		if aUrgent && bUrgent {
			return a.Deadline.Before(*b.Deadline)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// SortCompleted orders the completed list by completion time descending,
// falling back to creation time.
func SortCompleted(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return sortTime(tasks[i].CompletedAt, tasks[i].CreatedAt).
			After(sortTime(tasks[j].CompletedAt, tasks[j].CreatedAt))
	})
}

// SortDeleted orders the deleted list by deletion time descending,
// falling back to creation time.
func SortDeleted(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return sortTime(tasks[i].DeletedAt, tasks[i].CreatedAt).
			After(sortTime(tasks[j].DeletedAt, tasks[j].CreatedAt))
	})
}

func sortTime(primary *time.Time, fallback time.Time) time.Time {
	if primary != nil {
		return *primary
	}
	return fallback
}
