package tasklist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/task"
	"github.com/atelierhq/atelier/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	return i.Task.Status
}

// TaskDelegate implements list.ItemDelegate for rendering task rows.
type TaskDelegate struct{}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	t := ti.Task
	now := time.Now().UTC()
	isSelected := index == m.Index()

	var prefix string
	switch t.Status {
	case model.TaskStatusCompleted:
		prefix = "✓"
	case model.TaskStatusDeleted:
		prefix = "✗"
	default:
		prefix = "○"
	}

	statusBadge := theme.StatusStyle(t.Status).Render(t.Status)

	deadlineStr := ""
	if t.Deadline != nil {
		urgent := task.IsUrgent(t.Deadline, now)
		overdue := task.IsOverdue(t.Deadline, now)
		label := t.Deadline.Format("Jan 02")
		if overdue {
			label += " OVERDUE"
		}
		deadlineStr = " " + theme.DeadlineStyle(urgent, overdue).Render(label)
	}

	// Deleted tasks show how long until the retention sweep removes them.
	purgeStr := ""
	if t.Status == model.TaskStatusDeleted && t.DeletedAt != nil {
		days := task.DaysUntilPermanentDelete(t.DeletedAt, now)
		purgeStr = theme.HelpStyle.Render(fmt.Sprintf("  purges in %dd", days))
	}

	assigneeStr := ""
	if n := len(t.Assignees); n > 0 {
		assigneeStr = theme.HelpStyle.Render(fmt.Sprintf("  %d assigned", n))
	}

	line := fmt.Sprintf(
		"%s %s %s%s%s%s",
		prefix, statusBadge, t.Title, deadlineStr, assigneeStr, purgeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
