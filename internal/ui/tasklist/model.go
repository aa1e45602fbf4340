package tasklist

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/atelier/internal/keys"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/task"
	"github.com/atelierhq/atelier/internal/theme"
)

// TasksLoadedMsg is sent when tasks have been loaded from the store.
type TasksLoadedMsg struct {
	Status string
	Tasks  []model.Task
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// LoadErrMsg is sent when loading tasks fails.
type LoadErrMsg struct {
	Err error
}

// statusTabs defines the status views cycled by Tab, in order.
var statusTabs = []string{
	model.TaskStatusActive,
	model.TaskStatusCompleted,
	model.TaskStatusDeleted,
}

// Model is the task list view component.
type Model struct {
	list      list.Model
	store     store.Store
	keys      *keys.KeyMap
	tabIndex  int
	loadErr   error
	width     int
	height    int
}

// New creates a new task list model showing the active tab.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Status returns the task status currently shown.
func (m Model) Status() string {
	return statusTabs[m.tabIndex]
}

// SelectedTask returns the task under the cursor, if any.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		// Ignore a stale load for a tab we already cycled away from.
		if msg.Status != m.Status() {
			return m, nil
		}
		m.loadErr = nil
		items := make([]list.Item, len(msg.Tasks))
		for i, t := range msg.Tasks {
			items[i] = TaskItem{Task: t}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case LoadErrMsg:
		m.loadErr = msg.Err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input for the task list.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(msg, m.keys.CycleStatus):
		m.tabIndex = (m.tabIndex + 1) % len(statusTabs)
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list.
func (m Model) View() string {
	if m.loadErr != nil {
		return lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Padding(1, 2).
			Render("Failed to load tasks: " + m.loadErr.Error())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Padding(1, 2).
			Render("No " + m.Status() + " tasks. Press 'n' to create one, tab to switch view.")
	}

	return m.list.View()
}

// LoadTasks returns a command that fetches the current tab's tasks and
// orders them client-side: active tasks urgent-first, completed and
// deleted tabs by their transition time.
func (m Model) LoadTasks() tea.Cmd {
	status := m.Status()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tasks, err := m.store.ListTasks(ctx, store.TaskFilter{Status: &status})
		if err != nil {
			return LoadErrMsg{Err: err}
		}

		switch status {
		case model.TaskStatusCompleted:
			task.SortCompleted(tasks)
		case model.TaskStatusDeleted:
			task.SortDeleted(tasks)
		default:
			task.SortActive(tasks, time.Now().UTC())
		}

		return TasksLoadedMsg{Status: status, Tasks: tasks}
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
