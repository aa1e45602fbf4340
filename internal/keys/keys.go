package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Views
	Tasks      key.Binding
	Inbox      key.Binding
	Moodboards key.Binding
	Library    key.Binding
	Accounting key.Binding

	// Task actions
	NewTask  key.Binding
	EditTask key.Binding
	Complete key.Binding
	Delete   key.Binding
	Recover  key.Binding
	Comment  key.Binding

	// Task list tabs
	CycleStatus key.Binding

	// Inbox actions
	MarkRead    key.Binding
	MarkAllRead key.Binding
	ClearAll    key.Binding

	// Misc
	Refresh key.Binding
	Help    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "tasks"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "inbox"),
		),
		Moodboards: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "moodboards"),
		),
		Library: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "library"),
		),
		Accounting: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "accounting"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "complete/reopen"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Recover: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "recover"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "active/done/deleted"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "clear all"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Tasks, k.Inbox, k.Moodboards, k.Library, k.Accounting},
		{k.NewTask, k.EditTask, k.Complete, k.Delete, k.Recover, k.CycleStatus},
		{k.MarkRead, k.MarkAllRead, k.ClearAll, k.Refresh, k.Help},
	}
}
