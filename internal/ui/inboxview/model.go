package inboxview

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/keys"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/theme"
)

// InboxLoadedMsg is sent when the inbox window has been refreshed.
type InboxLoadedMsg struct{}

// InboxErrMsg is sent when an inbox operation fails.
type InboxErrMsg struct {
	Err error
}

// OpenLinkMsg is sent when a user opens a notification; the app routes
// to the linked record.
type OpenLinkMsg struct {
	Link string
}

// notificationItem adapts a model.Notification for bubbles/list.
type notificationItem struct {
	n model.Notification
}

func (i notificationItem) FilterValue() string { return i.n.Title }
func (i notificationItem) Title() string       { return i.n.Title }
func (i notificationItem) Description() string { return i.n.Message }

// itemDelegate renders a notification row, bolding unread entries.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		return
	}

	n := ni.n
	prefix := " "
	title := n.Title
	if !n.Read {
		prefix = "●"
		title = theme.UnreadStyle.Render(title)
	}

	when := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf("%s %s  %s  %s", prefix, title, n.Message, when)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// Model is the inbox view component over a notify.Inbox.
type Model struct {
	list   list.Model
	inbox  *notify.Inbox
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new inbox view.
func New(in *notify.Inbox, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		inbox:  in,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init loads the inbox window.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// UnreadCount exposes the derived unread total for the header badge.
func (m Model) UnreadCount() int {
	return m.inbox.UnreadCount()
}

// Reload refreshes the inbox window from the store.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.inbox.Load(ctx); err != nil {
			return InboxErrMsg{Err: err}
		}
		return InboxLoadedMsg{}
	}
}

// ApplyEvent folds a pushed change-feed event into the inbox window.
func (m Model) ApplyEvent(ev feed.Event) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.inbox.Apply(ctx, ev); err != nil {
			return InboxErrMsg{Err: err}
		}
		return InboxLoadedMsg{}
	}
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case InboxLoadedMsg:
		return m, m.syncItems()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// syncItems rebuilds the list items from the inbox's local window.
func (m *Model) syncItems() tea.Cmd {
	held := m.inbox.Items()
	items := make([]list.Item, len(held))
	for i, n := range held {
		items[i] = notificationItem{n: n}
	}
	return m.list.SetItems(items)
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(notificationItem)
		if !ok {
			return m, nil
		}
		// Opening a notification marks it read and routes to its link.
		id := item.n.ID
		link := item.n.Link
		return m, tea.Batch(
			func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := m.inbox.MarkRead(ctx, id); err != nil {
					return InboxErrMsg{Err: err}
				}
				return InboxLoadedMsg{}
			},
			func() tea.Msg { return OpenLinkMsg{Link: link} },
		)

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(notificationItem)
		if !ok {
			return m, nil
		}
		id := item.n.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.inbox.MarkRead(ctx, id); err != nil {
				return InboxErrMsg{Err: err}
			}
			return InboxLoadedMsg{}
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.inbox.MarkAllRead(ctx); err != nil {
				return InboxErrMsg{Err: err}
			}
			return InboxLoadedMsg{}
		}

	case key.Matches(msg, m.keys.ClearAll):
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.inbox.ClearAll(ctx); err != nil {
				return InboxErrMsg{Err: err}
			}
			return InboxLoadedMsg{}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Padding(1, 2).
			Render("No notifications.")
	}
	return m.list.View()
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
