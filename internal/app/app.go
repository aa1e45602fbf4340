package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/atelier/internal/access"
	"github.com/atelierhq/atelier/internal/accounting"
	"github.com/atelierhq/atelier/internal/comment"
	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/keys"
	"github.com/atelierhq/atelier/internal/library"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/moodboard"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/task"
	"github.com/atelierhq/atelier/internal/theme"
	"github.com/atelierhq/atelier/internal/ui"
	"github.com/atelierhq/atelier/internal/ui/composer"
	"github.com/atelierhq/atelier/internal/ui/inboxview"
	"github.com/atelierhq/atelier/internal/ui/taskform"
	"github.com/atelierhq/atelier/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTasks ViewState = iota
	ViewInbox
	ViewMoodboards
	ViewLibrary
	ViewAccounting
	ViewHelp
	ViewTaskCreate
	ViewTaskEdit
	ViewComment
)

// Deps bundles the per-run dependencies the root model operates on.
// Everything is constructed in main and injected; nothing here is a
// package-level singleton.
type Deps struct {
	Store      store.Store
	Session    *session.Session
	Keys       *keys.KeyMap
	Tasks      *task.Service
	Comments   *comment.Service
	Library    *library.Service
	Accounting *accounting.Service
	Moodboards *moodboard.Service
	Inbox      *notify.Inbox
	Sweeper    *task.Sweeper

	// Events delivers pushed change-feed events for this user's
	// notification topic; nil when running without a feed.
	Events <-chan feed.Event
}

type actionDoneMsg struct {
	err error
}

type profilesLoadedMsg struct {
	profiles []model.Profile
}

type boardsLoadedMsg struct {
	boards []model.Moodboard
	err    error
}

type libraryLoadedMsg struct {
	materials []model.Material
	labels    []model.Label
	err       error
}

type accountingLoadedMsg struct {
	orders []model.Order
	subs   []model.Subscription
	err    error
}

type feedEventMsg struct {
	ev feed.Event
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and dispatch into the domain services.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	deps         Deps
	keys         *keys.KeyMap

	taskList  tasklist.Model
	inboxView inboxview.Model
	taskForm  taskform.Model
	comp      composer.Model

	// commentTaskID is the task whose discussion the composer targets.
	commentTaskID string

	boards    []model.Moodboard
	materials []model.Material
	labels    []model.Label
	orders    []model.Order
	subs      []model.Subscription

	ready         bool
	statusMessage string
}

// New creates the root application model.
func New(d Deps) Model {
	return Model{
		currentView: ViewTasks,
		deps:        d,
		keys:        d.Keys,
		taskList:    tasklist.New(d.Store, d.Keys, 80, 24),
		inboxView:   inboxview.New(d.Inbox, d.Keys, 80, 24),
		taskForm:    taskform.New(80, 24),
		comp:        composer.New(nil, 80),
	}
}

// Init loads the initial data and starts the reminder sweeper.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.taskList.Init(),
		m.inboxView.Init(),
		m.loadProfiles(),
		m.deps.Sweeper.Start(),
	}
	if m.deps.Events != nil {
		cmds = append(cmds, m.waitForFeed())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.inboxView.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.comp.SetWidth(w)
		return m.updateActiveView(msg)

	case profilesLoadedMsg:
		m.taskForm.SetProfiles(msg.profiles)
		m.comp.SetCandidates(msg.profiles)
		return m, nil

	case tasklist.SelectedTaskMsg:
		// Opening a task drops into its discussion thread.
		m.commentTaskID = msg.TaskID
		m.previousView = m.currentView
		m.currentView = ViewComment
		m.comp.Reset()
		return m, m.comp.Focus()

	case taskform.TaskCreatedMsg:
		m.currentView = ViewTasks
		return m, m.createTask(msg.Task, msg.AssigneeIDs)

	case taskform.TaskUpdatedMsg:
		m.currentView = ViewTasks
		return m, m.updateTask(msg.Task, msg.AssigneeIDs)

	case taskform.TaskFormCancelMsg:
		m.currentView = ViewTasks
		return m, nil

	case composer.SubmitMsg:
		m.currentView = m.previousView
		return m, m.postComment(msg.Content, msg.TaggedUserIDs)

	case composer.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		} else {
			m.statusMessage = ""
		}
		return m, m.taskList.LoadTasks()

	case task.ReminderResultMsg:
		cmds := []tea.Cmd{m.deps.Sweeper.WaitForNextResult()}
		if msg.Created > 0 {
			cmds = append(cmds, m.inboxView.Reload())
		}
		return m, tea.Batch(cmds...)

	case feedEventMsg:
		return m, tea.Batch(
			m.inboxView.ApplyEvent(msg.ev),
			m.waitForFeed(),
		)

	case inboxview.OpenLinkMsg:
		return m.routeLink(msg.Link)

	case inboxview.InboxErrMsg:
		m.statusMessage = msg.Err.Error()
		return m, nil

	case boardsLoadedMsg:
		m.boards = msg.boards
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		}
		return m, nil

	case libraryLoadedMsg:
		m.materials, m.labels = msg.materials, msg.labels
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		}
		return m, nil

	case accountingLoadedMsg:
		m.orders, m.subs = msg.orders, msg.subs
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newModel, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the active
// view, except while a form or the composer has input focus.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.deps.Sweeper.Stop()
		return m, tea.Quit, true
	}

	// Text-entry views own the keyboard.
	if m.currentView == ViewTaskCreate || m.currentView == ViewTaskEdit || m.currentView == ViewComment {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.deps.Sweeper.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Tasks):
		m.currentView = ViewTasks
		return m, m.taskList.LoadTasks(), true

	case key.Matches(msg, m.keys.Inbox):
		m.currentView = ViewInbox
		return m, m.inboxView.Reload(), true

	case key.Matches(msg, m.keys.Moodboards):
		m.currentView = ViewMoodboards
		return m, m.loadBoards(), true

	case key.Matches(msg, m.keys.Library):
		m.currentView = ViewLibrary
		return m, m.loadLibrary(), true

	case key.Matches(msg, m.keys.Accounting):
		m.currentView = ViewAccounting
		return m, m.loadAccounting(), true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewTasks {
			return m, nil, false
		}
		m.currentView = ViewTasks
		return m, m.taskList.LoadTasks(), true
	}

	if m.currentView != ViewTasks {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.NewTask):
		m.previousView = m.currentView
		m.currentView = ViewTaskCreate
		return m, m.taskForm.StartCreate(), true

	case key.Matches(msg, m.keys.EditTask):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewTaskEdit
		return m, m.taskForm.StartEdit(t), true

	case key.Matches(msg, m.keys.Complete):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		return m, m.toggleComplete(t), true

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		// Deleting an already-deleted task purges it permanently.
		if t.Status == model.TaskStatusDeleted {
			return m, m.purgeTask(t.ID), true
		}
		return m, m.deleteTask(t.ID), true

	case key.Matches(msg, m.keys.ClearAll):
		if m.taskList.Status() != model.TaskStatusDeleted {
			return m, nil, true
		}
		return m, m.purgeExpired(), true

	case key.Matches(msg, m.keys.Recover):
		t, ok := m.taskList.SelectedTask()
		if !ok || t.Status != model.TaskStatusDeleted {
			return m, nil, true
		}
		return m, m.recoverTask(t.ID), true

	case key.Matches(msg, m.keys.Comment):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		m.commentTaskID = t.ID
		m.previousView = m.currentView
		m.currentView = ViewComment
		m.comp.Reset()
		return m, m.comp.Focus(), true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewComment:
		m.comp, cmd = m.comp.Update(msg)
	default:
		// Inbox state still absorbs background loads while hidden.
		if _, ok := msg.(inboxview.InboxLoadedMsg); ok {
			m.inboxView, cmd = m.inboxView.Update(msg)
		}
	}

	return m, cmd
}

// routeLink switches views based on a notification deep link. Links the
// actor's role cannot open are surfaced instead of silently ignored.
func (m Model) routeLink(link string) (tea.Model, tea.Cmd) {
	if !access.Allowed(m.deps.Session.Role, link) {
		m.statusMessage = "you do not have access to " + link
		return m, nil
	}
	switch {
	case strings.HasPrefix(link, "/tasks"):
		m.currentView = ViewTasks
		return m, m.taskList.LoadTasks()
	case strings.HasPrefix(link, "/moodboards"):
		m.currentView = ViewMoodboards
		return m, m.loadBoards()
	case strings.HasPrefix(link, "/library"):
		m.currentView = ViewLibrary
		return m, m.loadLibrary()
	case strings.HasPrefix(link, "/accounting"):
		m.currentView = ViewAccounting
		return m, m.loadAccounting()
	}
	return m, nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Atelier"
	badge := ""
	if n := m.inboxView.UnreadCount(); n > 0 {
		badge = fmt.Sprintf("%d unread", n)
	}

	header := m.layout.RenderHeader(title, badge)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewTasks:
		return m.taskList.View()
	case ViewInbox:
		return m.inboxView.View()
	case ViewMoodboards:
		return m.renderBoards()
	case ViewLibrary:
		return m.renderLibrary()
	case ViewAccounting:
		return m.renderAccounting()
	case ViewHelp:
		return m.renderHelp()
	case ViewTaskCreate, ViewTaskEdit:
		return m.taskForm.View()
	case ViewComment:
		return m.comp.View()
	default:
		return ""
	}
}

func (m Model) renderBoards() string {
	if len(m.boards) == 0 {
		return emptyStyle().Render("No moodboards yet.")
	}
	var b strings.Builder
	for _, board := range m.boards {
		line := board.Name
		if board.Season != "" {
			line += theme.HelpStyle.Render("  " + board.Season)
		}
		b.WriteString(theme.ListItemStyle.Render(line) + "\n")
	}
	return b.String()
}

func (m Model) renderLibrary() string {
	if len(m.materials) == 0 && len(m.labels) == 0 {
		return emptyStyle().Render("Library is empty.")
	}
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Materials") + "\n")
	for _, mat := range m.materials {
		line := mat.Name
		if mat.Supplier != "" {
			line += theme.HelpStyle.Render("  " + mat.Supplier)
		}
		if mat.Reference != "" {
			line += theme.HelpStyle.Render("  ref " + mat.Reference)
		}
		b.WriteString(theme.ListItemStyle.Render(line) + "\n")
	}
	b.WriteString("\n" + theme.HeaderStyle.Render("Labels") + "\n")
	for _, l := range m.labels {
		line := l.Name
		if l.Kind != "" {
			line += theme.HelpStyle.Render("  " + l.Kind)
		}
		b.WriteString(theme.ListItemStyle.Render(line) + "\n")
	}
	return b.String()
}

func (m Model) renderAccounting() string {
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Orders") + "\n")
	if len(m.orders) == 0 {
		b.WriteString(emptyStyle().Render("No orders.") + "\n")
	}
	for _, o := range m.orders {
		line := fmt.Sprintf("%s %s %s",
			theme.OrderStatusStyle(o.Status).Render(o.Status),
			o.Vendor,
			formatAmount(o.AmountCents, o.Currency),
		)
		if o.DueDate != nil {
			line += theme.HelpStyle.Render("  due " + o.DueDate.Format("Jan 02"))
		}
		b.WriteString(theme.ListItemStyle.Render(line) + "\n")
	}

	b.WriteString("\n" + theme.HeaderStyle.Render("Subscriptions") + "\n")
	for _, sub := range m.subs {
		line := fmt.Sprintf("%s %s/%s",
			sub.Vendor,
			formatAmount(sub.AmountCents, sub.Currency),
			sub.Interval,
		)
		if !sub.Active {
			line += theme.HelpStyle.Render("  inactive")
		}
		b.WriteString(theme.ListItemStyle.Render(line) + "\n")
	}
	if len(m.subs) > 0 {
		total := accounting.MonthlyTotalCents(m.subs)
		b.WriteString(theme.ListItemStyle.Render(
			theme.UnreadStyle.Render(fmt.Sprintf("≈ %s/month", formatAmount(total, "EUR"))),
		) + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewInbox:
		return "enter open | m mark read | M mark all | D clear | r refresh | esc back"
	case ViewTaskCreate, ViewTaskEdit:
		return "enter submit | esc cancel"
	case ViewComment:
		return "ctrl+s send | @ mention | esc cancel"
	case ViewHelp:
		return "? close help"
	case ViewMoodboards, ViewLibrary, ViewAccounting:
		return "1 tasks | 2 inbox | q quit"
	default:
		return "enter open | n new | x done | d delete | u recover | tab status | ? help"
	}
}

func emptyStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.ColorGray).Padding(1, 2)
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}

// === Commands ===

const cmdTimeout = 10 * time.Second

func (m Model) loadProfiles() tea.Cmd {
	st := m.deps.Store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		profiles, err := st.ListProfiles(ctx)
		if err != nil {
			return profilesLoadedMsg{}
		}
		return profilesLoadedMsg{profiles: profiles}
	}
}

func (m Model) createTask(t model.Task, assigneeIDs []string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		created, err := d.Tasks.Create(ctx, d.Session, t)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if len(assigneeIDs) > 0 {
			err = d.Tasks.Assign(ctx, d.Session, created.ID, assigneeIDs)
		}
		return actionDoneMsg{err: err}
	}
}

func (m Model) updateTask(t model.Task, assigneeIDs []string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if err := d.Store.UpdateTask(ctx, t); err != nil {
			return actionDoneMsg{err: err}
		}
		err := d.Tasks.Assign(ctx, d.Session, t.ID, assigneeIDs)
		return actionDoneMsg{err: err}
	}
}

func (m Model) toggleComplete(t model.Task) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		var err error
		if t.Status == model.TaskStatusCompleted {
			_, err = d.Tasks.Reopen(ctx, t.ID)
		} else {
			_, err = d.Tasks.Complete(ctx, d.Session, t.ID)
		}
		return actionDoneMsg{err: err}
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		_, err := d.Tasks.SoftDelete(ctx, id)
		return actionDoneMsg{err: err}
	}
}

func (m Model) purgeTask(id string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		err := d.Tasks.Purge(ctx, d.Session, id)
		return actionDoneMsg{err: err}
	}
}

func (m Model) purgeExpired() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		_, err := d.Tasks.PurgeExpired(ctx, d.Session)
		return actionDoneMsg{err: err}
	}
}

func (m Model) recoverTask(id string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		_, err := d.Tasks.Recover(ctx, id)
		return actionDoneMsg{err: err}
	}
}

func (m Model) postComment(content string, taggedIDs []string) tea.Cmd {
	d := m.deps
	taskID := m.commentTaskID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		_, err := d.Comments.Create(ctx, d.Session, comment.CreateInput{
			EntityType:    "task",
			EntityID:      taskID,
			Content:       content,
			TaggedUserIDs: taggedIDs,
			Link:          "/tasks/" + taskID,
		})
		return actionDoneMsg{err: err}
	}
}

func (m Model) loadBoards() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		boards, err := d.Moodboards.Boards(ctx)
		return boardsLoadedMsg{boards: boards, err: err}
	}
}

func (m Model) loadLibrary() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		materials, err := d.Library.Materials(ctx)
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		labels, err := d.Library.Labels(ctx)
		return libraryLoadedMsg{materials: materials, labels: labels, err: err}
	}
}

func (m Model) loadAccounting() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		orders, err := d.Accounting.Orders(ctx, d.Session)
		if err != nil {
			return accountingLoadedMsg{err: err}
		}
		subs, err := d.Accounting.Subscriptions(ctx, d.Session)
		return accountingLoadedMsg{orders: orders, subs: subs, err: err}
	}
}

// waitForFeed blocks on the next pushed change-feed event.
func (m Model) waitForFeed() tea.Cmd {
	ch := m.deps.Events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return feedEventMsg{ev: ev}
	}
}
