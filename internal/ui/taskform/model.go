package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/theme"
)

// TaskCreatedMsg is dispatched when a new task is submitted via the form.
type TaskCreatedMsg struct {
	Task        model.Task
	AssigneeIDs []string
}

// TaskUpdatedMsg is dispatched when an existing task is updated via the form.
type TaskUpdatedMsg struct {
	Task        model.Task
	AssigneeIDs []string
}

// TaskFormCancelMsg is dispatched when the user cancels the form.
type TaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	deadline    string
	assigneeIDs []string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	profiles []model.Profile
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetProfiles sets the assignable profiles for the assignee selector.
func (m *Model) SetProfiles(profiles []model.Profile) {
	m.profiles = profiles
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.title = ""
	m.fb.description = ""
	m.fb.deadline = ""
	m.fb.assigneeIDs = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.fb.title = t.Title
	m.fb.description = t.Description
	if t.Deadline != nil {
		m.fb.deadline = t.Deadline.Format("2006-01-02")
	} else {
		m.fb.deadline = ""
	}
	m.fb.assigneeIDs = append([]string(nil), t.Assignees...)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs doing?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Deadline").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.deadline).
			Validate(validateOptionalDate),
	}
	if assigneeField := m.assigneeField(); assigneeField != nil {
		fields = append(fields, assigneeField)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) assigneeField() huh.Field {
	if len(m.profiles) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.profiles))
	for i, p := range m.profiles {
		opts[i] = huh.NewOption(p.DisplayName(), p.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assigneeIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	t := model.Task{
		Title:       m.fb.title,
		Description: m.fb.description,
	}

	if m.fb.deadline != "" {
		d, err := time.Parse("2006-01-02", m.fb.deadline)
		if err == nil {
			t.Deadline = &d
		}
	}

	assigneeIDs := m.fb.assigneeIDs

	if m.editMode {
		t.ID = m.editID
		return func() tea.Msg { return TaskUpdatedMsg{Task: t, AssigneeIDs: assigneeIDs} }
	}
	return func() tea.Msg { return TaskCreatedMsg{Task: t, AssigneeIDs: assigneeIDs} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
