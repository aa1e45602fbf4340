package composer

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/atelier/internal/mention"
	"github.com/atelierhq/atelier/internal/model"
	"github.com/atelierhq/atelier/internal/theme"
)

// SubmitMsg carries a finished comment out of the composer.
type SubmitMsg struct {
	Content       string
	TaggedUserIDs []string
}

// CancelMsg is sent when the user abandons the composer.
type CancelMsg struct{}

// Model is a mention-aware comment composer. While the mention dropdown
// is open, navigation and commit keys act on the dropdown instead of the
// textarea.
type Model struct {
	input   textarea.Model
	session *mention.Session

	// tagged accumulates profiles committed through the dropdown, keyed
	// by id so re-mentioning someone does not duplicate the tag.
	tagged map[string]model.Profile

	width int
}

// New creates a composer over the given mention candidates.
func New(candidates []model.Profile, width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Write a comment… use @ to mention"
	ta.SetWidth(width - 4)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false

	return Model{
		input:   ta,
		session: mention.NewSession(candidates),
		tagged:  make(map[string]model.Profile),
		width:   width,
	}
}

// SetCandidates replaces the mention candidate pool.
func (m *Model) SetCandidates(candidates []model.Profile) {
	m.session.SetCandidates(candidates)
}

// Focus puts the textarea into input mode.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the composer for the next comment.
func (m *Model) Reset() {
	m.input.Reset()
	m.tagged = make(map[string]model.Profile)
	m.session.Update("")
}

// Update handles messages for the composer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if st := m.session.State(); st.Active && len(st.Matches) > 0 {
		switch keyMsg.String() {
		case "down", "ctrl+n":
			m.session.Next()
			return m, nil
		case "up", "ctrl+p":
			m.session.Prev()
			return m, nil
		case "enter", "tab":
			newText, p := m.session.Commit(m.input.Value())
			if p != nil {
				m.tagged[p.ID] = *p
				m.input.SetValue(newText)
			}
			return m, nil
		case "esc":
			m.session.Dismiss()
			return m, nil
		}
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg { return CancelMsg{} }
	case "ctrl+s":
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			return m, nil
		}
		// The tag list is independent of later text edits; deleting an
		// "@Name" substring does not retroactively untag the person.
		ids := make([]string, 0, len(m.tagged))
		for id := range m.tagged {
			ids = append(ids, id)
		}
		return m, func() tea.Msg {
			return SubmitMsg{Content: content, TaggedUserIDs: ids}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.Update(m.input.Value())
	return m, cmd
}

// View renders the textarea with the mention dropdown beneath it when
// one is open.
func (m Model) View() string {
	parts := []string{m.input.View()}

	st := m.session.State()
	if st.Active && len(st.Matches) > 0 {
		var rows []string
		for i, p := range st.Matches {
			row := p.DisplayName()
			if i == st.Selected {
				row = theme.SelectedItemStyle.Render(row)
			} else {
				row = theme.ListItemStyle.Render(row)
			}
			rows = append(rows, row)
		}
		parts = append(parts, theme.MentionDropdownStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		))
	}

	hint := theme.HelpStyle.Render("ctrl+s send · esc cancel")
	parts = append(parts, hint)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetWidth updates the composer width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.input.SetWidth(width - 4)
}

// TaggedCount reports how many distinct profiles are tagged so far.
func (m Model) TaggedCount() int {
	return len(m.tagged)
}
