// Package mention extracts @name tokens from free text and resolves them
// against a candidate profile list. The parser is pure; Session adds the
// small amount of state the keyboard contract needs (selection cursor and
// the Escape dismissal latch).
package mention

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atelierhq/atelier/internal/model"
)

// MaxQueryLen is the runaway-input guard: once the text after the
// triggering '@' exceeds this many characters without being committed,
// it is treated as plain text rather than a mention in progress.
const MaxQueryLen = 50

// State is the result of parsing the composer text. It is recomputed on
// every keystroke and never persisted.
type State struct {
	// Active reports whether a mention context is open at the end of
	// the text.
	Active bool

	// Start is the byte offset of the triggering '@'.
	Start int

	// Query is the text between the '@' and the end of input.
	Query string

	// Matches is the filtered candidate list, in candidate order.
	Matches []model.Profile

	// Selected indexes Matches; it is only meaningful while Active.
	Selected int
}

// Parse inspects text for a trailing mention context against the given
// candidates. The '@' only opens a context at position 0 or after
// whitespace, so emails and mid-word '@' never trigger it.
func Parse(text string, candidates []model.Profile) State {
	start := strings.LastIndex(text, "@")
	if start < 0 {
		return State{}
	}
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsSpace(prev) {
			return State{}
		}
	}

	query := text[start+1:]
	if utf8.RuneCountInString(query) > MaxQueryLen {
		return State{}
	}

	// Auto-close: the query already spells out a candidate's display
	// name followed by a boundary, so the mention is resolved by the
	// text itself.
	if resolved(query, candidates) {
		return State{}
	}

	return State{
		Active:  true,
		Start:   start,
		Query:   query,
		Matches: filter(query, candidates),
	}
}

// resolved reports whether query begins with a complete candidate display
// name followed by whitespace or punctuation.
func resolved(query string, candidates []model.Profile) bool {
	for _, p := range candidates {
		name := p.DisplayName()
		if len(query) <= len(name) {
			continue
		}
		if !strings.EqualFold(query[:len(name)], name) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(query[len(name):])
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}

// filter returns the candidates whose "first last" or full-name form
// contains the query case-insensitively. An empty query matches everyone.
func filter(query string, candidates []model.Profile) []model.Profile {
	if query == "" {
		return append([]model.Profile(nil), candidates...)
	}

	q := strings.ToLower(query)
	var matches []model.Profile
	for _, p := range candidates {
		split := strings.ToLower(strings.TrimSpace(p.FirstName + " " + p.LastName))
		full := strings.ToLower(p.FullName)
		if strings.Contains(split, q) || (full != "" && strings.Contains(full, q)) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Session tracks one composer's mention lifecycle: the current parse
// state, the selection cursor, and the force-closed latch set by Escape.
type Session struct {
	candidates []model.Profile

	state State

	dismissed      bool
	dismissedQuery string
}

// NewSession creates a mention session over the given candidate profiles.
func NewSession(candidates []model.Profile) *Session {
	return &Session{candidates: candidates}
}

// SetCandidates replaces the candidate list, e.g. after a profile refetch.
func (s *Session) SetCandidates(candidates []model.Profile) {
	s.candidates = candidates
}

// Update re-parses the text and returns the new state. The selection
// cursor survives as long as the query is unchanged; the Escape latch
// holds until the query materially changes.
func (s *Session) Update(text string) State {
	st := Parse(text, s.candidates)

	if s.dismissed {
		if st.Active && st.Query == s.dismissedQuery {
			st = State{}
		} else {
			s.dismissed = false
		}
	}

	if st.Active && s.state.Active && s.state.Query == st.Query && s.state.Selected < len(st.Matches) {
		st.Selected = s.state.Selected
	}

	s.state = st
	return st
}

// State returns the last computed state.
func (s *Session) State() State {
	return s.state
}

// Next moves the selection cursor down, wrapping at the end of the list.
func (s *Session) Next() State {
	if s.state.Active && len(s.state.Matches) > 0 {
		s.state.Selected = (s.state.Selected + 1) % len(s.state.Matches)
	}
	return s.state
}

// Prev moves the selection cursor up, wrapping at the start of the list.
func (s *Session) Prev() State {
	if s.state.Active && len(s.state.Matches) > 0 {
		s.state.Selected = (s.state.Selected - 1 + len(s.state.Matches)) % len(s.state.Matches)
	}
	return s.state
}

// Dismiss force-closes the dropdown without committing. The closed state
// latches until the query changes, so the dropdown does not pop back open
// on the very next keystroke of the same query.
func (s *Session) Dismiss() {
	if !s.state.Active {
		return
	}
	s.dismissed = true
	s.dismissedQuery = s.state.Query
	s.state = State{}
}

// Commit resolves the highlighted candidate into text: everything from
// the '@' through the end of the query is replaced with "@DisplayName "
// and the profile is returned so the caller can record the tagged id.
// The tagged-id list is the caller's to keep; later text edits never
// retroactively untag anyone.
//
// Commit returns the input unchanged and a nil profile when no mention
// context is active or the filtered list is empty.
func (s *Session) Commit(text string) (string, *model.Profile) {
	st := s.state
	if !st.Active || len(st.Matches) == 0 {
		return text, nil
	}

	p := st.Matches[st.Selected]
	end := st.Start + 1 + len(st.Query)
	newText := text[:st.Start] + "@" + p.DisplayName() + " " + text[end:]

	s.state = State{}
	s.dismissed = false
	return newText, &p
}
