// Package visibility tracks which categories a profile has hidden, with a
// staged edit session in front of the persisted set.
package visibility

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/xcview/internal/domain"
	"github.com/mmcdole/xcview/internal/store"
)

// ErrNotEditing is returned by operations that require an edit session
var ErrNotEditing = errors.New("category visibility is not being edited")

// State is the edit state of one (profile, media type) pair
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

type sessionKey struct {
	profile string
	t       domain.MediaType
}

// session is an open edit. staged starts as a copy of the committed set.
type session struct {
	id     uuid.UUID
	staged []string
}

// Manager holds the edit sessions of every (profile, media type) pair.
// A pair with no session is Viewing.
type Manager struct {
	store  domain.ProfileStore
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

// NewManager creates a category visibility manager
func NewManager(s domain.ProfileStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    s,
		logger:   logger,
		sessions: make(map[sessionKey]*session),
	}
}

// committed reads the persisted set. A read failure counts as nothing hidden.
func (m *Manager) committed(profile string, t domain.MediaType) []string {
	hidden, err := m.store.GetStrings(profile, store.HiddenCategoriesKey(t))
	if err != nil {
		m.logger.Warn("failed to read hidden categories", "profile", profile, "type", t, "error", err)
		return []string{}
	}
	return hidden
}

// State returns the current state of the pair
func (m *Manager) State(profile string, t domain.MediaType) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionKey{profile, t}]; ok {
		return Editing
	}
	return Viewing
}

// Enter starts an edit session with a staged copy of the committed set and
// returns its id. Entering while already Editing keeps the open session.
func (m *Manager) Enter(profile string, t domain.MediaType) uuid.UUID {
	key := sessionKey{profile, t}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s.id
	}

	s := &session{id: uuid.New(), staged: slices.Clone(m.committed(profile, t))}
	m.sessions[key] = s
	m.logger.Debug("entered category edit", "session", s.id, "profile", profile, "type", t, "hidden", len(s.staged))
	return s.id
}

// Hide stages categoryID as hidden
func (m *Manager) Hide(profile string, t domain.MediaType, categoryID string) error {
	return m.edit(profile, t, func(s *session) {
		if !slices.Contains(s.staged, categoryID) {
			s.staged = append(s.staged, categoryID)
		}
	})
}

// Show stages categoryID as visible
func (m *Manager) Show(profile string, t domain.MediaType, categoryID string) error {
	return m.edit(profile, t, func(s *session) {
		s.staged = slices.DeleteFunc(s.staged, func(id string) bool { return id == categoryID })
	})
}

func (m *Manager) edit(profile string, t domain.MediaType, fn func(*session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{profile, t}]
	if !ok {
		return ErrNotEditing
	}
	fn(s)
	return nil
}

// CommitAndExit persists the staged set and returns to Viewing. When the
// write fails the error is returned and the session stays open.
func (m *Manager) CommitAndExit(profile string, t domain.MediaType) error {
	key := sessionKey{profile, t}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return ErrNotEditing
	}
	if err := m.store.SetStrings(profile, store.HiddenCategoriesKey(t), s.staged); err != nil {
		m.logger.Error("failed to save hidden categories", "session", s.id, "profile", profile, "type", t, "error", err)
		return err
	}
	delete(m.sessions, key)
	m.logger.Debug("committed category edit", "session", s.id, "profile", profile, "type", t, "hidden", len(s.staged))
	return nil
}

// Discard drops the staged edits and returns to Viewing. It is what
// navigating away from an edit session does.
func (m *Manager) Discard(profile string, t domain.MediaType) {
	key := sessionKey{profile, t}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		delete(m.sessions, key)
		m.logger.Debug("discarded category edit", "session", s.id, "profile", profile, "type", t)
	}
}

// Hidden returns the staged set while Editing and the committed set otherwise
func (m *Manager) Hidden(profile string, t domain.MediaType) []string {
	m.mu.Lock()
	s, ok := m.sessions[sessionKey{profile, t}]
	var staged []string
	if ok {
		staged = slices.Clone(s.staged)
	}
	m.mu.Unlock()

	if ok {
		return staged
	}
	return m.committed(profile, t)
}

// Committed returns the persisted set regardless of any open session
func (m *Manager) Committed(profile string, t domain.MediaType) []string {
	return m.committed(profile, t)
}

// Visible returns the categories not currently hidden, in listing order
func (m *Manager) Visible(profile string, t domain.MediaType, categories []domain.Category) []domain.Category {
	hidden := m.Hidden(profile, t)
	return slices.DeleteFunc(slices.Clone(categories), func(c domain.Category) bool {
		return slices.Contains(hidden, c.ID)
	})
}

// HiddenCategories returns the categories currently hidden, in listing order
func (m *Manager) HiddenCategories(profile string, t domain.MediaType, categories []domain.Category) []domain.Category {
	hidden := m.Hidden(profile, t)
	return slices.DeleteFunc(slices.Clone(categories), func(c domain.Category) bool {
		return !slices.Contains(hidden, c.ID)
	})
}
