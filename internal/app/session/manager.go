package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

// Manager owns the live State of every mounted view.
type Manager struct {
	mu     sync.RWMutex
	states map[domain.SessionID]*State

	sessions domain.SessionStore
	messages domain.MessageStore
	previews domain.PreviewStore
	now      func() time.Time
}

func NewManager(sessions domain.SessionStore, messages domain.MessageStore, previews domain.PreviewStore) *Manager {
	return &Manager{
		states:   make(map[domain.SessionID]*State),
		sessions: sessions,
		messages: messages,
		previews: previews,
		now:      time.Now,
	}
}

// Open creates the session of a newly mounted view, seeded with exactly
// one bot welcome message.
func (m *Manager) Open(ctx context.Context, view domain.View, welcome string) (*State, domain.Message, error) {
	now := m.now()
	sess := domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		View:      view,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.sessions.CreateSession(&sess); err != nil {
		return nil, domain.Message{}, err
	}

	st := &State{
		session:  sess,
		sessions: m.sessions,
		messages: m.messages,
		now:      m.now,
	}

	msg, err := st.AppendBot(welcome, nil)
	if err != nil {
		_ = m.sessions.DeleteSession(sess.ID)
		return nil, domain.Message{}, err
	}

	m.mu.Lock()
	m.states[sess.ID] = st
	m.mu.Unlock()

	observability.SetSessionsOpen(string(view), m.sessions.CountByView(view))
	observability.LoggerFromContext(ctx).Info("session opened",
		"session_id", sess.ID,
		"view", view)

	return st, msg, nil
}

func (m *Manager) Get(id domain.SessionID) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return st, nil
}

// Session returns the stored metadata of a live session.
func (m *Manager) Session(id domain.SessionID) (*domain.Session, error) {
	return m.sessions.GetSession(id)
}

// Close discards a session: its messages, its previews and its record.
// A request still in flight finishes against the remote service but its
// reply is dropped.
func (m *Manager) Close(ctx context.Context, id domain.SessionID) error {
	m.mu.Lock()
	st, ok := m.states[id]
	if ok {
		delete(m.states, id)
	}
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}

	st.markClosed()

	released := m.previews.ReleaseSession(id)
	if err := m.messages.DeleteMessagesBySession(id); err != nil {
		return err
	}
	if err := m.sessions.DeleteSession(id); err != nil {
		return err
	}

	observability.SetSessionsOpen(string(st.View()), m.sessions.CountByView(st.View()))
	observability.LoggerFromContext(ctx).Info("session closed",
		"session_id", id,
		"view", st.View(),
		"previews_released", released)

	return nil
}
