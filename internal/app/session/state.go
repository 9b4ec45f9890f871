// Package session holds the per-view session state: an append-only
// message log, a busy flag guarding the single in-flight request and the
// vision view's staged upload.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// State is the live state of one mounted view. It is safe for concurrent use.
type State struct {
	mu sync.Mutex

	session  domain.Session
	sessions domain.SessionStore
	messages domain.MessageStore
	now      func() time.Time

	busy   bool
	closed bool
	staged *domain.Preview
}

func (s *State) ID() domain.SessionID { return s.session.ID }

func (s *State) View() domain.View { return s.session.View }

// AppendUser appends a user message. imageURL may be empty.
func (s *State) AppendUser(text, imageURL string) (domain.Message, error) {
	return s.append(domain.Message{
		Sender:   domain.SenderUser,
		Text:     text,
		ImageURL: imageURL,
	})
}

// AppendBot appends a bot message. Sources are normalized first, so an
// empty or fully invalid list is stored as absent.
func (s *State) AppendBot(text string, sources []domain.Source) (domain.Message, error) {
	return s.append(domain.Message{
		Sender:  domain.SenderBot,
		Text:    text,
		Sources: domain.NormalizeSources(sources),
	})
}

func (s *State) append(msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Message{}, domain.ErrSessionNotFound
	}

	now := s.now()
	msg.ID = domain.MessageID(uuid.NewString())
	msg.SessionID = s.session.ID
	msg.CreatedAt = now

	if err := s.messages.AppendMessage(msg); err != nil {
		return domain.Message{}, err
	}

	s.session.UpdatedAt = now
	if err := s.sessions.UpdateSession(&s.session); err != nil {
		return domain.Message{}, err
	}

	return msg.Clone(), nil
}

// Messages returns the whole log in creation order.
func (s *State) Messages() ([]domain.Message, error) {
	return s.messages.GetMessagesBySession(s.session.ID, 0)
}

// BeginRequest sets the busy flag. It reports false, and changes nothing,
// when a request is already in flight; the caller must then reject.
func (s *State) BeginRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// EndRequest clears the busy flag.
func (s *State) EndRequest() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Stage sets the pending upload and returns the one it supersedes, if any.
// A closed session stages nothing and reports ErrSessionNotFound; the
// caller still owns p.
func (s *State) Stage(p *domain.Preview) (superseded *domain.Preview, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionNotFound
	}
	superseded, s.staged = s.staged, p
	return superseded, nil
}

// TakeStaged removes and returns the pending upload.
func (s *State) TakeStaged() *domain.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.staged
	s.staged = nil
	return p
}

// Staged returns the pending upload without removing it.
func (s *State) Staged() *domain.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged
}

func (s *State) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.staged = nil
	s.mu.Unlock()
}
