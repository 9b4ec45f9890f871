package memory

import (
	"sync"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// MessageStore keeps one append-only log per session. Messages are copied
// on the way in and out, so stored entries never change.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]domain.Message),
	}
}

func (s *MessageStore) AppendMessage(msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg.Clone())
	return nil
}

// GetMessagesBySession returns the last `limit` messages in creation order.
// If limit <= 0, returns all.
func (s *MessageStore) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *MessageStore) DeleteMessagesBySession(sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}
