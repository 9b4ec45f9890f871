package memory

import (
	"sync"

	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

// PreviewStore is an in-memory implementation of domain.PreviewStore.
// Bytes stay in memory until released, so every preview must be released
// when superseded, cleared or when its session ends.
type PreviewStore struct {
	mu          sync.RWMutex
	previews    map[domain.PreviewID]*domain.Preview
	bySessionID map[domain.SessionID][]domain.PreviewID
	heldBytes   int
}

// NewPreviewStore creates a new in-memory PreviewStore.
func NewPreviewStore() *PreviewStore {
	return &PreviewStore{
		previews:    make(map[domain.PreviewID]*domain.Preview),
		bySessionID: make(map[domain.SessionID][]domain.PreviewID),
	}
}

// PutPreview saves a preview under its session. The ID must be set.
func (s *PreviewStore) PutPreview(p *domain.Preview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.previews[p.ID]; ok {
		s.drop(old)
	}

	s.previews[p.ID] = p
	s.bySessionID[p.SessionID] = append(s.bySessionID[p.SessionID], p.ID)
	s.account(len(p.Data))
	return nil
}

// GetPreview returns the preview if it belongs to sessionID.
func (s *PreviewStore) GetPreview(sessionID domain.SessionID, id domain.PreviewID) (*domain.Preview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.previews[id]
	if !ok || p.SessionID != sessionID {
		return nil, domain.ErrPreviewNotFound
	}
	return p, nil
}

// ReleasePreview frees one preview.
func (s *PreviewStore) ReleasePreview(sessionID domain.SessionID, id domain.PreviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.previews[id]
	if !ok || p.SessionID != sessionID {
		return domain.ErrPreviewNotFound
	}
	s.drop(p)
	return nil
}

// ReleaseSession frees every preview of a session and returns how many there were.
func (s *PreviewStore) ReleaseSession(sessionID domain.SessionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := append([]domain.PreviewID(nil), s.bySessionID[sessionID]...)
	n := 0
	for _, id := range ids {
		if p, ok := s.previews[id]; ok {
			s.drop(p)
			n++
		}
	}
	delete(s.bySessionID, sessionID)
	return n
}

// HeldBytes reports the bytes currently retained.
func (s *PreviewStore) HeldBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heldBytes
}

// drop removes p; callers hold the write lock.
func (s *PreviewStore) drop(p *domain.Preview) {
	delete(s.previews, p.ID)

	ids := s.bySessionID[p.SessionID]
	for i, id := range ids {
		if id == p.ID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.bySessionID, p.SessionID)
	} else {
		s.bySessionID[p.SessionID] = ids
	}

	s.account(-len(p.Data))
}

func (s *PreviewStore) account(delta int) {
	s.heldBytes += delta
	observability.AddPreviewBytes(delta)
}
