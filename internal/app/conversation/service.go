package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/gemini-suite/internal/app/session"
	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

// Service is the view controller layer: it turns user input into
// assistant calls and records the exchange in the session log.
type Service struct {
	assistant     domain.Assistant
	sessions      *session.Manager
	previews      domain.PreviewStore
	maxImageBytes int64
	now           func() time.Time
}

func NewService(
	assistant domain.Assistant,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	previewStore domain.PreviewStore,
	maxImageBytes int64,
) *Service {
	return &Service{
		assistant:     assistant,
		sessions:      session.NewManager(sessionStore, messageStore, previewStore),
		previews:      previewStore,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// Views returns the catalogue in navigation order.
func (s *Service) Views() []ViewInfo {
	out := make([]ViewInfo, 0, len(domain.Views))
	for _, v := range domain.Views {
		out = append(out, viewCatalogue[v])
	}
	return out
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome domain.Message
}

// StartSession mounts a view.
func (s *Service) StartSession(ctx context.Context, view domain.View) (*StartSessionOutput, error) {
	info, ok := viewCatalogue[view]
	if !ok {
		return nil, fmt.Errorf("unknown view %q: %w", view, domain.ErrWrongView)
	}

	st, welcome, err := s.sessions.Open(ctx, view, info.Welcome)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to open session", "view", view, "error", err)
		return nil, err
	}

	sess, err := s.sessions.Session(st.ID())
	if err != nil {
		return nil, err
	}

	return &StartSessionOutput{Session: sess, Welcome: welcome}, nil
}

type TimelineOutput struct {
	Session  *domain.Session
	Messages []domain.Message
	Busy     bool
}

func (s *Service) GetSessionTimeline(ctx context.Context, id domain.SessionID) (*TimelineOutput, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", id)

	st, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Session(id)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, err
	}

	msgs, err := st.Messages()
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, err
	}

	log.Debug("fetched session timeline", "message_count", len(msgs))

	return &TimelineOutput{Session: sess, Messages: msgs, Busy: st.Busy()}, nil
}

// EndSession unmounts a view and releases everything it holds.
func (s *Service) EndSession(ctx context.Context, id domain.SessionID) error {
	return s.sessions.Close(ctx, id)
}

// stateFor returns the live state of id, checking it belongs to view.
func (s *Service) stateFor(id domain.SessionID, view domain.View) (*session.State, error) {
	st, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if st.View() != view {
		return nil, fmt.Errorf("session %s is a %s session: %w", id, st.View(), domain.ErrWrongView)
	}
	return st, nil
}

// ViewOf reports which view a live session belongs to.
func (s *Service) ViewOf(_ context.Context, id domain.SessionID) (domain.View, error) {
	st, err := s.sessions.Get(id)
	if err != nil {
		return "", err
	}
	return st.View(), nil
}
