package conversation

import (
	"context"
	"strings"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// SendChat submits a prompt to the chat view.
func (s *Service) SendChat(ctx context.Context, id domain.SessionID, text string) (*SendOutput, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil, domain.ErrEmptyInput
	}

	st, err := s.stateFor(id, domain.ViewChat)
	if err != nil {
		return nil, err
	}

	return s.cycle(ctx, st, turn{
		userText: text,
		ask: func(ctx context.Context) (string, []domain.Source, error) {
			reply, err := s.assistant.SendText(ctx, prompt)
			return reply, nil, err
		},
	})
}
