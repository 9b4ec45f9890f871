package conversation

import (
	"context"
	"strings"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// SendSearch submits a query to the search view. Sources are normalized
// when the bot message is appended.
func (s *Service) SendSearch(ctx context.Context, id domain.SessionID, text string) (*SendOutput, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, domain.ErrEmptyInput
	}

	st, err := s.stateFor(id, domain.ViewSearch)
	if err != nil {
		return nil, err
	}

	return s.cycle(ctx, st, turn{
		userText: text,
		ask: func(ctx context.Context) (string, []domain.Source, error) {
			res, err := s.assistant.SearchWithGrounding(ctx, query)
			return res.Text, res.Sources, err
		},
	})
}
