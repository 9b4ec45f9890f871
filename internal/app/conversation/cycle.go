package conversation

import (
	"context"

	"github.com/PabloGalante/gemini-suite/internal/app/session"
	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

type SendOutput struct {
	UserMessage domain.Message
	BotMessage  domain.Message
}

// turn is one user submission and the way to answer it.
type turn struct {
	userText string
	imageURL string

	// ask calls the assistant. When nil, reply is used as is.
	ask   func(ctx context.Context) (string, []domain.Source, error)
	reply string
}

// cycle runs a full request cycle guarded by the busy flag.
func (s *Service) cycle(ctx context.Context, st *session.State, t turn) (*SendOutput, error) {
	if !st.BeginRequest() {
		return nil, domain.ErrBusy
	}
	defer st.EndRequest()

	return s.exchange(ctx, st, t)
}

// exchange appends the user message, asks the assistant and appends exactly
// one bot message. The caller holds the busy flag.
func (s *Service) exchange(ctx context.Context, st *session.State, t turn) (*SendOutput, error) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", st.ID(),
		"view", st.View(),
	)

	userMsg, err := st.AppendUser(t.userText, t.imageURL)
	if err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	text, sources := t.reply, []domain.Source(nil)
	if t.ask != nil {
		// Dispatched calls run to completion even if the client goes away.
		text, sources, err = t.ask(context.WithoutCancel(ctx))
		if err != nil {
			log.Warn("assistant call failed", "kind", domain.FailureKindOf(err), "error", err)
			text, sources = failureText(st.View()), nil
		}
	}

	botMsg, err := st.AppendBot(text, sources)
	if err != nil {
		log.Error("failed to append bot message", "error", err)
		return nil, err
	}

	log.Info("request cycle completed", "sources", len(botMsg.Sources))

	return &SendOutput{UserMessage: userMsg, BotMessage: botMsg}, nil
}
