package domain

import "context"

// Assistant is the adapter layer in front of the hosted generative model.
// Every call is one-shot: no history is sent and nothing is streamed.
type Assistant interface {
	SendText(ctx context.Context, prompt string) (string, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
	SearchWithGrounding(ctx context.Context, query string) (SearchResult, error)
}

// SearchResult is the outcome of a grounded search. Sources may be empty.
type SearchResult struct {
	Text    string
	Sources []Source
}

// SessionStore defines session's bookkeeping for the lifetime of the process
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	DeleteSession(id SessionID) error
	CountByView(view View) int
}

// MessageStore defines the append-only message log
type MessageStore interface {
	AppendMessage(msg Message) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]Message, error)
	DeleteMessagesBySession(sessionID SessionID) error
}

// PreviewStore keeps uploaded images until they are released.
type PreviewStore interface {
	PutPreview(p *Preview) error
	GetPreview(sessionID SessionID, id PreviewID) (*Preview, error)
	ReleasePreview(sessionID SessionID, id PreviewID) error
	ReleaseSession(sessionID SessionID) int
}
