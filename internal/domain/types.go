package domain

import "time"

type SessionID string
type MessageID string
type PreviewID string

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// View is one of the three front ends a session can belong to.
type View string

const (
	ViewChat   View = "chat"   // plain text conversation
	ViewVision View = "vision" // image upload + prompt
	ViewSearch View = "search" // web-search grounded answers
)

// Views lists every view in navigation order.
var Views = []View{ViewChat, ViewVision, ViewSearch}

// ParseView returns the view named by s and whether it is known.
func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

type Timestamp = time.Time
