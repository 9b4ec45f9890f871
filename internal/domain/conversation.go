package domain

// Source is a web citation attached to a grounded answer.
type Source struct {
	URI   string
	Title string
}

// DefaultSourceTitle is used when a grounding chunk carries a URI without a title.
const DefaultSourceTitle = "Source"

// Message represents one entry of a session timeline.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Sender    Sender
	Text      string
	CreatedAt Timestamp

	// ImageURL points at the preview of an uploaded image (user messages only).
	ImageURL string
	// Sources is nil unless the message came from search grounding.
	Sources []Source
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Source(nil), m.Sources...)
	}
	return m
}

// NormalizeSources drops sources without a URI, defaults empty titles and
// returns nil instead of an empty list.
func NormalizeSources(in []Source) []Source {
	var out []Source
	for _, s := range in {
		if s.URI == "" {
			continue
		}
		if s.Title == "" {
			s.Title = DefaultSourceTitle
		}
		out = append(out, s)
	}
	return out
}

// Session represents one mounted view. It lives until the view is closed.
type Session struct {
	ID        SessionID
	View      View
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Preview is a locally held copy of an uploaded image.
type Preview struct {
	ID        PreviewID
	SessionID SessionID
	MIMEType  string
	Data      []byte
	CreatedAt Timestamp
}
