package conversation

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

// ImageInput is an uploaded image. An empty MIMEType is sniffed from Data.
type ImageInput struct {
	MIMEType string
	Data     []byte
}

type VisionInput struct {
	Text  string
	Image *ImageInput // optional; supersedes the staged upload
}

// PreviewURL is the path a preview is served under.
func PreviewURL(sessionID domain.SessionID, id domain.PreviewID) string {
	return "/sessions/" + string(sessionID) + "/previews/" + string(id)
}

// SendVision submits the vision view. The image comes from in.Image or,
// when absent, from the staged upload. Without any image the user still
// gets a bot reply asking for one, and no remote call is made.
func (s *Service) SendVision(ctx context.Context, id domain.SessionID, in VisionInput) (*SendOutput, error) {
	st, err := s.stateFor(id, domain.ViewVision)
	if err != nil {
		return nil, err
	}

	var mimeType string
	if in.Image != nil {
		if mimeType, err = s.checkImage(in.Image); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(in.Text) == "" && in.Image == nil && st.Staged() == nil {
		return nil, domain.ErrEmptyInput
	}

	if !st.BeginRequest() {
		return nil, domain.ErrBusy
	}
	defer st.EndRequest()

	var preview *domain.Preview
	if in.Image != nil {
		if preview, err = s.putPreview(id, mimeType, in.Image.Data); err != nil {
			return nil, err
		}
		if old := st.TakeStaged(); old != nil {
			s.release(ctx, old)
		}
	} else {
		preview = st.TakeStaged()
	}

	t := turn{userText: in.Text}
	switch {
	case preview != nil:
		prompt := strings.TrimSpace(in.Text)
		if prompt == "" {
			t.userText = visionDefaultText
		}
		t.imageURL = PreviewURL(id, preview.ID)
		t.ask = func(ctx context.Context) (string, []domain.Source, error) {
			reply, err := s.assistant.AnalyzeImage(ctx, preview.Data, preview.MIMEType, prompt)
			return reply, nil, err
		}
	case strings.TrimSpace(in.Text) == "":
		// The staged upload was cleared while we waited for the flag.
		return nil, domain.ErrEmptyInput
	default:
		t.reply = visionNeedsImage
	}

	out, err := s.exchange(ctx, st, t)
	if err != nil && preview != nil {
		s.release(ctx, preview)
	}
	return out, err
}

// StageUpload holds an image as the pending upload of a vision session,
// releasing the upload it supersedes.
func (s *Service) StageUpload(ctx context.Context, id domain.SessionID, img ImageInput) (*domain.Preview, error) {
	st, err := s.stateFor(id, domain.ViewVision)
	if err != nil {
		return nil, err
	}

	mimeType, err := s.checkImage(&img)
	if err != nil {
		return nil, err
	}

	preview, err := s.putPreview(id, mimeType, img.Data)
	if err != nil {
		return nil, err
	}

	old, err := st.Stage(preview)
	if err != nil {
		// The session ended while the preview was being stored.
		s.release(ctx, preview)
		return nil, err
	}
	if old != nil {
		s.release(ctx, old)
	}

	observability.LoggerFromContext(ctx).Info("upload staged",
		"session_id", id,
		"preview_id", preview.ID,
		"mime_type", mimeType,
		"bytes", len(img.Data))

	return preview, nil
}

// ClearUpload drops the pending upload, if any.
func (s *Service) ClearUpload(ctx context.Context, id domain.SessionID) error {
	st, err := s.stateFor(id, domain.ViewVision)
	if err != nil {
		return err
	}
	if old := st.TakeStaged(); old != nil {
		s.release(ctx, old)
	}
	return nil
}

// GetPreview returns a held preview of a live session.
func (s *Service) GetPreview(_ context.Context, id domain.SessionID, previewID domain.PreviewID) (*domain.Preview, error) {
	if _, err := s.sessions.Get(id); err != nil {
		return nil, err
	}
	return s.previews.GetPreview(id, previewID)
}

func (s *Service) checkImage(img *ImageInput) (string, error) {
	if len(img.Data) == 0 {
		return "", domain.ErrEmptyInput
	}
	if s.maxImageBytes > 0 && int64(len(img.Data)) > s.maxImageBytes {
		return "", domain.ErrImageTooLarge
	}

	mt := img.MIMEType
	if mt == "" {
		mt = http.DetectContentType(img.Data)
	}
	parsed, _, err := mime.ParseMediaType(mt)
	if err != nil || !strings.HasPrefix(parsed, "image/") {
		return "", domain.ErrUnsupportedMedia
	}
	return parsed, nil
}

func (s *Service) putPreview(id domain.SessionID, mimeType string, data []byte) (*domain.Preview, error) {
	p := &domain.Preview{
		ID:        domain.PreviewID(uuid.NewString()),
		SessionID: id,
		MIMEType:  mimeType,
		Data:      data,
		CreatedAt: s.now(),
	}
	if err := s.previews.PutPreview(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) release(ctx context.Context, p *domain.Preview) {
	if err := s.previews.ReleasePreview(p.SessionID, p.ID); err != nil {
		observability.LoggerFromContext(ctx).Debug("preview already released",
			"session_id", p.SessionID,
			"preview_id", p.ID)
	}
}
