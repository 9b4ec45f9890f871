package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/gemini-suite/internal/app/conversation"
	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

type Server struct {
	svc          *conversation.Service
	maxBodyBytes int64
}

// NewServer builds the HTTP surface. maxImageBytes bounds the bodies of
// submit and upload requests, allowing for base64 and multipart overhead.
func NewServer(svc *conversation.Service, maxImageBytes int64) http.Handler {
	s := &Server{svc: svc, maxBodyBytes: bodyLimit(maxImageBytes)}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/views", s.handleViews)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}                      → GET timeline, DELETE end session
	// /sessions/{id}/messages             → POST submit
	// /sessions/{id}/upload               → PUT stage, DELETE clear
	// /sessions/{id}/previews/{previewID} → GET image bytes
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	View string `json:"view"`
}

type createSessionResponse struct {
	Session sessionResponse `json:"session"`
	Welcome messageResponse `json:"welcome_message"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	View      string    `json:"view"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sourceResponse struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type messageResponse struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Sender    string           `json:"sender"`
	Text      string           `json:"text"`
	ImageURL  string           `json:"image_url,omitempty"`
	Sources   []sourceResponse `json:"sources,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type imageRequest struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type sendMessageRequest struct {
	Text  string        `json:"text"`
	Image *imageRequest `json:"image,omitempty"`
}

type sendMessageResponse struct {
	UserMessage messageResponse `json:"user_message"`
	BotMessage  messageResponse `json:"bot_message"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Busy     bool              `json:"busy"`
	Messages []messageResponse `json:"messages"`
}

type uploadResponse struct {
	PreviewID  string `json:"preview_id"`
	PreviewURL string `json:"preview_url"`
	MIMEType   string `json:"mime_type"`
}

type viewResponse struct {
	View     string `json:"view"`
	Label    string `json:"label"`
	Path     string `json:"path"`
	Subtitle string `json:"subtitle"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	views := s.svc.Views()
	out := make([]viewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, viewResponse{
			View:     string(v.View),
			Label:    v.Label,
			Path:     v.Path,
			Subtitle: v.Subtitle,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}[/...]
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])

	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		case http.MethodDelete:
			s.handleEndSession(w, r, id)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2 && parts[1] == "messages":
		switch r.Method {
		case http.MethodPost:
			s.handleSendMessage(w, r, id)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2 && parts[1] == "upload":
		switch r.Method {
		case http.MethodPut:
			s.handleStageUpload(w, r, id)
		case http.MethodDelete:
			s.handleClearUpload(w, r, id)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 3 && parts[1] == "previews" && parts[2] != "":
		switch r.Method {
		case http.MethodGet:
			s.handleGetPreview(w, r, id, domain.PreviewID(parts[2]))
		default:
			methodNotAllowed(w)
		}

	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	view, ok := domain.ParseView(req.View)
	if !ok {
		badRequest(w, "view must be one of chat, vision, search")
		return
	}

	out, err := s.svc.StartSession(r.Context(), view)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(out.Session),
		Welcome: toMessageResponse(out.Welcome),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	tl, err := s.svc.GetSessionTimeline(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(tl.Session),
		Busy:     tl.Busy,
		Messages: toMessagesResponse(tl.Messages),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.EndSession(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	view, err := s.svc.ViewOf(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, err := s.readSubmission(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var out *conversation.SendOutput
	switch view {
	case domain.ViewVision:
		out, err = s.svc.SendVision(r.Context(), id, in)
	case domain.ViewChat, domain.ViewSearch:
		if in.Image != nil {
			badRequest(w, "images are only accepted by the vision view")
			return
		}
		if view == domain.ViewChat {
			out, err = s.svc.SendChat(r.Context(), id, in.Text)
		} else {
			out, err = s.svc.SendSearch(r.Context(), id, in.Text)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage: toMessageResponse(out.UserMessage),
		BotMessage:  toMessageResponse(out.BotMessage),
	})
}

func (s *Server) handleStageUpload(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	in, err := s.readSubmission(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if in.Image == nil {
		badRequest(w, "image is required")
		return
	}

	preview, err := s.svc.StageUpload(r.Context(), id, *in.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		PreviewID:  string(preview.ID),
		PreviewURL: conversation.PreviewURL(id, preview.ID),
		MIMEType:   preview.MIMEType,
	})
}

func (s *Server) handleClearUpload(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.ClearUpload(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request, id domain.SessionID, previewID domain.PreviewID) {
	preview, err := s.svc.GetPreview(r.Context(), id, previewID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", preview.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(preview.Data)
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		View:      string(s.View),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	resp := messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Sender:    string(m.Sender),
		Text:      m.Text,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
	for _, src := range m.Sources {
		resp.Sources = append(resp.Sources, sourceResponse{URI: src.URI, Title: src.Title})
	}
	return resp
}

func toMessagesResponse(msgs []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorJSON(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeErrorJSON(w, http.StatusInternalServerError, "internal server error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeError maps service errors to statuses. Anything unrecognised is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bad    *badRequestError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		writeErrorJSON(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &bad):
		badRequest(w, bad.msg)
	case errors.Is(err, domain.ErrEmptyInput):
		badRequest(w, "text or image is required")
	case errors.Is(err, domain.ErrWrongView):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeErrorJSON(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrPreviewNotFound):
		writeErrorJSON(w, http.StatusNotFound, "preview not found")
	case errors.Is(err, domain.ErrBusy):
		writeErrorJSON(w, http.StatusConflict, "a request is already in flight for this session")
	case errors.Is(err, domain.ErrImageTooLarge):
		writeErrorJSON(w, http.StatusRequestEntityTooLarge, "image too large")
	case errors.Is(err, domain.ErrUnsupportedMedia):
		writeErrorJSON(w, http.StatusUnsupportedMediaType, "only image uploads are supported")
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		internalError(w)
	}
}
