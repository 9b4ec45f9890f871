package httpadapter_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/gemini-suite/internal/adapters/http"
	"github.com/PabloGalante/gemini-suite/internal/adapters/llm"
	"github.com/PabloGalante/gemini-suite/internal/adapters/storage/memory"
	"github.com/PabloGalante/gemini-suite/internal/app/conversation"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	svc := conversation.NewService(
		llm.NewMockLLM(),
		memory.NewSessionStore(),
		memory.NewMessageStore(),
		memory.NewPreviewStore(),
		1<<20,
	)
	return httpadapter.NewServer(svc, 1<<20)
}

func do(t *testing.T, srv http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, srv http.Handler, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if v != nil {
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return do(t, srv, method, path, body, "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createSession(t *testing.T, srv http.Handler, view string) string {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/sessions", map[string]string{"view": view})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	out := decode(t, w)
	welcome := out["welcome_message"].(map[string]any)
	assert.Equal(t, "bot", welcome["sender"])
	return out["session"].(map[string]any)["id"].(string)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestPreflight(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodOptions, "/sessions", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestViews(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/views", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var views []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "chat", views[0]["view"])
	assert.Equal(t, "/search", views[2]["path"])
}

func TestCreateSessionRejectsUnknownView(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/sessions", map[string]string{"view": "settings"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/sessions", []byte("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/sessions", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestChatRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "chat")

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]string{"text": "Hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	assert.Equal(t, "Hello", out["user_message"].(map[string]any)["text"])
	assert.Equal(t, "bot", out["bot_message"].(map[string]any)["sender"])

	w = do(t, srv, http.MethodGet, "/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tl := decode(t, w)
	assert.Equal(t, false, tl["busy"])
	assert.Len(t, tl["messages"], 3)
}

func TestChatRejectsEmptyTextAndImages(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "chat")

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]any{
		"text":  "hi",
		"image": map[string]string{"mime_type": "image/png", "data": base64.StdEncoding.EncodeToString(pngBytes)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchReturnsSources(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "search")

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]string{"text": "golang release"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	bot := decode(t, w)["bot_message"].(map[string]any)
	sources := bot["sources"].([]any)
	require.NotEmpty(t, sources)
	assert.NotEmpty(t, sources[0].(map[string]any)["uri"])
}

func TestVisionJSONImage(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]any{
		"image": map[string]string{
			"mime_type": "image/png",
			"data":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := decode(t, w)["user_message"].(map[string]any)
	assert.Equal(t, "Analyze this image", user["text"])

	imageURL := user["image_url"].(string)
	require.NotEmpty(t, imageURL)

	w = do(t, srv, http.MethodGet, imageURL, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestVisionRejectsBadImages(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]any{
		"image": map[string]string{"mime_type": "image/png", "data": "%%%"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]any{
		"image": map[string]string{"mime_type": "text/plain", "data": base64.StdEncoding.EncodeToString([]byte("hi"))},
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]any{
		"image": map[string]string{"mime_type": "image/png", "data": base64.StdEncoding.EncodeToString(make([]byte, 1<<20+1))},
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestOversizedBodiesAreCutOff(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	huge := map[string]any{
		"image": map[string]string{"mime_type": "image/png", "data": llm.EncodeImageData(make([]byte, 2<<20))},
	}

	w := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "request body too large", decode(t, w)["error"])

	w = doJSON(t, srv, http.MethodPut, "/sessions/"+id+"/upload", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, srv, http.MethodGet, "/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 1, "rejected bodies leave the log untouched")
}

func multipartImage(t *testing.T, text string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="cat.png"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestStagedUploadFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	body, ct := multipartImage(t, "", pngBytes)
	w := do(t, srv, http.MethodPut, "/sessions/"+id+"/upload", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	upload := decode(t, w)
	assert.Equal(t, "image/png", upload["mime_type"])
	previewURL := upload["preview_url"].(string)

	w = do(t, srv, http.MethodGet, previewURL, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]string{"text": "what is it?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, previewURL, decode(t, w)["user_message"].(map[string]any)["image_url"])

	w = do(t, srv, http.MethodDelete, "/sessions/"+id+"/upload", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestClearedUploadIsGone(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	body, ct := multipartImage(t, "", pngBytes)
	w := do(t, srv, http.MethodPut, "/sessions/"+id+"/upload", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	previewURL := decode(t, w)["preview_url"].(string)

	w = do(t, srv, http.MethodDelete, "/sessions/"+id+"/upload", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, previewURL, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMultipartSubmit(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "vision")

	body, ct := multipartImage(t, "describe", pngBytes)
	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/messages", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "describe", decode(t, w)["user_message"].(map[string]any)["text"])
}

func TestUploadOnlyForVision(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "chat")

	body, ct := multipartImage(t, "", pngBytes)
	w := do(t, srv, http.MethodPut, "/sessions/"+id+"/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndSession(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "chat")

	w := do(t, srv, http.MethodDelete, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoutes(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, "chat")

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/sessions/"+id+"/nope", nil, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPut, "/sessions/"+id, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/sessions/", nil, "").Code)
}
