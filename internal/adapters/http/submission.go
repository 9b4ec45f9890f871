package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/PabloGalante/gemini-suite/internal/adapters/llm"
	"github.com/PabloGalante/gemini-suite/internal/app/conversation"
)

const (
	maxMultipartMemory = 32 << 20

	// bodySlack leaves room for the JSON envelope and multipart headers.
	bodySlack = 1 << 20
)

// bodyLimit is the largest request body that can carry an image of
// maxImageBytes, base64 encoded. Zero or less means no image limit.
func bodyLimit(maxImageBytes int64) int64 {
	if maxImageBytes <= 0 {
		return 0
	}
	return int64(base64.StdEncoding.EncodedLen(int(maxImageBytes))) + bodySlack
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// readSubmission decodes a submit or upload body. JSON bodies carry the
// image base64 encoded; multipart bodies carry it as the "image" file.
// Bodies over the server's limit fail with *http.MaxBytesError.
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (conversation.VisionInput, error) {
	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r)
	}
	return readJSON(r)
}

func readJSON(r *http.Request) (conversation.VisionInput, error) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return conversation.VisionInput{}, asBodyError(err, "invalid JSON body")
	}

	in := conversation.VisionInput{Text: req.Text}
	if req.Image != nil && req.Image.Data != "" {
		data, err := llm.DecodeImageData(req.Image.Data)
		if err != nil {
			return conversation.VisionInput{}, &badRequestError{msg: "image data must be base64 encoded"}
		}
		in.Image = &conversation.ImageInput{MIMEType: req.Image.MIMEType, Data: data}
	}
	return in, nil
}

func readMultipart(r *http.Request) (conversation.VisionInput, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return conversation.VisionInput{}, asBodyError(err, "invalid multipart body")
	}

	in := conversation.VisionInput{Text: r.FormValue("text")}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return conversation.VisionInput{}, &badRequestError{msg: "invalid image part"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return conversation.VisionInput{}, asBodyError(err, "invalid image part")
	}

	// Browsers send octet-stream for unknown types; let the service sniff.
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	in.Image = &conversation.ImageInput{MIMEType: mimeType, Data: data}
	return in, nil
}

// asBodyError keeps a body-size error visible to writeError and turns any
// other read failure into a 400.
func asBodyError(err error, msg string) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return err
	}
	return &badRequestError{msg: msg}
}
