package llm

import (
	"strings"

	"google.golang.org/genai"
)

// DefaultImagePrompt is sent when an image is analyzed without a prompt.
const DefaultImagePrompt = "Describe this image in detail."

// request is one GenerateContent call. Nothing but the current input is
// sent: the remote service never sees earlier messages.
type request struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func buildTextRequest(model, prompt string) request {
	return request{
		model:    model,
		contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
	}
}

// buildImageRequest puts the inline image first and the prompt second.
// Blob data is base64 encoded by the client when the request is marshaled.
func buildImageRequest(model string, image []byte, mimeType, prompt string) request {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultImagePrompt
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(prompt),
	}

	return request{
		model:    model,
		contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
	}
}

func buildSearchRequest(model, query string) request {
	return request{
		model:    model,
		contents: []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)},
		config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	}
}
