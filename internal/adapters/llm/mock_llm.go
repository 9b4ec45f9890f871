package llm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// MockLLM answers locally without calling the model; used for development.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) SendText(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("You said %q. This is a local mock reply.", prompt), nil
}

func (m *MockLLM) AnalyzeImage(_ context.Context, image []byte, mimeType, prompt string) (string, error) {
	if prompt == "" {
		prompt = DefaultImagePrompt
	}
	return fmt.Sprintf("Mock analysis of a %d byte %s image for %q.", len(image), mimeType, prompt), nil
}

func (m *MockLLM) SearchWithGrounding(_ context.Context, query string) (domain.SearchResult, error) {
	return domain.SearchResult{
		Text: fmt.Sprintf("Mock search results for %q.", query),
		Sources: []domain.Source{
			{URI: "https://example.com/search?q=" + url.QueryEscape(query), Title: "Example"},
		},
	}, nil
}
