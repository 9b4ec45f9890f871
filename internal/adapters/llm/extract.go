package llm

import (
	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

// Fallback texts for responses that carry no text.
const (
	FallbackText     = "No response text generated."
	FallbackAnalysis = "No analysis generated."
	FallbackSearch   = "No information found."
)

func textOrFallback(res *genai.GenerateContentResponse, fallback string) string {
	// Text() assumes a non-nil first candidate.
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return fallback
	}
	if text := res.Text(); text != "" {
		return text
	}
	return fallback
}

// extractSources reads candidates[0].groundingMetadata.groundingChunks[*].web.
// Any missing level yields an empty result. Entries are returned as sent;
// filtering happens before storage (domain.NormalizeSources).
func extractSources(res *genai.GenerateContentResponse) []domain.Source {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return nil
	}
	meta := res.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var sources []domain.Source
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, domain.Source{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}
