package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-suite/internal/config"
	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

const DefaultModel = "gemini-2.5-flash"

// Operation names, used for logs, metrics and RemoteError.Op.
const (
	OpSendText     = "send_text"
	OpAnalyzeImage = "analyze_image"
	OpSearch       = "search_grounding"
)

// ContentGenerator is the part of the genai client the adapter calls.
// *genai.Models satisfies it; tests substitute a fake.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements domain.Assistant on top of a ContentGenerator.
// It holds no per-call state and is safe for concurrent use.
type GeminiClient struct {
	gen       ContentGenerator
	modelName string
}

// NewGeminiClient builds the genai client described by cfg.
// Without an API key the client is still returned, but every call fails
// with domain.ErrMissingCredential.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = DefaultModel
	}

	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case config.BackendVertex:
		if cfg.GCPProjectID == "" || cfg.GCPLocation == "" {
			return nil, fmt.Errorf("SUITE_GCP_PROJECT and SUITE_GCP_LOCATION must be set for the vertex backend")
		}
		cc.Project = cfg.GCPProjectID
		cc.Location = cfg.GCPLocation
		cc.Backend = genai.BackendVertexAI
	default:
		if cfg.APIKey == "" {
			observability.Logger().Warn("creating Gemini client without API key", "model", modelName)
			return NewGeminiClientWith(missingCredential{}, modelName), nil
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return NewGeminiClientWith(client.Models, modelName), nil
}

// NewGeminiClientWith wires an existing generator, typically a fake in tests.
func NewGeminiClientWith(gen ContentGenerator, modelName string) *GeminiClient {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiClient{gen: gen, modelName: modelName}
}

// SendText implements domain.Assistant.
func (g *GeminiClient) SendText(ctx context.Context, prompt string) (string, error) {
	res, err := g.generate(ctx, OpSendText, buildTextRequest(g.modelName, prompt))
	if err != nil {
		return "", err
	}
	return textOrFallback(res, FallbackText), nil
}

// AnalyzeImage implements domain.Assistant. An empty prompt is replaced
// with DefaultImagePrompt.
func (g *GeminiClient) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	res, err := g.generate(ctx, OpAnalyzeImage, buildImageRequest(g.modelName, image, mimeType, prompt))
	if err != nil {
		return "", err
	}
	return textOrFallback(res, FallbackAnalysis), nil
}

// SearchWithGrounding implements domain.Assistant. Missing grounding
// metadata yields no sources, never an error.
func (g *GeminiClient) SearchWithGrounding(ctx context.Context, query string) (domain.SearchResult, error) {
	res, err := g.generate(ctx, OpSearch, buildSearchRequest(g.modelName, query))
	if err != nil {
		return domain.SearchResult{}, err
	}
	return domain.SearchResult{
		Text:    textOrFallback(res, FallbackSearch),
		Sources: extractSources(res),
	}, nil
}

func (g *GeminiClient) generate(ctx context.Context, op string, req request) (*genai.GenerateContentResponse, error) {
	log := observability.LoggerFromContext(ctx).With(
		"operation", op,
		"model", req.model,
	)

	start := time.Now()
	res, err := g.gen.GenerateContent(ctx, req.model, req.contents, req.config)
	elapsed := time.Since(start)

	if err != nil {
		rerr := classify(op, err)
		observability.ObserveLLMCall(op, string(rerr.Kind), elapsed)
		log.Error("model call failed",
			"kind", rerr.Kind,
			"error", err,
			"elapsed_ms", elapsed.Milliseconds())
		return nil, rerr
	}

	observability.ObserveLLMCall(op, "ok", elapsed)
	log.Info("model call completed", "elapsed_ms", elapsed.Milliseconds())
	return res, nil
}

// missingCredential stands in for the genai client when no API key is set.
type missingCredential struct{}

func (missingCredential) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, domain.ErrMissingCredential
}
