package main

import (
	"context"
	"log"
	"net/http"
	"time"

	httpadapter "github.com/PabloGalante/gemini-suite/internal/adapters/http"
	"github.com/PabloGalante/gemini-suite/internal/adapters/llm"
	memstore "github.com/PabloGalante/gemini-suite/internal/adapters/storage/memory"
	"github.com/PabloGalante/gemini-suite/internal/app/conversation"
	"github.com/PabloGalante/gemini-suite/internal/config"
	"github.com/PabloGalante/gemini-suite/internal/domain"
	"github.com/PabloGalante/gemini-suite/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	observability.SetLevel(cfg.LogLevel)
	logger := observability.WithFields("service", "suite-api")

	// Choose between mock and Gemini by ENV (useful for dev)
	var assistant domain.Assistant
	if cfg.UseMockLLM {
		logger.Info("using mock LLM client")
		assistant = llm.NewMockLLM()
	} else {
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
		logger.Info("using Gemini client", "backend", cfg.Backend, "model", cfg.ModelName)
		assistant = client
	}

	// Sessions live only as long as the process.
	svc := conversation.NewService(
		assistant,
		memstore.NewSessionStore(),
		memstore.NewMessageStore(),
		memstore.NewPreviewStore(),
		cfg.MaxImageBytes,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc, cfg.MaxImageBytes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("gemini suite API listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
