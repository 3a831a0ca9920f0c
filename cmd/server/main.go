package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/querypilot/querypilot/internal/config"
	"github.com/querypilot/querypilot/internal/llm"
	"github.com/querypilot/querypilot/internal/monitor"
	"github.com/querypilot/querypilot/internal/pipeline"
	"github.com/querypilot/querypilot/internal/query"
	"github.com/querypilot/querypilot/internal/router"
	"github.com/querypilot/querypilot/internal/server"
	"github.com/querypilot/querypilot/internal/tools/calculator"
	"github.com/querypilot/querypilot/internal/tools/websearch"
	"github.com/querypilot/querypilot/internal/vectorstore"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	llmProvider, err := llm.NewOpenAI(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	embedder := vectorstore.NewOpenAIEmbedder(vectorstore.EmbedderConfig{
		BaseURL: cfg.Embed.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.Embed.Model,
		Timeout: cfg.Embed.Timeout,
	})

	stores := vectorstore.NewManager()
	specs, err := config.LoadStores(cfg.Stores.ManifestPath)
	if err != nil {
		log.Fatalf("failed to load stores manifest: %v", err)
	}
	for _, spec := range specs {
		stores.AddStore(spec.Name, vectorstore.NewStore(vectorstore.StoreConfig{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: spec.Collection,
			Timeout:    cfg.Qdrant.Timeout,
		}, embedder))
	}

	mon := monitor.New()
	searchTool := websearch.New(websearch.Config{
		MaxRetries: cfg.Search.MaxRetries,
		BaseDelay:  cfg.Search.BaseDelay,
		Timeout:    cfg.Search.Timeout,
	})

	p := pipeline.New(
		query.NewProcessor(),
		router.NewChain(llmProvider),
		llmProvider,
		stores,
		calculator.New(),
		searchTool,
		mon,
	)

	srv := server.New(*cfg, p, stores, mon)
	slog.Info("starting querypilot", "host", cfg.Server.Host, "port", cfg.Server.Port, "stores", stores.List())
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
