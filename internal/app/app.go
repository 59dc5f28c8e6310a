// Package app assembles the application: it initializes Genkit, opens the
// persistent index and wires the ingestion and retrieval pipeline together.
// Construction is explicit provider functions called in dependency order.
package app

import (
	"context"
	"errors"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/docside/docside/internal/chunker"
	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/docs"
	"github.com/docside/docside/internal/knowledge"
	"github.com/docside/docside/internal/log"
	"github.com/docside/docside/internal/rag"
	"github.com/docside/docside/internal/security"
)

// App holds the wired application components.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Genkit    *genkit.Genkit
	Store     *knowledge.Store
	Assistant *rag.Service
}

// Setup wires the full pipeline from configuration. The returned App owns no
// background goroutines; closing the process suffices for cleanup because
// the index persists every write.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)

	store, err := knowledge.Open(cfg.PersistDir, cfg.CollectionName, knowledge.NewEmbeddingFunc(embedder), logger)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	fetcher := docs.NewFetcher(cfg.FetchTimeout(), cfg.FetchDelay(), security.NewURL(), logger)
	loader := docs.NewLoader(fetcher, docs.NewExtractor(), cfg.Parallelism, logger)
	generator := rag.NewGenkitGenerator(g, cfg)

	assistant := rag.NewService(cfg, store, loader, splitter, generator, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Genkit:    g,
		Store:     store,
		Assistant: assistant,
	}, nil
}

// provideGenkit initializes Genkit with the Google AI plugin. The plugin
// reads GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return g, nil
}
