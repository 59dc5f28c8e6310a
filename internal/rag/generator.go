package rag

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/docside/docside/internal/config"
)

// systemInstruction frames every synthesis call. The assistant answers only
// from the supplied context and admits gaps instead of inventing content.
const systemInstruction = "You are a helpful assistant specializing in Genkit, Gemini API, and Vertex AI documentation. " +
	"Answer the user's question based on the provided context. Be concise but thorough. " +
	"If the context doesn't contain enough information, say so and provide what you can. " +
	"Include code examples when relevant."

// GenkitGenerator synthesizes answers through a Genkit model reference.
type GenkitGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
}

// NewGenkitGenerator creates a generator bound to the configured chat model.
func NewGenkitGenerator(g *genkit.Genkit, cfg *config.Config) *GenkitGenerator {
	return &GenkitGenerator{
		g:           g,
		modelName:   cfg.ChatModel,
		temperature: float64(cfg.Temperature),
	}
}

// Complete runs one generation call and returns the model's text response.
func (gg *GenkitGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{"temperature": gg.temperature}),
	)
	if err != nil {
		return "", fmt.Errorf("generation with %s failed: %w", gg.modelName, err)
	}
	return resp.Text(), nil
}
