package docs

// static.go holds the bundled fallback corpus. When every configured page is
// unreachable (offline development, CI sandboxes, docs-site outages) the
// service indexes these documents instead, so a fresh install never answers
// from an empty store.

// StaticCorpus returns the bundled documents for the given topic IDs.
// Topics without bundled content contribute nothing; an empty id list
// returns the full corpus.
func StaticCorpus(topicIDs []string) []Document {
	all := topicIDs
	if len(all) == 0 {
		all = []string{"genkit", "gemini", "vertex"}
	}

	var docs []Document
	for _, id := range all {
		docs = append(docs, staticDocs[id]...)
	}
	return docs
}

var staticDocs = map[string][]Document{
	"genkit": {
		{
			Content: genkitIntro,
			Metadata: map[string]string{
				MetaSource: "https://genkit.dev/docs/get-started-go",
				MetaTitle:  "Genkit Getting Started (Go)",
				MetaTopic:  "genkit",
			},
		},
		{
			Content: genkitRAG,
			Metadata: map[string]string{
				MetaSource: "https://genkit.dev/docs/rag",
				MetaTitle:  "Retrieval-Augmented Generation",
				MetaTopic:  "genkit",
			},
		},
	},
	"gemini": {
		{
			Content: geminiIntro,
			Metadata: map[string]string{
				MetaSource: "https://ai.google.dev/gemini-api/docs",
				MetaTitle:  "Gemini API Overview",
				MetaTopic:  "gemini",
			},
		},
	},
	"vertex": {
		{
			Content: vertexIntro,
			Metadata: map[string]string{
				MetaSource: "https://cloud.google.com/vertex-ai/docs/start/introduction-unified-platform",
				MetaTitle:  "Vertex AI Introduction",
				MetaTopic:  "vertex",
			},
		},
	},
}

const genkitIntro = `# Genkit Getting Started (Go)

Genkit is an open-source framework for building AI-powered applications.
It provides a unified API over model providers, structured output, tool
calling, and observability.

## Initialization

` + "```go" + `
import (
    "github.com/firebase/genkit/go/genkit"
    "github.com/firebase/genkit/go/plugins/googlegenai"
)

g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
` + "```" + `

## Generating content

` + "```go" + `
resp, err := genkit.Generate(ctx, g,
    ai.WithModelName("googleai/gemini-2.5-flash"),
    ai.WithPrompt("Tell me about vector databases"),
)
fmt.Println(resp.Text())
` + "```" + `

## Flows

Flows wrap generation logic into typed, observable, deployable functions.
A flow takes a typed input, returns a typed output, and shows up in the
Genkit developer UI with full traces.

## Embedders

Plugins register embedders alongside models. An embedder turns text into a
fixed-length vector for similarity search:

` + "```go" + `
embedder := googlegenai.GoogleAIEmbedder(g, "gemini-embedding-001")
resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
    Input: []*ai.Document{ai.DocumentFromText(text, nil)},
})
` + "```"

const genkitRAG = `# Retrieval-Augmented Generation

RAG grounds model answers in your own content: index documents as embedding
vectors, retrieve the most similar ones for a question, and hand them to the
model as context.

## Pipeline

1. **Ingest**: load source documents and split them into overlapping chunks
   small enough to embed well.
2. **Index**: embed each chunk and store vector, content, and metadata in a
   vector store.
3. **Retrieve**: embed the question and run a top-k similarity search,
   optionally filtered by metadata.
4. **Generate**: build a prompt from the retrieved chunks plus the question
   and call the model.

## Retrievers

Genkit models retrieval as an ai.Retriever: given a query document it returns
the grounding documents. Any vector store can back a retriever; the framework
does not prescribe one.

## Chunking guidance

Chunks around 1000 characters with 100-200 characters of overlap work well
for documentation. Overlap keeps sentences that span a boundary retrievable
from at least one chunk.`

const geminiIntro = `# Gemini API Overview

The Gemini API gives you access to Google's multimodal model family. Models
accept text, images, audio, and video, and produce text or structured output.

## Models

- gemini-2.5-flash: fast, cost-efficient, strong general quality.
- gemini-2.5-pro: highest quality for complex reasoning.
- gemini-embedding-001: text embeddings for search and classification.

## Authentication

All requests require an API key, passed via the GEMINI_API_KEY environment
variable or an explicit client option. Keys are created in Google AI Studio.

## Text generation

POST a prompt to the generateContent endpoint or use a client SDK. Responses
stream incrementally when requested. System instructions steer tone and role
separately from user content.

## Embeddings

The embedContent endpoint turns text into a numeric vector. Vectors from the
same model version are comparable with cosine similarity; store them in a
vector database for retrieval.`

const vertexIntro = `# Vertex AI Introduction

Vertex AI is Google Cloud's managed machine-learning platform: training,
tuning, deployment, and generative AI under one set of APIs and IAM.

## Generative AI on Vertex AI

Vertex AI serves the Gemini model family with enterprise controls: VPC
Service Controls, CMEK, data residency, and provisioned throughput. The same
models available through the Gemini API are exposed via the Vertex AI
endpoint with Google Cloud authentication instead of API keys.

## Vector Search

Vertex AI Vector Search is a managed approximate-nearest-neighbor service
for embedding vectors at scale. You create an index over your vectors,
deploy it to an endpoint, and query with a vector to receive the nearest
datapoints; filtering restricts results by attached attributes.

## When to choose Vertex AI

Choose the Gemini developer API for prototypes and small services. Choose
Vertex AI when you need cloud IAM, audit logging, quota guarantees, or
integration with other Google Cloud data services.`
