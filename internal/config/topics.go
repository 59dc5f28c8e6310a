package config

// DefaultTopics returns the built-in documentation corpus: the Google AI
// developer stack, one topic per product. Deployments with their own corpus
// override this via the `topics` key in config.yaml.
func DefaultTopics() []Topic {
	return []Topic{
		{
			ID:          "genkit",
			Name:        "Genkit",
			Description: "Open-source framework for building AI-powered applications in Go, JavaScript, and Python",
			DocsURL:     "https://genkit.dev/docs",
			Pages: []Page{
				{URL: "https://genkit.dev/docs/get-started-go", Title: "Genkit Getting Started (Go)"},
				{URL: "https://genkit.dev/docs/models", Title: "Generating Content with Models"},
				{URL: "https://genkit.dev/docs/flows", Title: "Defining AI Flows"},
				{URL: "https://genkit.dev/docs/rag", Title: "Retrieval-Augmented Generation"},
				{URL: "https://genkit.dev/docs/tool-calling", Title: "Tool Calling"},
				{URL: "https://genkit.dev/docs/evaluation", Title: "Evaluation"},
				{URL: "https://genkit.dev/docs/prompts", Title: "Managing Prompts with Dotprompt"},
				{URL: "https://genkit.dev/docs/plugins/google-genai", Title: "Google Generative AI Plugin"},
			},
		},
		{
			ID:          "gemini",
			Name:        "Gemini API",
			Description: "Google's multimodal model family and its developer API",
			DocsURL:     "https://ai.google.dev/gemini-api/docs",
			Pages: []Page{
				{URL: "https://ai.google.dev/gemini-api/docs", Title: "Gemini API Overview"},
				{URL: "https://ai.google.dev/gemini-api/docs/quickstart", Title: "Gemini API Quickstart"},
				{URL: "https://ai.google.dev/gemini-api/docs/text-generation", Title: "Text Generation"},
				{URL: "https://ai.google.dev/gemini-api/docs/embeddings", Title: "Embeddings"},
				{URL: "https://ai.google.dev/gemini-api/docs/structured-output", Title: "Structured Output"},
				{URL: "https://ai.google.dev/gemini-api/docs/function-calling", Title: "Function Calling"},
			},
		},
		{
			ID:          "vertex",
			Name:        "Vertex AI",
			Description: "Google Cloud's managed machine-learning platform",
			DocsURL:     "https://cloud.google.com/vertex-ai/docs",
			Pages: []Page{
				{URL: "https://cloud.google.com/vertex-ai/docs/start/introduction-unified-platform", Title: "Vertex AI Introduction"},
				{URL: "https://cloud.google.com/vertex-ai/generative-ai/docs/overview", Title: "Generative AI on Vertex AI"},
				{URL: "https://cloud.google.com/vertex-ai/generative-ai/docs/learn/models", Title: "Vertex AI Model Reference"},
				{URL: "https://cloud.google.com/vertex-ai/generative-ai/docs/embeddings/get-text-embeddings", Title: "Text Embeddings on Vertex AI"},
				{URL: "https://cloud.google.com/vertex-ai/docs/vector-search/overview", Title: "Vector Search Overview"},
			},
		},
	}
}
