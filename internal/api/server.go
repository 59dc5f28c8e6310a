package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/log"
	"github.com/docside/docside/internal/rag"
)

// Assistant is the slice of the pipeline the HTTP layer needs.
type Assistant interface {
	Ask(ctx context.Context, question, topic string) (*rag.Answer, error)
	Initialize(ctx context.Context, force bool) (int, error)
	Reindex(ctx context.Context, topics []string) (int, []string, error)
	State() rag.State
	IsReady() bool
	DocumentCount() int
}

// ServerConfig contains everything needed to build the API server.
type ServerConfig struct {
	Logger    log.Logger
	Assistant Assistant
	Config    *config.Config
	Version   string
}

// Server is the JSON API HTTP server.
type Server struct {
	mux http.Handler
}

// NewServer creates the API server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	ch := &chatHandler{assistant: cfg.Assistant, logger: logger}
	ih := &indexHandler{assistant: cfg.Assistant, allTopics: cfg.Config.TopicIDs(), logger: logger}
	hh := &healthHandler{assistant: cfg.Assistant, logger: logger}
	sh := &sourcesHandler{topics: cfg.Config.Topics, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rootHandler(cfg.Version, logger))
	mux.HandleFunc("GET /api/health", hh.check)
	mux.HandleFunc("GET /api/sources", sh.list)
	mux.HandleFunc("POST /api/chat", ch.ask)
	mux.HandleFunc("POST /api/index", ih.trigger)

	// Middleware stack, outermost first:
	//   Recovery -> RequestID -> Logging -> Routes
	// RequestID runs before Logging so request_id shows up in log attributes.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{mux: handler}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// rootHandler serves the API descriptor at GET /.
func rootHandler(version string, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":        "Docside API",
			"version":     version,
			"description": "Ask questions about Genkit, Gemini API, and Vertex AI documentation",
			"endpoints": map[string]string{
				"chat":    "POST /api/chat",
				"health":  "GET /api/health",
				"index":   "POST /api/index",
				"sources": "GET /api/sources",
			},
		}, logger)
	}
}
