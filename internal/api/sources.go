package api

import (
	"net/http"

	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/log"
)

// SourceInfo describes one configured documentation topic.
type SourceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DocsURL     string `json:"docs_url"`
	Pages       int    `json:"pages"`
}

// SourcesResponse lists the documentation topics the index covers.
type SourcesResponse struct {
	Sources []SourceInfo `json:"sources"`
}

type sourcesHandler struct {
	topics []config.Topic
	logger log.Logger
}

func (h *sourcesHandler) list(w http.ResponseWriter, r *http.Request) {
	sources := make([]SourceInfo, 0, len(h.topics))
	for _, t := range h.topics {
		sources = append(sources, SourceInfo{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			DocsURL:     t.DocsURL,
			Pages:       len(t.Pages),
		})
	}
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: sources}, h.logger)
}
