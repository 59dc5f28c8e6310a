package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/docside/docside/internal/log"
	"github.com/docside/docside/internal/rag"
)

// IndexRequest is the POST /api/index payload. An empty topic list refreshes
// every configured topic. Force discards the persisted index and rebuilds it
// from scratch; combining force with a topic list is rejected, matching the
// index CLI command.
type IndexRequest struct {
	Topics []string `json:"topics"`
	Force  bool     `json:"force"`
}

// IndexResponse reports the outcome of an indexing run.
type IndexResponse struct {
	Success          bool     `json:"success"`
	DocumentsIndexed int      `json:"documents_indexed"`
	TopicsIndexed    []string `json:"topics_indexed"`
	Message          string   `json:"message"`
}

type indexHandler struct {
	assistant Assistant
	allTopics []string
	logger    log.Logger
}

func (h *indexHandler) trigger(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON", h.logger)
		return
	}

	if req.Force && len(req.Topics) > 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "force rebuilds every topic and cannot be combined with a topic list", h.logger)
		return
	}

	var (
		count  int
		topics []string
		err    error
	)
	if req.Force {
		count, err = h.assistant.Initialize(r.Context(), true)
		topics = h.allTopics
	} else {
		count, topics, err = h.assistant.Reindex(r.Context(), req.Topics)
	}
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrIndexingInProgress):
			writeError(w, http.StatusConflict, "indexing_in_progress", "another indexing run is active", h.logger)
		case errors.Is(err, rag.ErrUnknownTopic):
			writeError(w, http.StatusBadRequest, "unknown_topic", err.Error(), h.logger)
		default:
			h.logger.Error("indexing failed", "error", err, "request_id", requestIDFromContext(r.Context()))
			writeError(w, http.StatusInternalServerError, "index_failed", "failed to index documents", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{
		Success:          true,
		DocumentsIndexed: count,
		TopicsIndexed:    topics,
		Message:          fmt.Sprintf("Successfully indexed %d document chunks", count),
	}, h.logger)
}
