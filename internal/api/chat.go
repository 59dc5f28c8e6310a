package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"unicode/utf8"

	"github.com/docside/docside/internal/log"
	"github.com/docside/docside/internal/rag"
)

// maxQuestionLength bounds the accepted question size in runes.
const maxQuestionLength = 2000

// ChatRequest is the POST /api/chat payload. Topic narrows retrieval to one
// documentation topic; empty or "all" searches everything.
type ChatRequest struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
}

// ChatResponse carries the synthesized answer with its citations.
type ChatResponse struct {
	Answer         string         `json:"answer"`
	Sources        []rag.Citation `json:"sources"`
	ProcessingTime float64        `json:"processing_time"`
}

type chatHandler struct {
	assistant Assistant
	logger    log.Logger
}

func (h *chatHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON", h.logger)
		return
	}

	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question must not be empty", h.logger)
		return
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "question exceeds maximum length of 2000 characters", h.logger)
		return
	}

	topic := req.Topic
	if topic == "all" {
		topic = ""
	}

	answer, err := h.assistant.Ask(r.Context(), req.Question, topic)
	if err != nil {
		if errors.Is(err, rag.ErrIndexingInProgress) {
			writeError(w, http.StatusServiceUnavailable, "indexing_in_progress", "index is being rebuilt, retry shortly", h.logger)
			return
		}
		h.logger.Error("chat request failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to process question", h.logger)
		return
	}

	sources := answer.Citations
	if sources == nil {
		sources = []rag.Citation{}
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:         answer.Text,
		Sources:        sources,
		ProcessingTime: math.Round(answer.Elapsed.Seconds()*100) / 100,
	}, h.logger)
}
