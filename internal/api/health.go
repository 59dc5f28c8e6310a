package api

import (
	"net/http"

	"github.com/docside/docside/internal/log"
)

// HealthResponse reports service health and index readiness.
type HealthResponse struct {
	Status           string `json:"status"`
	State            string `json:"state"`
	VectorStoreReady bool   `json:"vector_store_ready"`
	IndexedDocuments int    `json:"indexed_documents"`
}

type healthHandler struct {
	assistant Assistant
	logger    log.Logger
}

func (h *healthHandler) check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "healthy",
		State:            h.assistant.State().String(),
		VectorStoreReady: h.assistant.IsReady(),
		IndexedDocuments: h.assistant.DocumentCount(),
	}, h.logger)
}
