package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"rfp-hub/internal/service"
)

// IngestHandler receives completion callbacks from the document processing
// pipeline.
type IngestHandler struct {
	ingestService *service.IngestService
	callbackToken string
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *service.IngestService, callbackToken string) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		callbackToken: callbackToken,
	}
}

// Callback handles POST /api/ingest/rfp-results. The pipeline authenticates
// with a shared token header instead of a user session.
func (h *IngestHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Callback-Token")
	if h.callbackToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackToken)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid callback token")
		return
	}

	var payload service.IngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	project, err := h.ingestService.HandleCallback(&payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoQuestions):
			respondWithError(w, http.StatusBadRequest, "Callback must contain at least one question")
		case errors.Is(err, service.ErrMissingFilename):
			respondWithError(w, http.StatusBadRequest, "original_filename is required")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to ingest document")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"project_id": project.ID,
	})
}
