package handlers

import (
	"net/http"
	"strconv"

	"rfp-hub/internal/repository"
)

// Audit log listing bounds.
const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditHandler exposes the audit trail to administrators
type AuditHandler struct {
	auditRepo *repository.AuditRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List handles GET /api/admin/audit-logs
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.auditRepo.ListRecent(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
	})
}
