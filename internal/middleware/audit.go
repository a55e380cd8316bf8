package middleware

import (
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

// AuditMiddleware logs security-related actions
type AuditMiddleware struct {
	auditRepo *repository.AuditRepository
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditRepo *repository.AuditRepository) *AuditMiddleware {
	return &AuditMiddleware{auditRepo: auditRepo}
}

// LogAction records an audit entry. Handlers call this after a mutation
// succeeds; failures are the caller's to ignore, auditing must not block
// the request.
func (m *AuditMiddleware) LogAction(userID *string, action, resource, details, ipAddress, userAgent string) error {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	return m.auditRepo.Create(entry)
}
