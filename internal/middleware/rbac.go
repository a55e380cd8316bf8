package middleware

import (
	"net/http"
)

// HasRole is the authorization predicate for role-gated routes. Admins
// qualify for every role; other roles must match exactly.
func HasRole(identity *Identity, role string) bool {
	if identity == nil {
		return false
	}
	if identity.Role == "admin" {
		return true
	}
	return identity.Role == role
}

// RBACMiddleware handles role-based access control
type RBACMiddleware struct{}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware() *RBACMiddleware {
	return &RBACMiddleware{}
}

// RequireRole rejects callers whose identity does not satisfy the role
func (m *RBACMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			if !HasRole(identity, role) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
