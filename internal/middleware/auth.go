package middleware

import (
	"context"
	"net/http"
	"strings"

	"rfp-hub/internal/models"
	"rfp-hub/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context.
// Role comes from the live user row, not the token claim, so role changes
// take effect without waiting for token expiry.
type Identity struct {
	UserID string
	Email  string
	Role   string
	User   *models.User
}

// AuthMiddleware validates JWT tokens
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// Authenticate validates the bearer token and attaches the caller's
// identity to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		user, err := m.authSvc.ValidateAccessToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		identity := &Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
			User:   user,
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// GetIdentity retrieves the authenticated caller from the request context
func GetIdentity(r *http.Request) (*Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(*Identity)
	return identity, ok
}

// WithIdentity returns a copy of the request carrying the given identity.
// Test helper for exercising handlers without the full middleware chain.
func WithIdentity(r *http.Request, identity *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, identity))
}

// respondWithError writes a JSON error body
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
