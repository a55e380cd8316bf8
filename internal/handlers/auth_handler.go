package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	auditMw     *middleware.AuditMiddleware
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditMw *middleware.AuditMiddleware) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditMw:     auditMw,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	pair, user, err := h.authService.Login(req.Email, req.Password, getIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrUserInactive) {
			respondWithError(w, http.StatusForbidden, "Account is inactive")
			return
		}
		_ = h.auditMw.LogAction(nil, "auth.login.failed", req.Email, "", getIP(r), r.UserAgent())
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	_ = h.auditMw.LogAction(&user.ID, "auth.login", user.Email, "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		respondWithError(w, http.StatusBadRequest, "Missing bearer token")
		return
	}

	if err := h.authService.Logout(parts[1]); err != nil {
		slog.Error("Logout failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	pair, user, err := h.authService.Refresh(req.RefreshToken, getIP(r), r.UserAgent())
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

type acceptInviteRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AcceptInvite handles POST /api/auth/accept-invite
func (h *AuthHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invite token is required")
		return
	}
	if len(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	user, err := h.authService.AcceptInvite(req.Token, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotPending):
			respondWithError(w, http.StatusBadRequest, "Invitation has already been accepted")
		case errors.Is(err, repository.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid or expired invite token")
		}
		return
	}

	_ = h.auditMw.LogAction(&user.ID, "auth.invite.accepted", user.Email, "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Invitation accepted",
		"user":    user,
	})
}
