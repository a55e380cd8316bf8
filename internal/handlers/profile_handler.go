package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/pkg/validator"
)

// ProfileHandler handles profile reads and edits. Any authenticated user can
// work with their own profile; targeting another user's profile requires the
// admin role.
type ProfileHandler struct {
	userService *service.UserService
	auditMw     *middleware.AuditMiddleware
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService *service.UserService, auditMw *middleware.AuditMiddleware) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		auditMw:     auditMw,
	}
}

// resolveTarget maps an optional userId parameter to the profile being acted
// on. An empty target means the caller's own profile; anyone else's profile
// is reachable only with the admin role.
func resolveTarget(identity *middleware.Identity, userID string) (string, int, string) {
	if userID == "" || userID == identity.UserID {
		return identity.UserID, 0, ""
	}
	if !validator.IsValidUUID(userID) {
		return "", http.StatusBadRequest, "A valid userId is required"
	}
	if identity.Role != models.RoleAdmin {
		return "", http.StatusForbidden, "Only admins may access another user's profile"
	}
	return userID, 0, ""
}

// Get handles GET /api/user/profile. An optional userId query parameter
// selects another user's profile (admins only).
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	targetID, status, msg := resolveTarget(identity, r.URL.Query().Get("userId"))
	if status != 0 {
		respondWithError(w, status, msg)
		return
	}

	user, err := h.userService.Get(targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile": user,
	})
}

type updateProfileRequest struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Update handles PATCH /api/user/profile. An optional userId in the body
// selects another user's profile (admins only).
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	targetID, status, msg := resolveTarget(identity, req.UserID)
	if status != 0 {
		respondWithError(w, status, msg)
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" && req.LastName == "" {
		respondWithError(w, http.StatusBadRequest, "At least one name field is required")
		return
	}

	user, err := h.userService.UpdateProfile(targetID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if targetID != identity.UserID {
		_ = h.auditMw.LogAction(&identity.UserID, "admin.user.profile_updated", user.Email, "", getIP(r), r.UserAgent())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"profile": user,
	})
}
