package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/pkg/validator"
)

// AdminHandler handles workspace member administration
type AdminHandler struct {
	userService *service.UserService
	auditMw     *middleware.AuditMiddleware
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userService *service.UserService, auditMw *middleware.AuditMiddleware) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		auditMw:     auditMw,
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteUser handles POST /api/admin/invite-user
func (h *AdminHandler) InviteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validator.IsValidEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	user, err := h.userService.Invite(identity.User.DisplayName(), req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			respondWithError(w, http.StatusBadRequest, "Role must be admin or member")
		case errors.Is(err, repository.ErrUserExists):
			respondWithError(w, http.StatusBadRequest, "A user with this email already exists")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to invite user")
		}
		return
	}

	_ = h.auditMw.LogAction(&identity.UserID, "admin.user.invited", user.Email, "role="+req.Role, getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Invitation sent"})
}

type updateRoleRequest struct {
	UserID  string `json:"userId"`
	NewRole string `json:"newRole"`
}

// UpdateRole handles POST /api/admin/update-user-role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.UserID) {
		respondWithError(w, http.StatusBadRequest, "A valid userId is required")
		return
	}

	user, err := h.userService.UpdateRole(identity.UserID, req.UserID, req.NewRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			respondWithError(w, http.StatusBadRequest, "Role must be admin or member")
		case errors.Is(err, service.ErrSelfDemotion):
			respondWithError(w, http.StatusBadRequest, ErrMsgSelfDemotion)
		case errors.Is(err, repository.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
		case errors.Is(err, repository.ErrUserSyncPending):
			respondWithError(w, http.StatusInternalServerError, "User record is busy, please retry")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update role")
		}
		return
	}

	_ = h.auditMw.LogAction(&identity.UserID, "admin.user.role_updated", user.Email, "role="+req.NewRole, getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Role updated",
		"updated": user,
	})
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

// DeleteUser handles POST /api/admin/delete-user
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.UserID) {
		respondWithError(w, http.StatusBadRequest, "A valid userId is required")
		return
	}

	if err := h.userService.Delete(identity.UserID, req.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDeletion):
			respondWithError(w, http.StatusBadRequest, ErrMsgSelfDeletion)
		case errors.Is(err, repository.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
		case errors.Is(err, repository.ErrUserSyncPending):
			respondWithError(w, http.StatusInternalServerError, "User record is busy, please retry")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	_ = h.auditMw.LogAction(&identity.UserID, "admin.user.deleted", req.UserID, "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
