package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/pkg/validator"
)

// CommentHandler handles question comment endpoints
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type createCommentRequest struct {
	QuestionID  string `json:"questionId"`
	CommentText string `json:"commentText"`
}

// Create handles POST /api/rfp-comments/create. The author identity comes
// from the session; any author fields in the body are ignored.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.QuestionID) {
		respondWithError(w, http.StatusBadRequest, "A valid questionId is required")
		return
	}

	comment, err := h.commentService.Create(req.QuestionID, req.CommentText, identity.User)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			respondWithError(w, http.StatusBadRequest, "Comment text must not be empty")
		case errors.Is(err, repository.ErrQuestionNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create comment")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"comment": comment,
	})
}

// List handles GET /api/rfp-questions/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if !validator.IsValidUUID(questionID) {
		respondWithError(w, http.StatusBadRequest, "A valid question ID is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}
	after := r.URL.Query().Get("after")

	comments, err := h.commentService.List(questionID, limit, after)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to list comments")
		return
	}

	total, err := h.commentService.Count(questionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list comments")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
		"total":    total,
	})
}
