package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/internal/workflow"
	"rfp-hub/pkg/validator"
)

// QuestionHandler handles question workflow endpoints
type QuestionHandler struct {
	questionService *service.QuestionService
	auditMw         *middleware.AuditMiddleware
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionService *service.QuestionService, auditMw *middleware.AuditMiddleware) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		auditMw:         auditMw,
	}
}

// Get handles GET /api/rfp-questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validator.IsValidUUID(id) {
		respondWithError(w, http.StatusBadRequest, "A valid question ID is required")
		return
	}

	question, err := h.questionService.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load question")
		return
	}

	respondWithJSON(w, http.StatusOK, question)
}

type updateStatusRequest struct {
	QuestionID string `json:"questionId"`
	NewStatus  string `json:"newStatus"`
}

// UpdateStatus handles POST /api/rfp-questions/update-status
func (h *QuestionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.QuestionID) {
		respondWithError(w, http.StatusBadRequest, "A valid questionId is required")
		return
	}

	question, err := h.questionService.SetStatus(req.QuestionID, req.NewStatus)
	if err != nil {
		var unknown *workflow.ErrUnknownStatus
		switch {
		case errors.As(err, &unknown):
			respondWithError(w, http.StatusBadRequest, unknown.Error())
		case errors.Is(err, service.ErrTransitionRejected):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrQuestionNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update status")
		}
		return
	}

	if identity != nil {
		_ = h.auditMw.LogAction(&identity.UserID, "question.status_updated", req.QuestionID, "status="+req.NewStatus, getIP(r), r.UserAgent())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"question": question,
	})
}

type updateAssigneeRequest struct {
	QuestionID string  `json:"questionId"`
	Field      string  `json:"field"`
	Value      *string `json:"value"`
}

// UpdateAssignee handles POST /api/rfp-questions/update-assignee
func (h *QuestionHandler) UpdateAssignee(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)

	var req updateAssigneeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.QuestionID) {
		respondWithError(w, http.StatusBadRequest, "A valid questionId is required")
		return
	}

	question, err := h.questionService.UpdateAssignee(req.QuestionID, req.Field, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUnknownAssigneeField):
			respondWithError(w, http.StatusBadRequest, "Field must be editor_id or reviewer_id")
		case errors.Is(err, service.ErrInvalidAssigneeID):
			respondWithError(w, http.StatusBadRequest, "Value must be a valid user ID or null")
		case errors.Is(err, service.ErrAssigneeNotFound):
			respondWithError(w, http.StatusBadRequest, "Assignee does not exist")
		case errors.Is(err, repository.ErrQuestionNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update assignee")
		}
		return
	}

	if identity != nil {
		_ = h.auditMw.LogAction(&identity.UserID, "question.assignee_updated", req.QuestionID, "field="+req.Field, getIP(r), r.UserAgent())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Assignee updated",
		"updatedQuestion": question,
	})
}

type updateResponseRequest struct {
	QuestionID   string  `json:"questionId"`
	EditedAnswer *string `json:"editedAnswer"`
}

// UpdateResponse handles POST /api/rfp-questions/update-response
func (h *QuestionHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req updateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if !validator.IsValidUUID(req.QuestionID) {
		respondWithError(w, http.StatusBadRequest, "A valid questionId is required")
		return
	}
	if req.EditedAnswer == nil {
		respondWithError(w, http.StatusBadRequest, "editedAnswer is required")
		return
	}

	question, err := h.questionService.UpdateResponse(req.QuestionID, *req.EditedAnswer, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgQuestionNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update response")
		return
	}

	_ = h.auditMw.LogAction(&identity.UserID, "question.response_updated", req.QuestionID, "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"question": question,
	})
}
