package handlers

import (
	"errors"
	"net/http"

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
	"rfp-hub/pkg/validator"
)

// ProjectHandler handles RFP project endpoints
type ProjectHandler struct {
	projectRepo     *repository.ProjectRepository
	questionService *service.QuestionService
	auditMw         *middleware.AuditMiddleware
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	projectRepo *repository.ProjectRepository,
	questionService *service.QuestionService,
	auditMw *middleware.AuditMiddleware,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:     projectRepo,
		questionService: questionService,
		auditMw:         auditMw,
	}
}

// List handles GET /api/rfp-projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.GetAll()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

// Get handles GET /api/rfp-projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validator.IsValidUUID(id) {
		respondWithError(w, http.StatusBadRequest, "A valid project ID is required")
		return
	}

	project, err := h.projectRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgProjectNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	respondWithJSON(w, http.StatusOK, project)
}

// ListQuestions handles GET /api/rfp-projects/{id}/questions
func (h *ProjectHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validator.IsValidUUID(id) {
		respondWithError(w, http.StatusBadRequest, "A valid project ID is required")
		return
	}

	if _, err := h.projectRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgProjectNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	questions, err := h.questionService.ListByProject(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list questions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
	})
}

// Delete handles DELETE /api/admin/projects/{id}. Cascades to the
// project's questions and comments.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id := r.PathValue("id")
	if !validator.IsValidUUID(id) {
		respondWithError(w, http.StatusBadRequest, "A valid project ID is required")
		return
	}

	if err := h.projectRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgProjectNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	_ = h.auditMw.LogAction(&identity.UserID, "admin.project.deleted", id, "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}
