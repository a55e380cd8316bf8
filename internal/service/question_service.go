package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/workflow"
)

var (
	ErrInvalidAssigneeID  = errors.New("assignee must be a valid user ID or null")
	ErrAssigneeNotFound   = errors.New("assignee does not exist")
	ErrTransitionRejected = errors.New("status transition not allowed")
)

// QuestionService handles question workflow business logic
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	userRepo     *repository.UserRepository
}

// NewQuestionService creates a new question service
func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
	}
}

// Get returns one question by ID
func (s *QuestionService) Get(id string) (*models.Question, error) {
	return s.questionRepo.GetByID(id)
}

// ListByProject returns a project's questions in document order
func (s *QuestionService) ListByProject(projectID string) ([]models.Question, error) {
	return s.questionRepo.ListByProject(projectID)
}

// SetStatus moves a question to a new workflow status. Setting the current
// status again is a no-op that leaves the row, including its status change
// timestamp, untouched.
func (s *QuestionService) SetStatus(questionID, newStatus string) (*models.Question, error) {
	target, err := workflow.Parse(newStatus)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	current := workflow.Status(question.Status)
	if current == target {
		return question, nil
	}

	if !workflow.CanTransition(current, target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTransitionRejected, current, target)
	}

	return s.questionRepo.UpdateStatus(questionID, string(target))
}

// UpdateAssignee sets or clears one of a question's two assignment slots.
// The other slot is never touched. A non-nil assignee must be an existing
// user.
func (s *QuestionService) UpdateAssignee(questionID, field string, userID *string) (*models.Question, error) {
	if field != repository.FieldEditor && field != repository.FieldReviewer {
		return nil, repository.ErrUnknownAssigneeField
	}

	if userID != nil {
		if _, err := uuid.Parse(*userID); err != nil {
			return nil, ErrInvalidAssigneeID
		}
		exists, err := s.userRepo.Exists(*userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrAssigneeNotFound
		}
	}

	return s.questionRepo.UpdateAssignee(questionID, field, userID)
}

// UpdateResponse replaces a question's human-edited answer and records the
// editor. The AI-generated answer is preserved as-is.
func (s *QuestionService) UpdateResponse(questionID, editedAnswer, editorID string) (*models.Question, error) {
	return s.questionRepo.UpdateResponse(questionID, editedAnswer, editorID)
}
