package service

import (
	"errors"
	"strings"

	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

var ErrEmptyComment = errors.New("comment text must not be empty")

// Comment listing bounds.
const (
	DefaultCommentLimit = 100
	MaxCommentLimit     = 500
)

// CommentService handles question comment business logic
type CommentService struct {
	commentRepo  *repository.CommentRepository
	questionRepo *repository.QuestionRepository
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo *repository.CommentRepository,
	questionRepo *repository.QuestionRepository,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		questionRepo: questionRepo,
	}
}

// Create adds a comment to a question's thread. The author identity is taken
// from the authenticated user, never from the request body. Whitespace-only
// text is rejected before any write.
func (s *CommentService) Create(questionID, text string, author *models.User) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.questionRepo.GetByID(questionID); err != nil {
		return nil, err
	}

	initials := author.AvatarInitials()
	comment := &models.Comment{
		QuestionID:         questionID,
		UserID:             &author.ID,
		UserDisplayName:    author.DisplayName(),
		UserAvatarInitials: &initials,
		CommentText:        text,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// List returns a question's comments oldest first. Zero or negative limits
// fall back to the default; oversized limits are clamped. The after cursor
// pages forward: passing the ID of the last comment of one page yields the
// next one.
func (s *CommentService) List(questionID string, limit int, after string) ([]models.Comment, error) {
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	if limit > MaxCommentLimit {
		limit = MaxCommentLimit
	}

	if _, err := s.questionRepo.GetByID(questionID); err != nil {
		return nil, err
	}

	return s.commentRepo.ListByQuestion(questionID, limit, after)
}

// Count returns the total number of comments on a question, independent of
// any listing limit.
func (s *CommentService) Count(questionID string) (int, error) {
	return s.commentRepo.CountByQuestion(questionID)
}
