package repository

import (
	"database/sql"
	"fmt"

	"rfp-hub/internal/models"
)

// CommentRepository handles question comment database operations
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and fills in its ID and creation time
func (r *CommentRepository) Create(comment *models.Comment) error {
	query := `
		INSERT INTO rfp_comments (question_id, user_id, user_display_name, user_avatar_initials, comment_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		comment.QuestionID,
		comment.UserID,
		comment.UserDisplayName,
		comment.UserAvatarInitials,
		comment.CommentText,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByQuestion retrieves a question's comments oldest first. A non-empty
// after cursor (comment ID, typically the last one of the previous page)
// limits results to comments created later than that comment, so callers can
// page forward through the thread.
func (r *CommentRepository) ListByQuestion(questionID string, limit int, after string) ([]models.Comment, error) {
	query := `
		SELECT id, question_id, user_id, user_display_name, user_avatar_initials, comment_text, created_at
		FROM rfp_comments
		WHERE question_id = $1
	`
	args := []interface{}{questionID}

	if after != "" {
		query += ` AND created_at > (SELECT created_at FROM rfp_comments WHERE id = $2)`
		args = append(args, after)
	}

	query += fmt.Sprintf(` ORDER BY created_at ASC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.QuestionID,
			&comment.UserID,
			&comment.UserDisplayName,
			&comment.UserAvatarInitials,
			&comment.CommentText,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// CountByQuestion returns the number of comments on a question
func (r *CommentRepository) CountByQuestion(questionID string) (int, error) {
	query := `SELECT COUNT(*) FROM rfp_comments WHERE question_id = $1`

	var count int
	if err := r.db.QueryRow(query, questionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
