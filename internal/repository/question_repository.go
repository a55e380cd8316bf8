package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rfp-hub/internal/models"
)

var (
	ErrQuestionNotFound = errors.New("question not found")

	// ErrUnknownAssigneeField guards the two assignable columns. Anything
	// else is rejected before SQL is built.
	ErrUnknownAssigneeField = errors.New("unknown assignee field")
)

// Assignable question columns.
const (
	FieldEditor   = "editor_id"
	FieldReviewer = "reviewer_id"
)

// QuestionRepository handles RFP question database operations
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, project_id, original_sheet_name, original_row_number, section_header,
       identified_question_text, ai_generated_answer, edited_answer, confidence_text,
       confidence_score_calculated, review_required_text, sources_text, status,
       editor_id, reviewer_id, last_edited_at, last_edited_by, last_status_change_at`

func scanQuestion(scanner interface{ Scan(...interface{}) error }) (*models.Question, error) {
	q := &models.Question{}
	err := scanner.Scan(
		&q.ID,
		&q.ProjectID,
		&q.OriginalSheetName,
		&q.OriginalRowNumber,
		&q.SectionHeader,
		&q.QuestionText,
		&q.AIGeneratedAnswer,
		&q.EditedAnswer,
		&q.ConfidenceText,
		&q.ConfidenceScore,
		&q.ReviewRequiredText,
		&q.SourcesText,
		&q.Status,
		&q.EditorID,
		&q.ReviewerID,
		&q.LastEditedAt,
		&q.LastEditedBy,
		&q.LastStatusChangeAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a question by ID
func (r *QuestionRepository) GetByID(id string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM rfp_questions WHERE id = $1`

	q, err := scanQuestion(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return q, nil
}

// ListByProject retrieves all questions in a project in document order
func (r *QuestionRepository) ListByProject(projectID string) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM rfp_questions
		WHERE project_id = $1
		ORDER BY original_sheet_name NULLS FIRST, original_row_number NULLS FIRST, id`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// UpdateStatus sets a question's status and stamps last_status_change_at,
// returning the updated row.
func (r *QuestionRepository) UpdateStatus(id, status string) (*models.Question, error) {
	query := `
		UPDATE rfp_questions
		SET status = $1, last_status_change_at = $2
		WHERE id = $3
		RETURNING ` + questionColumns

	q, err := scanQuestion(r.db.QueryRow(query, status, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update question status: %w", err)
	}

	return q, nil
}

// UpdateAssignee sets one of the two assignment slots. A nil userID clears
// the slot. Returns the updated row.
func (r *QuestionRepository) UpdateAssignee(id, field string, userID *string) (*models.Question, error) {
	var column string
	switch field {
	case FieldEditor:
		column = "editor_id"
	case FieldReviewer:
		column = "reviewer_id"
	default:
		return nil, ErrUnknownAssigneeField
	}

	query := `
		UPDATE rfp_questions
		SET ` + column + ` = $1
		WHERE id = $2
		RETURNING ` + questionColumns

	q, err := scanQuestion(r.db.QueryRow(query, userID, id))
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update assignee: %w", err)
	}

	return q, nil
}

// UpdateResponse replaces the human-edited answer and stamps who edited it
// and when. The AI-generated answer is never touched. Returns the updated row.
func (r *QuestionRepository) UpdateResponse(id, editedAnswer, editedBy string) (*models.Question, error) {
	query := `
		UPDATE rfp_questions
		SET edited_answer = $1, last_edited_at = $2, last_edited_by = $3
		WHERE id = $4
		RETURNING ` + questionColumns

	q, err := scanQuestion(r.db.QueryRow(query, editedAnswer, time.Now(), editedBy, id))
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}

	return q, nil
}

// BulkInsertTx inserts extracted questions within an existing transaction.
// IDs and project IDs are filled in on the passed slice.
func (r *QuestionRepository) BulkInsertTx(tx *sql.Tx, projectID string, questions []models.Question) error {
	query := `
		INSERT INTO rfp_questions (project_id, original_sheet_name, original_row_number, section_header,
			identified_question_text, ai_generated_answer, confidence_text, confidence_score_calculated,
			review_required_text, sources_text, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare question insert: %w", err)
	}
	defer stmt.Close()

	for i := range questions {
		q := &questions[i]
		q.ProjectID = projectID
		err := stmt.QueryRow(
			projectID,
			q.OriginalSheetName,
			q.OriginalRowNumber,
			q.SectionHeader,
			q.QuestionText,
			q.AIGeneratedAnswer,
			q.ConfidenceText,
			q.ConfidenceScore,
			q.ReviewRequiredText,
			q.SourcesText,
			q.Status,
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i, err)
		}
	}

	return nil
}
