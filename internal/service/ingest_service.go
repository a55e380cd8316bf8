package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/workflow"
)

var (
	ErrNoQuestions     = errors.New("callback contained no questions")
	ErrMissingFilename = errors.New("callback is missing original_filename")
)

// IngestedQuestion is one extracted question delivered by the document
// processing pipeline.
type IngestedQuestion struct {
	OriginalSheetName  *string  `json:"original_sheet_name"`
	OriginalRowNumber  *int     `json:"original_row_number"`
	SectionHeader      *string  `json:"section_header"`
	QuestionText       string   `json:"identified_question_text"`
	AIGeneratedAnswer  *string  `json:"ai_generated_answer"`
	ConfidenceText     *string  `json:"confidence_text"`
	ConfidenceScore    *float64 `json:"confidence_score_calculated"`
	ReviewRequiredText *string  `json:"review_required_text"`
	SourcesText        *string  `json:"sources_text"`
}

// IngestPayload is the full completion callback from the pipeline.
type IngestPayload struct {
	JobID            string             `json:"job_id"`
	OriginalFilename string             `json:"original_filename"`
	ClientName       *string            `json:"client_name"`
	DisplayRfpID     *string            `json:"display_rfp_id"`
	Questions        []IngestedQuestion `json:"questions"`
}

// IngestService persists pipeline results as a project with its questions
type IngestService struct {
	db           *sql.DB
	projectRepo  *repository.ProjectRepository
	questionRepo *repository.QuestionRepository
}

// NewIngestService creates a new ingest service
func NewIngestService(
	db *sql.DB,
	projectRepo *repository.ProjectRepository,
	questionRepo *repository.QuestionRepository,
) *IngestService {
	return &IngestService{
		db:           db,
		projectRepo:  projectRepo,
		questionRepo: questionRepo,
	}
}

// HandleCallback creates the project and all its questions in a single
// transaction. Every question starts in Draft. Partial imports never become
// visible.
func (s *IngestService) HandleCallback(payload *IngestPayload) (*models.Project, error) {
	if len(payload.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if payload.OriginalFilename == "" {
		return nil, ErrMissingFilename
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("Failed to rollback ingest transaction", "error", err)
		}
	}()

	project := &models.Project{
		DisplayRfpID:     payload.DisplayRfpID,
		OriginalFilename: payload.OriginalFilename,
		ClientName:       payload.ClientName,
		Tags:             []string{},
		Status:           "Completed",
		JobID:            &payload.JobID,
	}

	if err := s.projectRepo.CreateTx(tx, project); err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(payload.Questions))
	for i, in := range payload.Questions {
		questions[i] = models.Question{
			OriginalSheetName:  in.OriginalSheetName,
			OriginalRowNumber:  in.OriginalRowNumber,
			SectionHeader:      in.SectionHeader,
			QuestionText:       in.QuestionText,
			AIGeneratedAnswer:  in.AIGeneratedAnswer,
			ConfidenceText:     in.ConfidenceText,
			ConfidenceScore:    in.ConfidenceScore,
			ReviewRequiredText: in.ReviewRequiredText,
			SourcesText:        in.SourcesText,
			Status:             string(workflow.StatusDraft),
		}
	}

	if err := s.questionRepo.BulkInsertTx(tx, project.ID, questions); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingest: %w", err)
	}

	slog.Info("Ingested RFP document",
		"project_id", project.ID,
		"job_id", payload.JobID,
		"questions", len(questions),
	)

	return project, nil
}
