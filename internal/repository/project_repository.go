package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rfp-hub/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository handles RFP project database operations
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, display_rfp_id, original_filename, client_name, description, due_date,
       tags, value_range, status, job_id, uploaded_at, completed_at, project_lead_id`

// CreateTx inserts a project row within an existing transaction.
func (r *ProjectRepository) CreateTx(tx *sql.Tx, project *models.Project) error {
	query := `
		INSERT INTO rfp_projects (display_rfp_id, original_filename, client_name, description, due_date, tags, value_range, status, job_id, completed_at, project_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, uploaded_at
	`

	err := tx.QueryRow(
		query,
		project.DisplayRfpID,
		project.OriginalFilename,
		project.ClientName,
		project.Description,
		project.DueDate,
		pq.Array(project.Tags),
		project.ValueRange,
		project.Status,
		project.JobID,
		project.CompletedAt,
		project.ProjectLeadID,
	).Scan(&project.ID, &project.UploadedAt)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM rfp_projects WHERE id = $1`

	project := &models.Project{}
	err := r.db.QueryRow(query, id).Scan(
		&project.ID,
		&project.DisplayRfpID,
		&project.OriginalFilename,
		&project.ClientName,
		&project.Description,
		&project.DueDate,
		pq.Array(&project.Tags),
		&project.ValueRange,
		&project.Status,
		&project.JobID,
		&project.UploadedAt,
		&project.CompletedAt,
		&project.ProjectLeadID,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// GetAll retrieves all projects, newest first
func (r *ProjectRepository) GetAll() ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM rfp_projects ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID,
			&project.DisplayRfpID,
			&project.OriginalFilename,
			&project.ClientName,
			&project.Description,
			&project.DueDate,
			pq.Array(&project.Tags),
			&project.ValueRange,
			&project.Status,
			&project.JobID,
			&project.UploadedAt,
			&project.CompletedAt,
			&project.ProjectLeadID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Delete removes a project and, via cascade, its questions and comments
func (r *ProjectRepository) Delete(id string) error {
	query := `DELETE FROM rfp_projects WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
