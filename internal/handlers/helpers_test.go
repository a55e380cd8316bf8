package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"rfp-hub/internal/auth"
	"rfp-hub/internal/config"
	"rfp-hub/internal/middleware"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

const (
	testAdminID    = "55555555-5555-4555-8555-555555555555"
	testMemberID   = "22222222-2222-4222-8222-222222222222"
	testQuestionID = "11111111-1111-4111-8111-111111111111"
	testProjectID  = "33333333-3333-4333-8333-333333333333"
)

// serialization_failure, the retryable class
var pqSerializationError = pq.Error{Code: "40001"}

var questionTestColumns = []string{
	"id", "project_id", "original_sheet_name", "original_row_number", "section_header",
	"identified_question_text", "ai_generated_answer", "edited_answer", "confidence_text",
	"confidence_score_calculated", "review_required_text", "sources_text", "status",
	"editor_id", "reviewer_id", "last_edited_at", "last_edited_by", "last_status_change_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTokenService() *auth.Service {
	return auth.NewService(&config.JWTConfig{
		Secret:            "test-secret-change-in-production",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
		InviteExpiration:  72 * time.Hour,
	})
}

func newAuditMiddleware(db *sql.DB) *middleware.AuditMiddleware {
	return middleware.NewAuditMiddleware(repository.NewAuditRepository(db))
}

func adminIdentity() *middleware.Identity {
	user := &models.User{
		ID:        testAdminID,
		Email:     "admin@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	return &middleware.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		User:   user,
	}
}

func questionTestRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(questionTestColumns).AddRow(
		testQuestionID, testProjectID, nil, nil, nil,
		"Do you support SSO?", "Yes, via SAML.", nil, nil,
		nil, nil, nil, status,
		nil, nil, nil, nil, nil,
	)
}

func expectAuditInsert(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("INSERT INTO audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
