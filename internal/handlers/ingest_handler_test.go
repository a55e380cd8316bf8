package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
)

const testCallbackToken = "pipeline-shared-secret"

func newIngestHandler(t *testing.T, configuredToken string) (*IngestHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)

	ingestSvc := service.NewIngestService(
		db,
		repository.NewProjectRepository(db),
		repository.NewQuestionRepository(db),
	)
	return NewIngestHandler(ingestSvc, configuredToken), mock
}

func TestCallbackRejectsWrongToken(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(`{}`))
	req.Header.Set("X-Callback-Token", "wrong")
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRejectsMissingToken(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRejectsAllWhenNoTokenConfigured(t *testing.T) {
	handler, mock := newIngestHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(`{}`))
	req.Header.Set("X-Callback-Token", "")
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackMissingFilenameReturns400(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	body := `{"job_id":"job-1","questions":[{"identified_question_text":"Do you support SSO?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(body))
	req.Header.Set("X-Callback-Token", testCallbackToken)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "original_filename is required", decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRejectsEmptyQuestionList(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	body := `{"job_id":"job-1","original_filename":"rfp.xlsx","questions":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(body))
	req.Header.Set("X-Callback-Token", testCallbackToken)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackIngestsProjectAndQuestionsInOneTransaction(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rfp_projects").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).
			AddRow(testProjectID, time.Now()))
	prep := mock.ExpectPrepare("INSERT INTO rfp_questions")
	prep.ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testQuestionID))
	prep.ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("99999999-9999-4999-8999-999999999999"))
	mock.ExpectCommit()

	body := `{
		"job_id": "job-1",
		"original_filename": "rfp.xlsx",
		"client_name": "Acme Corp",
		"questions": [
			{"identified_question_text": "Do you support SSO?", "ai_generated_answer": "Yes."},
			{"identified_question_text": "Where is data stored?"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(body))
	req.Header.Set("X-Callback-Token", testCallbackToken)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, testProjectID, resp["project_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRollsBackWhenQuestionInsertFails(t *testing.T) {
	handler, mock := newIngestHandler(t, testCallbackToken)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rfp_projects").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).
			AddRow(testProjectID, time.Now()))
	prep := mock.ExpectPrepare("INSERT INTO rfp_questions")
	prep.ExpectQuery().
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	body := `{
		"job_id": "job-1",
		"original_filename": "rfp.xlsx",
		"questions": [{"identified_question_text": "Do you support SSO?"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/rfp-results", strings.NewReader(body))
	req.Header.Set("X-Callback-Token", testCallbackToken)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
