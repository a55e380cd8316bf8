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

	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
)

func newCommentHandler(t *testing.T) (*CommentHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)

	commentSvc := service.NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewQuestionRepository(db),
	)
	return NewCommentHandler(commentSvc), mock
}

func TestCreateCommentResponseShape(t *testing.T) {
	handler, mock := newCommentHandler(t)

	mock.ExpectQuery("FROM rfp_questions WHERE id").
		WithArgs(testQuestionID).
		WillReturnRows(questionTestRow("Draft"))
	mock.ExpectQuery("INSERT INTO rfp_comments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("44444444-4444-4444-8444-444444444444", time.Now()))

	body := `{"questionId":"` + testQuestionID + `","commentText":"Looks good."}`
	req := httptest.NewRequest(http.MethodPost, "/api/rfp-comments/create", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	comment, ok := resp["comment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", comment["user_display_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentEmptyTextReturns400(t *testing.T) {
	handler, mock := newCommentHandler(t)

	body := `{"questionId":"` + testQuestionID + `","commentText":"   "}`
	req := httptest.NewRequest(http.MethodPost, "/api/rfp-comments/create", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentRequiresIdentity(t *testing.T) {
	handler, mock := newCommentHandler(t)

	body := `{"questionId":"` + testQuestionID + `","commentText":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rfp-comments/create", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
