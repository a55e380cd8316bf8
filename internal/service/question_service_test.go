package service

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-hub/internal/repository"
	"rfp-hub/internal/workflow"
)

const (
	testQuestionID = "11111111-1111-4111-8111-111111111111"
	testUserID     = "22222222-2222-4222-8222-222222222222"
)

var questionColumns = []string{
	"id", "project_id", "original_sheet_name", "original_row_number", "section_header",
	"identified_question_text", "ai_generated_answer", "edited_answer", "confidence_text",
	"confidence_score_calculated", "review_required_text", "sources_text", "status",
	"editor_id", "reviewer_id", "last_edited_at", "last_edited_by", "last_status_change_at",
}

func questionRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(questionColumns).AddRow(
		testQuestionID, "33333333-3333-4333-8333-333333333333", nil, nil, nil,
		"How is customer data encrypted at rest?", "AES-256.", nil, nil,
		nil, nil, nil, status,
		nil, nil, nil, nil, nil,
	)
}

func newQuestionService(t *testing.T) (*QuestionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewQuestionService(
		repository.NewQuestionRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, mock
}

func TestSetStatusSameStatusIsNoOp(t *testing.T) {
	svc, mock := newQuestionService(t)

	// Only the read should hit the database; no UPDATE is issued.
	mock.ExpectQuery("FROM rfp_questions WHERE id").
		WithArgs(testQuestionID).
		WillReturnRows(questionRow("Draft"))

	question, err := svc.SetStatus(testQuestionID, "Draft")
	require.NoError(t, err)
	assert.Equal(t, "Draft", question.Status)
	assert.Nil(t, question.LastStatusChangeAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusTransitions(t *testing.T) {
	svc, mock := newQuestionService(t)

	mock.ExpectQuery("FROM rfp_questions WHERE id").
		WithArgs(testQuestionID).
		WillReturnRows(questionRow("Draft"))
	mock.ExpectQuery("UPDATE rfp_questions").
		WithArgs("Approved", sqlmock.AnyArg(), testQuestionID).
		WillReturnRows(questionRow("Approved"))

	question, err := svc.SetStatus(testQuestionID, "Approved")
	require.NoError(t, err)
	assert.Equal(t, "Approved", question.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusRejectsUnknownLabelBeforeAnyQuery(t *testing.T) {
	svc, mock := newQuestionService(t)

	_, err := svc.SetStatus(testQuestionID, "Done")
	var unknown *workflow.ErrUnknownStatus
	require.ErrorAs(t, err, &unknown)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssigneeRejectsUnknownField(t *testing.T) {
	svc, mock := newQuestionService(t)

	_, err := svc.UpdateAssignee(testQuestionID, "owner_id", nil)
	require.ErrorIs(t, err, repository.ErrUnknownAssigneeField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssigneeRejectsMalformedID(t *testing.T) {
	svc, mock := newQuestionService(t)

	bad := "not-a-uuid"
	_, err := svc.UpdateAssignee(testQuestionID, repository.FieldEditor, &bad)
	require.ErrorIs(t, err, ErrInvalidAssigneeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssigneeRejectsUnknownUser(t *testing.T) {
	svc, mock := newQuestionService(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	userID := testUserID
	_, err := svc.UpdateAssignee(testQuestionID, repository.FieldReviewer, &userID)
	require.ErrorIs(t, err, ErrAssigneeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssigneeSetsEditor(t *testing.T) {
	svc, mock := newQuestionService(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("UPDATE rfp_questions").
		WithArgs(testUserID, testQuestionID).
		WillReturnRows(questionRow("Draft"))

	userID := testUserID
	_, err := svc.UpdateAssignee(testQuestionID, repository.FieldEditor, &userID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssigneeClearsSlotWithoutExistenceCheck(t *testing.T) {
	svc, mock := newQuestionService(t)

	mock.ExpectQuery("UPDATE rfp_questions").
		WithArgs(nil, testQuestionID).
		WillReturnRows(questionRow("Draft"))

	_, err := svc.UpdateAssignee(testQuestionID, repository.FieldReviewer, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateResponsePreservesAIAnswer(t *testing.T) {
	svc, mock := newQuestionService(t)

	updated := sqlmock.NewRows(questionColumns).AddRow(
		testQuestionID, "33333333-3333-4333-8333-333333333333", nil, nil, nil,
		"How is customer data encrypted at rest?", "AES-256.", "AES-256 with customer-managed keys.", nil,
		nil, nil, nil, "Draft",
		nil, nil, nil, nil, nil,
	)
	mock.ExpectQuery("UPDATE rfp_questions").
		WithArgs("AES-256 with customer-managed keys.", sqlmock.AnyArg(), testUserID, testQuestionID).
		WillReturnRows(updated)

	question, err := svc.UpdateResponse(testQuestionID, "AES-256 with customer-managed keys.", testUserID)
	require.NoError(t, err)
	require.NotNil(t, question.AIGeneratedAnswer)
	assert.Equal(t, "AES-256.", *question.AIGeneratedAnswer)
	assert.Equal(t, "AES-256 with customer-managed keys.", question.DisplayAnswer())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusPropagatesNotFound(t *testing.T) {
	svc, mock := newQuestionService(t)

	mock.ExpectQuery("FROM rfp_questions WHERE id").
		WithArgs(testQuestionID).
		WillReturnError(errors.New("sql: no rows in result set"))

	_, err := svc.SetStatus(testQuestionID, "Approved")
	require.Error(t, err)
}
