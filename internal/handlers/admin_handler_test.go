package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-hub/internal/config"
	"rfp-hub/internal/email"
	"rfp-hub/internal/middleware"
	"rfp-hub/internal/repository"
	"rfp-hub/internal/service"
)

func newAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)

	userSvc := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		newTokenService(),
		email.NewService(&config.EmailConfig{}),
		config.RetryConfig{MaxAttempts: 2, Delay: 0},
	)
	return NewAdminHandler(userSvc, newAuditMiddleware(db)), mock
}

func TestUpdateRoleSelfDemotionReturns400(t *testing.T) {
	handler, mock := newAdminHandler(t)

	body := `{"userId":"` + testAdminID + `","newRole":"member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/update-user-role", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.UpdateRole(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrMsgSelfDemotion, decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleRejectsMalformedUserID(t *testing.T) {
	handler, mock := newAdminHandler(t)

	body := `{"userId":"not-a-uuid","newRole":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/update-user-role", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.UpdateRole(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleReturnsUpdatedUser(t *testing.T) {
	handler, mock := newAdminHandler(t)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(testMemberID).
		WillReturnRows(profileUserRow(testMemberID, "grace@example.com", "Grace", "Hopper", "admin"))
	expectAuditInsert(mock)

	body := `{"userId":"` + testMemberID + `","newRole":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/update-user-role", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.UpdateRole(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Role updated", resp["message"])
	updated, ok := resp["updated"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "admin", updated["role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleBusyUserReturns500(t *testing.T) {
	handler, mock := newAdminHandler(t)

	// Both attempts hit a serialization failure; the handler reports a
	// backend error after the retry budget is spent.
	mock.ExpectExec("UPDATE users").
		WillReturnError(&pqSerializationError)
	mock.ExpectExec("UPDATE users").
		WillReturnError(&pqSerializationError)

	body := `{"userId":"` + testMemberID + `","newRole":"member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/update-user-role", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.UpdateRole(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserSelfDeletionReturns400(t *testing.T) {
	handler, mock := newAdminHandler(t)

	body := `{"userId":"` + testAdminID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/delete-user", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.DeleteUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrMsgSelfDeletion, decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserUnknownTargetReturns404(t *testing.T) {
	handler, mock := newAdminHandler(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(testMemberID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := `{"userId":"` + testMemberID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/delete-user", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.DeleteUser(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteUserRejectsBadEmail(t *testing.T) {
	handler, mock := newAdminHandler(t)

	body := `{"email":"not-an-email"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/invite-user", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.InviteUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteUserExistingEmailReturns400(t *testing.T) {
	handler, mock := newAdminHandler(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("grace@example.com").
		WillReturnRows(profileUserRow(testMemberID, "grace@example.com", "Grace", "Hopper", "member"))

	body := `{"email":"grace@example.com","role":"member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/invite-user", strings.NewReader(body))
	req = middleware.WithIdentity(req, adminIdentity())
	rec := httptest.NewRecorder()

	handler.InviteUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
