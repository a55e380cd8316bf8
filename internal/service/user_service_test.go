package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-hub/internal/auth"
	"rfp-hub/internal/config"
	"rfp-hub/internal/email"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

const testAdminID = "55555555-5555-4555-8555-555555555555"

var userColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name", "role", "is_active",
	"invited_at", "joined_at", "last_login_at", "created_at", "updated_at",
}

func userRow(id, emailAddr, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(
		id, emailAddr, "", "Ada", "Lovelace", role, true,
		nil, &now, nil, now, now,
	)
}

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authSvc := auth.NewService(&config.JWTConfig{
		Secret:            "test-secret-change-in-production",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
		InviteExpiration:  72 * time.Hour,
	})
	emailSvc := email.NewService(&config.EmailConfig{})

	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		authSvc,
		emailSvc,
		config.RetryConfig{MaxAttempts: 2, Delay: 0},
	)
	return svc, mock
}

func TestUpdateRoleRejectsSelfDemotionBeforeAnyWrite(t *testing.T) {
	svc, mock := newUserService(t)

	_, err := svc.UpdateRole(testAdminID, testAdminID, models.RoleMember)
	require.ErrorIs(t, err, ErrSelfDemotion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleAllowsSelfAssignAdmin(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleAdmin, sqlmock.AnyArg(), testAdminID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(testAdminID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(testAdminID).
		WillReturnRows(userRow(testAdminID, "ada@example.com", models.RoleAdmin))

	user, err := svc.UpdateRole(testAdminID, testAdminID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	svc, mock := newUserService(t)

	_, err := svc.UpdateRole(testAdminID, testUserID, "superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleRetriesOnceOnTransientFailure(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleAdmin, sqlmock.AnyArg(), testUserID).
		WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleAdmin, sqlmock.AnyArg(), testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(testUserID).
		WillReturnRows(userRow(testUserID, "grace@example.com", models.RoleAdmin))

	user, err := svc.UpdateRole(testAdminID, testUserID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleGivesUpAfterRetryBudget(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleMember, sqlmock.AnyArg(), testUserID).
		WillReturnError(&pq.Error{Code: "40P01"})
	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleMember, sqlmock.AnyArg(), testUserID).
		WillReturnError(&pq.Error{Code: "40P01"})

	_, err := svc.UpdateRole(testAdminID, testUserID, models.RoleMember)
	require.ErrorIs(t, err, repository.ErrUserSyncPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleDoesNotRetryPermanentErrors(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectExec("UPDATE users").
		WithArgs(models.RoleMember, sqlmock.AnyArg(), testUserID).
		WillReturnError(errors.New("connection refused"))

	_, err := svc.UpdateRole(testAdminID, testUserID, models.RoleMember)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrUserSyncPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRejectsSelfDeletionBeforeAnyWrite(t *testing.T) {
	svc, mock := newUserService(t)

	err := svc.Delete(testAdminID, testAdminID)
	require.ErrorIs(t, err, ErrSelfDeletion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRetriesOnTransientFailure(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(testUserID).
		WillReturnError(&pq.Error{Code: "55P03"})
	mock.ExpectExec("DELETE FROM users").
		WithArgs(testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Delete(testAdminID, testUserID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRejectsUnknownRole(t *testing.T) {
	svc, mock := newUserService(t)

	_, err := svc.Invite("Ada Lovelace", "new@example.com", "owner")
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRejectsExistingEmail(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("ada@example.com").
		WillReturnRows(userRow(testUserID, "ada@example.com", models.RoleMember))

	_, err := svc.Invite("Grace Hopper", "ada@example.com", models.RoleMember)
	require.ErrorIs(t, err, repository.ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
