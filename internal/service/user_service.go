package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rfp-hub/internal/auth"
	"rfp-hub/internal/config"
	"rfp-hub/internal/email"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

var (
	ErrInvalidRole  = errors.New("invalid role specified")
	ErrSelfDemotion = errors.New("admins cannot demote themselves")
	ErrSelfDeletion = errors.New("admins cannot delete their own account")
)

// UserService handles workspace member management
type UserService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	authSvc     *auth.Service
	emailSvc    *email.Service
	retry       config.RetryConfig
}

// NewUserService creates a new user service
func NewUserService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	authSvc *auth.Service,
	emailSvc *email.Service,
	retry config.RetryConfig,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		authSvc:     authSvc,
		emailSvc:    emailSvc,
		retry:       retry,
	}
}

// List returns all workspace members
func (s *UserService) List() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// Get returns one user by ID
func (s *UserService) Get(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// Invite creates a user row in the invited state and emails a one-time
// accept link.
func (s *UserService) Invite(inviterName, inviteeEmail, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	existing, _ := s.userRepo.GetByEmail(inviteeEmail)
	if existing != nil {
		return nil, repository.ErrUserExists
	}

	now := time.Now()
	user := &models.User{
		Email:     inviteeEmail,
		Role:      role,
		IsActive:  false,
		InvitedAt: &now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.authSvc.GenerateInviteToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	if err := s.emailSvc.SendInviteEmail(user.Email, inviterName, token); err != nil {
		// The invite row exists; the admin can resend later.
		slog.Error("Failed to send invite email", "email", user.Email, "error", err)
	}

	return user, nil
}

// UpdateRole changes a member's role. Admins cannot demote themselves.
// Transient user-store failures are retried once after a fixed delay.
func (s *UserService) UpdateRole(actorID, targetID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if actorID == targetID && role != models.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.withRetry(func() error {
		return s.userRepo.UpdateRole(targetID, role)
	}); err != nil {
		return nil, err
	}

	// Active sessions carry the old role claim; drop them so the change
	// takes effect on next login.
	if err := s.sessionRepo.DeleteAllUserSessions(targetID); err != nil {
		slog.Error("Failed to invalidate sessions after role change", "user_id", targetID, "error", err)
	}

	return s.userRepo.GetByID(targetID)
}

// Delete removes a member from the workspace. Admins cannot delete their
// own account.
func (s *UserService) Delete(actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfDeletion
	}

	return s.withRetry(func() error {
		return s.userRepo.Delete(targetID)
	})
}

// UpdateProfile updates a user's name fields and returns the fresh row
func (s *UserService) UpdateProfile(userID, firstName, lastName string) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(userID, firstName, lastName); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// withRetry runs op, retrying on ErrUserSyncPending up to the configured
// attempt budget with a fixed delay between tries.
func (s *UserService) withRetry(op func() error) error {
	attempts := s.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = op()
		if err == nil || !errors.Is(err, repository.ErrUserSyncPending) {
			return err
		}
		if i < attempts-1 {
			slog.Warn("User record busy, retrying", "attempt", i+1, "delay", s.retry.Delay)
			time.Sleep(s.retry.Delay)
		}
	}
	return err
}
