package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rfp-hub/internal/auth"
	"rfp-hub/internal/models"
	"rfp-hub/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInviteNotPending   = errors.New("invitation already accepted")
	ErrInvalidTokenType   = errors.New("wrong token type")
)

// TokenPair bundles the tokens issued by a login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	authSvc     *auth.Service
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	authSvc *auth.Service,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		authSvc:     authSvc,
	}
}

// Login authenticates a user and issues an access/refresh token pair backed
// by session rows.
func (s *AuthService) Login(email, password, ipAddress, userAgent string) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	pair, err := s.issueTokens(user, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to record login: %w", err)
	}

	return pair, user, nil
}

// issueTokens creates an access/refresh pair sharing one session ID and
// records both as session rows.
func (s *AuthService) issueTokens(user *models.User, ipAddress, userAgent string) (*TokenPair, error) {
	sessionID := uuid.NewString()

	accessToken, accessJTI, err := s.authSvc.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJTI, err := s.authSvc.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	accessClaims, err := s.authSvc.ValidateToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token expiry: %w", err)
	}
	refreshClaims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token expiry: %w", err)
	}

	now := time.Now()
	sessions := []*models.Session{
		{
			UserID:         user.ID,
			SessionID:      sessionID,
			JTI:            accessJTI,
			TokenType:      auth.TokenTypeAccess,
			ExpiresAt:      accessClaims.ExpiresAt.Time,
			LastActivityAt: now,
			IPAddress:      ipAddress,
			UserAgent:      userAgent,
		},
		{
			UserID:         user.ID,
			SessionID:      sessionID,
			JTI:            refreshJTI,
			TokenType:      auth.TokenTypeRefresh,
			ExpiresAt:      refreshClaims.ExpiresAt.Time,
			LastActivityAt: now,
			IPAddress:      ipAddress,
			UserAgent:      userAgent,
		},
	}
	for _, session := range sessions {
		if err := s.sessionRepo.Create(session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout invalidates both tokens of the session the given token belongs to.
// Works on expired tokens as well.
func (s *AuthService) Logout(tokenString string) error {
	jti, err := s.authSvc.ExtractJTI(tokenString)
	if err != nil {
		return fmt.Errorf("failed to extract token ID: %w", err)
	}

	session, err := s.sessionRepo.GetByJTI(jti)
	if err != nil {
		// Expired rows may already be gone; deleting by JTI is still safe.
		return s.sessionRepo.DeleteByJTI(jti)
	}

	return s.sessionRepo.DeleteBySessionID(session.SessionID)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The old
// session is invalidated.
func (s *AuthService) Refresh(refreshToken, ipAddress, userAgent string) (*TokenPair, *models.User, error) {
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, nil, ErrInvalidTokenType
	}

	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	if err := s.sessionRepo.DeleteBySessionID(session.SessionID); err != nil {
		return nil, nil, fmt.Errorf("failed to invalidate old session: %w", err)
	}

	pair, err := s.issueTokens(user, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// AcceptInvite completes an invitation: validates the invite token, sets the
// password and name, and activates the account.
func (s *AuthService) AcceptInvite(inviteToken, password, firstName, lastName string) (*models.User, error) {
	claims, err := s.authSvc.ValidateToken(inviteToken)
	if err != nil {
		return nil, fmt.Errorf("invalid invite token: %w", err)
	}
	if claims.TokenType != auth.TokenTypeInvite {
		return nil, ErrInvalidTokenType
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.JoinedAt != nil {
		return nil, ErrInviteNotPending
	}

	passwordHash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.Activate(user.ID, passwordHash, firstName, lastName); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(user.ID)
}

// ValidateAccessToken checks a token's signature, type and session row, and
// returns the live user record it belongs to.
func (s *AuthService) ValidateAccessToken(tokenString string) (*models.User, error) {
	claims, err := s.authSvc.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}

	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Touch the session so idle cleanup sees recent use. Failure is not fatal.
	_ = s.sessionRepo.UpdateLastActivity(session.ID)

	return user, nil
}
