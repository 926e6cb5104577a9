package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/auth"
	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/validation"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// AuthResult is returned by successful login and registration.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	revoked    auth.RevocationStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Revocations       auth.RevocationStore
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	revoked := deps.Revocations
	if revoked == nil {
		revoked = auth.NewMemoryRevocationStore()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		revoked:    revoked,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.PasswordResetTTL(),
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a regular account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validationError(validation.ValidateRegistration(validation.UserInput{
		Name: name, Email: email, Password: password,
	})); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewEmailAlreadyExists(email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		LastLogin:    &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewEmailAlreadyExists(email)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account inactive")
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// RequestPasswordReset stores a reset token for email. Unknown emails
// yield (nil, nil) so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordReset, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset for unknown email")
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}

	token := &domain.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("password reset requested", zap.Int64("user_id", user.ID))
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if err := validationError(validation.ValidatePassword(newPassword)); err != nil {
		return err
	}

	invalid := apperrors.NewValidationError("invalid or expired token", map[string]any{"token": "invalid or expired"})
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return notFound(err, invalid)
	}
	if !token.Usable(s.now()) {
		return invalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return notFound(err, invalid)
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return err
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

// ChangePassword verifies the current password before storing the new one.
// A wrong current password is a validation failure, not a 401, so the
// caller keeps their session.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := validationError(validation.ValidatePassword(newPassword)); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, apperrors.NewUserNotFound(userID))
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", map[string]any{"currentPassword": "incorrect"})
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revocations exposes the revocation store for middleware usage.
func (s *AuthService) Revocations() auth.RevocationStore {
	return s.revoked
}
