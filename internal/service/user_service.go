package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/auth"
	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/validation"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// UserService manages accounts on behalf of administrators and of the
// users themselves.
type UserService struct {
	users      repository.UserRepository
	items      repository.ItemRepository
	messages   repository.MessageRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies groups the repositories UserService reads. ItemRepo and
// MessageRepo guard deletion of accounts that other records still point at.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	ItemRepo    repository.ItemRepository
	MessageRepo repository.MessageRepository
	Logger      *zap.Logger
}

// CreateUserInput is the admin payload for a new account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Status   domain.UserStatus
}

// UpdateUserInput carries optional account changes. Nil fields are kept.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		items:      deps.ItemRepo,
		messages:   deps.MessageRepo,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get fetches one account.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.NewUserNotFound(id))
	}
	return user, nil
}

// Create adds an account. Role defaults to User and status to active.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if in.Status == "" {
		in.Status = domain.UserStatusActive
	}
	if err := validationError(validation.ValidateRegistration(validation.UserInput{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role, Status: in.Status,
	})); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		Status:       in.Status,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewEmailAlreadyExists(user.Email)
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update applies an admin edit.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, in)
}

// Delete removes an account. Administrators can never be deleted, and users
// still referenced by items or contact messages are refused with a conflict;
// the collection is left untouched in both cases.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return apperrors.NewAdminDeleteForbidden()
	}
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return userInUse(id)
		}
		return notFound(err, apperrors.NewUserNotFound(id))
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// ensureUnreferenced refuses deletion while items or contact messages still
// name the user as reporter, claimer, sender or recipient.
func (s *UserService) ensureUnreferenced(ctx context.Context, id int64) error {
	if s.items != nil {
		items, err := s.items.List(ctx, repository.ItemFilter{})
		if err != nil {
			return apperrors.MapError(err)
		}
		for _, item := range items {
			if item.ReportedByUserID == id || (item.ClaimedByUserID != nil && *item.ClaimedByUserID == id) {
				return userInUse(id)
			}
		}
	}
	if s.messages != nil {
		for _, filter := range []repository.MessageFilter{{SenderID: &id}, {RecipientID: &id}} {
			msgs, err := s.messages.List(ctx, filter)
			if err != nil {
				return apperrors.MapError(err)
			}
			if len(msgs) > 0 {
				return userInUse(id)
			}
		}
	}
	return nil
}

func userInUse(id int64) error {
	return apperrors.NewConflict("user still has items or messages", map[string]any{"user_id": id})
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.Get(ctx, userID)
}

// UpdateProfile lets users edit their name and email. Role and status are
// reserved for administrators.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, email *string) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, UpdateUserInput{Name: name, Email: email})
}

func (s *UserService) apply(ctx context.Context, user *domain.User, in UpdateUserInput) (*domain.User, error) {
	check := validation.UserInput{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationError(validation.Errors{{Field: "name", Message: "name is required"}})
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		check.Email = strings.TrimSpace(*in.Email)
		if check.Email == "" {
			return nil, validationError(validation.Errors{{Field: "email", Message: "email is required"}})
		}
		user.Email = check.Email
	}
	if in.Password != nil {
		check.Password = *in.Password
	}
	if in.Role != nil {
		check.Role = *in.Role
		user.Role = *in.Role
	}
	if in.Status != nil {
		check.Status = *in.Status
		user.Status = *in.Status
	}
	if err := validationError(validation.ValidateUser(check)); err != nil {
		return nil, err
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewEmailAlreadyExists(user.Email)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewUserNotFound(user.ID)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
