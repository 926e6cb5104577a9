package dto

import (
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ProfileUpdateRequest is the self-service profile edit.
type ProfileUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// CreateUserRequest is the admin payload for a new account.
type CreateUserRequest struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

// UpdateUserRequest is the admin edit payload. Absent fields are kept.
type UpdateUserRequest struct {
	Name     *string            `json:"name"`
	Email    *string            `json:"email"`
	Password *string            `json:"password"`
	Role     *domain.Role       `json:"role"`
	Status   *domain.UserStatus `json:"status"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	LastLogin *time.Time        `json:"lastLogin,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewUserResponse converts a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserList converts a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
