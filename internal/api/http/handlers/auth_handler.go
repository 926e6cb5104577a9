package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/api/dto"
	"github.com/spec-kit/lostfound-service/internal/service"
)

// AuthHandler exposes login, registration and password endpoints.
type AuthHandler struct {
	auth             *service.AuthService
	exposeResetToken bool
}

// NewAuthHandler constructs handler. With exposeResetToken the reset token
// is returned by forgot-password; there is no mail delivery otherwise.
func NewAuthHandler(authService *service.AuthService, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{auth: authService, exposeResetToken: exposeResetToken}
}

func authResponse(res *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      dto.NewUserResponse(res.User),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(res)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(res)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), principal.Claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response does
// not reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	data := fiber.Map{"message": "if the account exists, reset instructions have been sent"}
	if h.exposeResetToken && token != nil {
		data["resetToken"] = token.Token
		data["expiresAt"] = token.ExpiresAt
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": data})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
