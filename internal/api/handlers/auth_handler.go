package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/transfer"
)

type AuthHandler struct {
	s     service.AuthService
	users service.UserService
	audit service.AuditService
}

func NewAuthHandler(auth service.AuthService, users service.UserService, audit service.AuditService) *AuthHandler {
	return &AuthHandler{s: auth, users: users, audit: audit}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.s.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit.Log(c.Context(), &models.AuditEntry{
				Username:  req.Username,
				Action:    "login_failed",
				Details:   "invalid credentials",
				IPAddress: c.IP(),
				Endpoint:  c.Path(),
				Method:    c.Method(),
			})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid username or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	token, err := h.s.IssueToken(c.Context(), user.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  user.Username,
		Action:    "login",
		Details:   "successful login",
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// Logout is bookkeeping only; tokens stay valid until expiry or until the
// user is deleted.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "logout",
		Details:   "user logged out",
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetInfo(c.Context(), GetUsername(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req transfer.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "New password cannot be empty",
		})
	}

	username := GetUsername(c)
	if err := h.s.ChangePassword(c.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Current password is incorrect",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  username,
		Action:    "password_change",
		Details:   "password changed",
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"users": users})
}
