package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/transfer"
)

type TeamHandler struct {
	users service.UserService
	audit service.AuditService
}

func NewTeamHandler(users service.UserService, audit service.AuditService) *TeamHandler {
	return &TeamHandler{users: users, audit: audit}
}

func (h *TeamHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *TeamHandler) AddUser(c *fiber.Ctx) error {
	var req transfer.AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	actor := GetUsername(c)
	user, err := h.users.Add(c.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Username already exists",
			})
		case errors.Is(err, service.ErrInvalidRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid role",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  actor,
		Action:    "user_added",
		Details:   fmt.Sprintf("added user %s with role %s", user.Username, user.Role),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User added successfully",
		"user":    user,
	})
}

func (h *TeamHandler) UpdateUser(c *fiber.Ctx) error {
	username := c.Params("username")

	var req transfer.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.users.Update(c.Context(), username, &req); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "user_updated",
		Details:   fmt.Sprintf("updated user %s", username),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

func (h *TeamHandler) DeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")
	actor := GetUsername(c)

	if err := h.users.Remove(c.Context(), actor, username); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		case errors.Is(err, service.ErrSelfDeletion):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot delete your own account",
			})
		case errors.Is(err, service.ErrOwnerDeletion):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Cannot delete an owner account",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  actor,
		Action:    "user_deleted",
		Details:   fmt.Sprintf("deleted user %s", username),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
