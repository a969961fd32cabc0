package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/service"
)

type AuditHandler struct {
	s service.AuditService
}

func NewAuditHandler(audit service.AuditService) *AuditHandler {
	return &AuditHandler{s: audit}
}

func (h *AuditHandler) Logs(c *fiber.Ctx) error {
	limit := queryLimit(c, 100)

	if action := c.Query("action"); action != "" {
		entries, err := h.s.ByAction(c.Context(), action, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
		return c.JSON(fiber.Map{"logs": entries, "count": len(entries)})
	}

	entries, err := h.s.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"logs": entries, "count": len(entries)})
}

func (h *AuditHandler) UserLogs(c *fiber.Ctx) error {
	username := c.Params("username")
	limit := queryLimit(c, 100)

	entries, err := h.s.ByUsername(c.Context(), username, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"logs": entries, "count": len(entries), "username": username})
}
