package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
)

type TemplateHandler struct {
	s service.TemplateService
}

func NewTemplateHandler(templates service.TemplateService) *TemplateHandler {
	return &TemplateHandler{s: templates}
}

func (h *TemplateHandler) List(c *fiber.Ctx) error {
	if view := c.Query("view"); view != "" {
		limit := queryLimit(c, 10)
		var (
			templates []*models.Template
			err       error
		)
		switch view {
		case "popular":
			templates, err = h.s.Popular(c.Context(), limit)
		case "recent":
			templates, err = h.s.Recent(c.Context(), limit)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown view",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
		return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
	}

	templates, err := h.s.List(c.Context(), splitTags(c.Query("tags")), c.Query("created_by"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
}

func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name            string   `json:"name"`
		Content         string   `json:"content"`
		Models          []string `json:"models"`
		Tags            []string `json:"tags"`
		MediaIDs        []string `json:"media_ids"`
		SchedulePattern string   `json:"schedule_pattern"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and content are required",
		})
	}

	template, err := h.s.Create(c.Context(), &models.Template{
		Name:            req.Name,
		Content:         req.Content,
		Models:          req.Models,
		Tags:            req.Tags,
		MediaIDs:        req.MediaIDs,
		SchedulePattern: req.SchedulePattern,
		CreatedBy:       GetUsername(c),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Template created",
		"template": template,
	})
}

func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	template, err := h.s.Get(c.Context(), c.Params("id"))
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(template)
}

func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	template, err := h.s.Update(c.Context(), c.Params("id"), fields)
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Template updated", "template": template})
}

func (h *TemplateHandler) Delete(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), c.Params("id")); err != nil {
		return templateError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Template deleted"})
}

func (h *TemplateHandler) Use(c *fiber.Ctx) error {
	template, err := h.s.Use(c.Context(), c.Params("id"))
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Template usage recorded", "template": template})
}

func (h *TemplateHandler) Duplicate(c *fiber.Ctx) error {
	template, err := h.s.Duplicate(c.Context(), c.Params("id"), GetUsername(c))
	if err != nil {
		return templateError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Template duplicated",
		"template": template,
	})
}

func (h *TemplateHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.s.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(stats)
}

func templateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrTemplateNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "something went wrong",
	})
}
