package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
)

type CaptionHandler struct {
	s     service.CaptionService
	audit service.AuditService
}

func NewCaptionHandler(captions service.CaptionService, audit service.AuditService) *CaptionHandler {
	return &CaptionHandler{s: captions, audit: audit}
}

func readUpload(c *fiber.Ctx, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return content, fh.Filename, nil
}

func (h *CaptionHandler) List(c *fiber.Ctx) error {
	if query := c.Query("search"); query != "" {
		captions, err := h.s.Search(c.Context(), query)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
		return c.JSON(fiber.Map{"captions": captions, "count": len(captions)})
	}

	var captions []*models.Caption
	var err error
	if category := c.Query("category"); category != "" {
		captions, err = h.s.ByCategory(c.Context(), category)
	} else {
		captions, err = h.s.All(c.Context())
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"captions": captions, "count": len(captions)})
}

func (h *CaptionHandler) Upload(c *fiber.Ctx) error {
	content, filename, err := readUpload(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	result, err := h.s.Ingest(c.Context(), content, filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "captions_uploaded",
		Details:   fmt.Sprintf("ingested %d captions from %s", len(result.Captions), filename),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(result)
}

func (h *CaptionHandler) ReplaceAll(c *fiber.Ctx) error {
	content, filename, err := readUpload(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	result, err := h.s.ReplaceAll(c.Context(), content, filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "captions_replaced",
		Details:   fmt.Sprintf("replaced library with %d captions from %s", len(result.Captions), filename),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(result)
}

func (h *CaptionHandler) AddSingle(c *fiber.Ctx) error {
	var req struct {
		Text     string `json:"text"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	caption, err := h.s.AddSingle(c.Context(), req.Text, req.Category, GetUsername(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Caption added",
		"caption": caption,
	})
}

func (h *CaptionHandler) Update(c *fiber.Ctx) error {
	var req struct {
		Text     string `json:"text"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.s.Update(c.Context(), c.Params("id"), req.Text, req.Category); err != nil {
		if errors.Is(err, service.ErrCaptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Caption not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"message": "Caption updated"})
}

func (h *CaptionHandler) Delete(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrCaptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Caption not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"message": "Caption deleted"})
}

func (h *CaptionHandler) Use(c *fiber.Ctx) error {
	if err := h.s.IncrementUsage(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrCaptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Caption not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"message": "Caption usage recorded"})
}

func (h *CaptionHandler) Popular(c *fiber.Ctx) error {
	captions, err := h.s.Popular(c.Context(), queryLimit(c, 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"captions": captions})
}

func (h *CaptionHandler) Recent(c *fiber.Ctx) error {
	captions, err := h.s.Recent(c.Context(), queryLimit(c, 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"captions": captions})
}

func (h *CaptionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.s.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(stats)
}

func (h *CaptionHandler) Clear(c *fiber.Ctx) error {
	if err := h.s.Clear(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "captions_cleared",
		Details:   "caption library cleared",
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "All captions cleared"})
}
