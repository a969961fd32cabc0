package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
)

type MediaHandler struct {
	s     service.MediaService
	audit service.AuditService
}

func NewMediaHandler(media service.MediaService, audit service.AuditService) *MediaHandler {
	return &MediaHandler{s: media, audit: audit}
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (h *MediaHandler) Library(c *fiber.Ctx) error {
	items, err := h.s.List(c.Context(), c.Query("media_type"), splitTags(c.Query("tags")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"media": items, "count": len(items)})
}

func (h *MediaHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Search query is required",
		})
	}

	items, err := h.s.Search(c.Context(), query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"media": items, "count": len(items)})
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded",
		})
	}

	tags := splitTags(c.FormValue("tags"))
	description := c.FormValue("description")

	var added []*models.MediaItem
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("cannot read %s", fh.Filename),
			})
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("cannot read %s", fh.Filename),
			})
		}

		item, err := h.s.Add(c.Context(), content, fh.Filename, tags, description)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		added = append(added, item)
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "media_uploaded",
		Details:   fmt.Sprintf("uploaded %d media files", len(added)),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Uploaded %d files", len(added)),
		"media":   added,
	})
}

func (h *MediaHandler) Use(c *fiber.Ctx) error {
	if err := h.s.IncrementUsage(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Media not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(fiber.Map{"message": "Media usage recorded"})
}

func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.s.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Media not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "media_deleted",
		Details:   fmt.Sprintf("deleted media %s", id),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "Media deleted"})
}

func (h *MediaHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.s.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(stats)
}
