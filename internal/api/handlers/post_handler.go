package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/transfer"
)

type PostHandler struct {
	queue       service.QueueService
	poster      service.PosterService
	suggestions service.SuggestionService
	audit       service.AuditService
}

func NewPostHandler(queue service.QueueService, poster service.PosterService, suggestions service.SuggestionService, audit service.AuditService) *PostHandler {
	return &PostHandler{queue: queue, poster: poster, suggestions: suggestions, audit: audit}
}

// SchedulePost accepts the multipart post form: content, models (JSON
// array), optional schedule_time, optional library_media_ids (JSON
// array), and media_files uploads.
func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	pc := &transfer.PostCreation{
		Content:         c.FormValue("content"),
		Models:          c.FormValue("models"),
		ScheduleTime:    c.FormValue("schedule_time"),
		LibraryMediaIDs: c.FormValue("library_media_ids"),
	}

	var uploads []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		uploads = form.File["media_files"]
	}

	post, message, err := h.queue.Schedule(c.Context(), pc, uploads)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	action := "post_published"
	if post.Status == models.PostStatusScheduled {
		action = "post_scheduled"
	}
	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    action,
		Details:   fmt.Sprintf("post %s: %s", post.ID, message),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})

	return c.JSON(fiber.Map{
		"post_id": post.ID,
		"status":  post.Status,
		"message": message,
	})
}

func (h *PostHandler) Queue(c *fiber.Ctx) error {
	pending, history := h.queue.Queue(c.Context())
	if pending == nil {
		pending = []*models.Post{}
	}
	if history == nil {
		history = []*models.Post{}
	}
	return c.JSON(fiber.Map{"pending": pending, "history": history})
}

func (h *PostHandler) History(c *fiber.Ctx) error {
	history := h.queue.History(c.Context())
	if history == nil {
		history = []*models.Post{}
	}
	return c.JSON(fiber.Map{"history": history, "count": len(history)})
}

func (h *PostHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	post, err := h.queue.Cancel(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found in queue",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "post_cancelled",
		Details:   fmt.Sprintf("cancelled post %s", id),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "Post cancelled", "post": post})
}

func (h *PostHandler) Edit(c *fiber.Ctx) error {
	id := c.Params("id")

	var req transfer.PostEdit
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.queue.Edit(c.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found in queue",
			})
		case errors.Is(err, service.ErrInvalidSchedule):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}
	return c.JSON(fiber.Map{"message": "Post updated", "post": post})
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.queue.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found in queue",
		})
	}

	h.audit.Log(c.Context(), &models.AuditEntry{
		Username:  GetUsername(c),
		Action:    "post_deleted",
		Details:   fmt.Sprintf("deleted post %s", id),
		IPAddress: c.IP(),
		Endpoint:  c.Path(),
		Method:    c.Method(),
	})
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

func (h *PostHandler) Suggestions(c *fiber.Ctx) error {
	count := queryLimit(c, 5)
	return c.JSON(fiber.Map{"suggestions": h.suggestions.OptimalTimes(count)})
}

func (h *PostHandler) Patterns(c *fiber.Ctx) error {
	return c.JSON(h.suggestions.Patterns())
}

// Status probes the external poster tool without posting anything.
func (h *PostHandler) Status(c *fiber.Ctx) error {
	result := h.poster.TestConnection(c.Context())
	pending, history := h.queue.Queue(c.Context())
	return c.JSON(fiber.Map{
		"poster": result,
		"queue": fiber.Map{
			"pending": len(pending),
			"history": len(history),
		},
	})
}
