package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/service"
)

type AuthMiddleware struct {
	s     service.AuthService
	audit service.AuditService
	cfg   config.Config
}

func NewAuthMiddleware(cfg config.Config, auth service.AuthService, audit service.AuditService) *AuthMiddleware {
	return &AuthMiddleware{s: auth, audit: audit, cfg: cfg}
}

// RequireAuth validates the bearer token and stashes the caller identity
// in locals. Every authenticated request leaves an audit trail entry.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		claims, err := m.s.Verify(c.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("username", claims.Subject)
		c.Locals("role", claims.Role)
		c.Locals("permissions", claims.Permissions)

		m.audit.Log(c.Context(), &models.AuditEntry{
			Username:  claims.Subject,
			Action:    "api_call",
			Details:   fmt.Sprintf("%s %s", c.Method(), c.Path()),
			IPAddress: c.IP(),
			Endpoint:  c.Path(),
			Method:    c.Method(),
		})

		return c.Next()
	}
}

// RequirePermission gates a route on a single permission. Must run after
// RequireAuth.
func (m *AuthMiddleware) RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, _ := c.Locals("username").(string)
		if username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		allowed, err := m.s.CheckPermission(c.Context(), username, permission)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": fmt.Sprintf("Permission required: %s", permission),
			})
		}
		return c.Next()
	}
}
