// middleware/admin_context.go
package middleware

import (
	"strings"

	"duel-bot/logger"

	"github.com/gofiber/fiber/v2"
)

const AdminIDLocal = "admin_id"

// AdminContextMiddleware records who is acting on the admin API. Callers identify
// themselves with X-Admin-ID; anonymous calls are attributed to "admin".
func AdminContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID := strings.TrimSpace(c.Get("X-Admin-ID"))
		if adminID == "" {
			adminID = "admin"
		}
		c.Locals(AdminIDLocal, adminID)

		logger.Info("👤 [ADMIN_CTX] admin request", "admin_id", adminID, "method", c.Method(), "path", c.Path())
		return c.Next()
	}
}

// AdminID returns the id stored by AdminContextMiddleware.
func AdminID(c *fiber.Ctx) string {
	if id, ok := c.Locals(AdminIDLocal).(string); ok {
		return id
	}
	return "admin"
}
