// middleware/service_token.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"duel-bot/logger"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware validates the Bearer token sent by trusted callers of the admin API.
// With no expected token configured every request is refused.
func ServiceTokenMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		logger.Warn("⚠️ SERVICE_TOKEN is not set, admin routes are disabled")
	}

	return func(c *fiber.Ctx) error {
		if expectedToken == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin routes are disabled",
			})
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.Warn("🚫 [SERVICE_AUTH] missing Authorization header", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service token missing",
			})
		}

		// Parse "Bearer <token>", raw tokens are accepted too
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			logger.Warn("❌ [SERVICE_AUTH] invalid token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}

		return c.Next()
	}
}
