package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/auth"
)

// RequestLogger logs every request with method, path, status and duration.
func RequestLogger(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Infow("request",
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

// BearerAuth rejects requests without a valid bearer token and stores the
// token subject in locals for handlers that want it.
func BearerAuth(v *auth.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		const pref = "Bearer "
		if !strings.HasPrefix(h, pref) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "missing bearer token",
			})
		}
		sub, err := v.Validate(strings.TrimPrefix(h, pref))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid bearer token",
			})
		}
		c.Locals("user_id", sub)
		return c.Next()
	}
}
