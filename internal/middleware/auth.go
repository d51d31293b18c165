package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/boutique/internal/config"
	"github.com/example/boutique/internal/coordinator"
	"github.com/example/boutique/internal/utils"
)

const sessionContextKey = "currentSession"

// AuthMiddleware validates bearer tokens issued by the identity provider
// and loads the resulting Session into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		subject, admin, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(sessionContextKey, coordinator.Session{Subject: subject, Admin: admin})
		return c.Next()
	}
}

// GetSession extracts the caller's session from context. Requests that did
// not pass AuthMiddleware read as an anonymous, non-admin session.
func GetSession(c *fiber.Ctx) coordinator.Session {
	if s, ok := c.Locals(sessionContextKey).(coordinator.Session); ok {
		return s
	}
	return coordinator.Session{}
}
