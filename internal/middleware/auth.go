package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/quickchat/internal/auth"
)

// JWTAuth validates the bearer token and stores the caller's user id in the
// request locals under "user_id".
func JWTAuth(m *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "missing authorization"})
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "invalid authorization"})
		}
		claims, err := m.Verify(parts[1])
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "invalid token"})
		}
		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
