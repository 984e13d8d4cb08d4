package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/quickchat/internal/presence"
)

type StatusHandler struct {
	mirror *presence.RedisMirror
}

func NewStatusHandler(mirror *presence.RedisMirror) *StatusHandler {
	return &StatusHandler{mirror: mirror}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "message": "Server is live"})
}

// LastSeen reports the mirrored presence record for a user. 503 when no
// mirror is configured.
func (h *StatusHandler) LastSeen(c *fiber.Ctx) error {
	if h.mirror == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "presence mirror not configured"})
	}
	st, err := h.mirror.LastSeen(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "no presence record"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "presence lookup failed"})
	}
	return c.JSON(fiber.Map{"success": true, "presence": st})
}
