package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/service"
)

type MessageHandler struct {
	chat *service.ChatService
	log  *zap.SugaredLogger
}

func NewMessageHandler(chat *service.ChatService, log *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{chat: chat, log: log}
}

// GetSidebar returns every other user plus the caller's unseen counts.
func (h *MessageHandler) GetSidebar(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	users, counts, err := h.chat.SidebarFor(c.Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "users": users, "unseenMessages": counts})
}

// GetConversation returns the history with :id and marks it seen.
func (h *MessageHandler) GetConversation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	msgs, err := h.chat.ConversationWith(c.Context(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}

// SendMessage posts a message to :id and returns the canonical stored record.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	var body struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	m, err := h.chat.SendMessage(c.Context(), userID, c.Params("id"), body.Text, body.Image)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "newMessage": m})
}

// MarkSeen flips one message to seen.
func (h *MessageHandler) MarkSeen(c *fiber.Ctx) error {
	if err := h.chat.MarkMessageSeen(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *MessageHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrEmptyMessage), errors.Is(err, apperr.ErrInvalidImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		h.log.Errorw("message handler", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "delivery failed"})
	}
}
