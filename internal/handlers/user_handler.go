package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/service"
)

type UserHandler struct {
	users *service.UserService
	log   *zap.SugaredLogger
}

func NewUserHandler(users *service.UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var body struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	u, token, err := h.users.Signup(c.Context(), body.FullName, body.Email, body.Password, body.Bio)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true, "user": u, "token": token, "message": "Account created successfully",
	})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	u, token, err := h.users.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u, "token": token, "message": "Login successful"})
}

// Check returns the authenticated caller's profile.
func (h *UserHandler) Check(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	u, err := h.users.Get(c.Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	var body struct {
		FullName   string `json:"fullName"`
		Bio        string `json:"bio"`
		ProfilePic string `json:"profilePic"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	u, err := h.users.UpdateProfile(c.Context(), userID, body.FullName, body.Bio, body.ProfilePic)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": u, "message": "Profile updated successfully"})
}

func (h *UserHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrMissingDetails), errors.Is(err, apperr.ErrAccountExists), errors.Is(err, apperr.ErrInvalidImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		h.log.Errorw("user handler", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "request failed"})
	}
}
