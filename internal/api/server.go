package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/fathima-sithara/quickchat/internal/auth"
	"github.com/fathima-sithara/quickchat/internal/handlers"
	"github.com/fathima-sithara/quickchat/internal/metrics"
	"github.com/fathima-sithara/quickchat/internal/middleware"
	"github.com/fathima-sithara/quickchat/internal/ws"
)

type Deps struct {
	Auth        *auth.Manager
	WS          *ws.Server
	Messages    *handlers.MessageHandler
	Users       *handlers.UserHandler
	Status      *handlers.StatusHandler
	Limiter     *middleware.IPRateLimiter
	BodyLimitMB int
}

// New wires the fiber app: REST routes, the websocket upgrade, and metrics.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: d.BodyLimitMB * 1024 * 1024,
	})
	app.Use(fiberlogger.New())
	if d.Limiter != nil {
		app.Use(d.Limiter.Handler())
	}

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/api/status", d.Status.Health)

	authed := middleware.JWTAuth(d.Auth)

	user := app.Group("/api/user")
	user.Post("/signup", d.Users.Signup)
	user.Post("/login", d.Users.Login)
	user.Get("/check", authed, d.Users.Check)
	user.Put("/update", authed, d.Users.UpdateProfile)
	user.Get("/:id/presence", authed, d.Status.LastSeen)

	msgs := app.Group("/api/messages", authed)
	msgs.Get("/users", d.Messages.GetSidebar)
	msgs.Get("/:id", d.Messages.GetConversation)
	msgs.Post("/send/:id", d.Messages.SendMessage)
	msgs.Put("/mark/:id", d.Messages.MarkSeen)

	app.Get("/api/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/ws", websocket.New(d.WS.HandleWS()))

	return app
}
