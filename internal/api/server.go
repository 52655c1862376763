package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/auth"
	"github.com/juampibolanio/trofi-chat-service/internal/config"
	"github.com/juampibolanio/trofi-chat-service/internal/metrics"
	"github.com/juampibolanio/trofi-chat-service/internal/service"
)

type Server struct {
	svc *service.ChatService
	log *zap.SugaredLogger
}

// NewServer builds the fiber app with the chat routes mounted. Bearer
// verification is enabled only when a JWT secret is configured; the
// service re-checks participant membership either way.
func NewServer(cfg *config.Config, svc *service.ChatService, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	s := &Server{svc: svc, log: log}

	app.Use(recover.New())
	app.Use(RequestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	chat := app.Group("/chat")
	if cfg.App.JWTSecret != "" {
		chat.Use(BearerAuth(auth.NewValidator(cfg.App.JWTSecret)))
	}

	chat.Post("/start", s.startChat)
	chat.Get("/user/:uid", s.getUserChats)
	chat.Get("/:chatId/messages", s.getMessages)
	chat.Post("/:chatId/message", s.sendMessage)
	chat.Delete("/:chatId/message/:messageId", s.deleteMessage)
	chat.Delete("/:chatId/user/:uid", s.deleteChat)
	chat.Put("/:chatId/read", s.markAsRead)

	return app
}
