package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/juampibolanio/trofi-chat-service/internal/apperr"
)

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

// fail maps the error kind to a status code. Storage causes stay in the
// logs, the client only sees the envelope message.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = fiber.StatusBadRequest
	case apperr.KindNotFound:
		status = fiber.StatusNotFound
	case apperr.KindAuthorization:
		status = fiber.StatusForbidden
	}
	if status == fiber.StatusInternalServerError {
		s.log.Errorw("request failed", "path", c.Path(), "err", err)
		return respond(c, status, "internal error", nil)
	}
	return respond(c, status, err.Error(), nil)
}

type startChatReq struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (s *Server) startChat(c *fiber.Ctx) error {
	var req startChatReq
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	chatID, err := s.svc.CreateChat(c.Context(), req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusCreated, "chat started", fiber.Map{"chatId": chatID})
}

func (s *Server) getUserChats(c *fiber.Ctx) error {
	chats, err := s.svc.GetUserChats(c.Context(), c.Params("uid"))
	if err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"chats": chats})
}

func (s *Server) getMessages(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 0))
	msgs, err := s.svc.GetMessages(c.Context(), c.Params("chatId"), limit)
	if err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"messages": msgs})
}

type sendMessageReq struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	msg, err := s.svc.SendMessage(c.Context(), c.Params("chatId"), req.SenderID, req.Content)
	if err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusCreated, "message sent", fiber.Map{"message": msg})
}

type userReq struct {
	UserID string `json:"userId"`
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	var req userReq
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if err := s.svc.DeleteMessage(c.Context(), c.Params("chatId"), c.Params("messageId"), req.UserID); err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "message deleted", nil)
}

func (s *Server) deleteChat(c *fiber.Ctx) error {
	if err := s.svc.DeleteChat(c.Context(), c.Params("chatId"), c.Params("uid")); err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "chat deleted", nil)
}

func (s *Server) markAsRead(c *fiber.Ctx) error {
	var req userReq
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request body", nil)
	}
	if err := s.svc.MarkAsRead(c.Context(), c.Params("chatId"), req.UserID); err != nil {
		return s.fail(c, err)
	}
	return respond(c, fiber.StatusOK, "messages marked as read", nil)
}
