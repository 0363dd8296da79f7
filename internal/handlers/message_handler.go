package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/hireloop-backend/internal/apperr"
	"github.com/fathima-sithara/hireloop-backend/internal/models"
	"github.com/fathima-sithara/hireloop-backend/internal/service"
)

type MessageHandler struct {
	svc *service.Messaging
}

func NewMessageHandler(svc *service.Messaging) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func respondErr(c *fiber.Ctx, err error) error {
	return c.Status(apperr.StatusOf(err)).JSON(fiber.Map{"error": err.Error()})
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}

// CreateConversation starts (or returns) the direct conversation with
// another user.
func (h *MessageHandler) CreateConversation(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	conv, err := h.svc.CreateOrGetConversation(c.Context(), userID(c), req.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(conv)
}

func (h *MessageHandler) ListConversations(c *fiber.Ctx) error {
	convs, err := h.svc.ListConversations(c.Context(), userID(c))
	if err != nil {
		return respondErr(c, err)
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

func (h *MessageHandler) DeleteConversation(c *fiber.Ctx) error {
	if err := h.svc.DeleteConversation(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation deleted"})
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Content     string              `json:"content"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	msg, err := h.svc.SendMessage(c.Context(), userID(c), c.Params("id"), req.Content, req.Attachments)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	pageSize := int64(c.QueryInt("page_size", 50))
	msgs, err := h.svc.GetMessages(c.Context(), userID(c), c.Params("id"), page, pageSize)
	if err != nil {
		return respondErr(c, err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *MessageHandler) EditMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	msg, err := h.svc.EditMessage(c.Context(), userID(c), c.Params("id"), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(msg)
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.svc.DeleteMessage(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "message deleted"})
}

func (h *MessageHandler) MarkAsRead(c *fiber.Ctx) error {
	if err := h.svc.MarkAsRead(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "marked as read"})
}

func (h *MessageHandler) MarkManyAsRead(c *fiber.Ctx) error {
	var req struct {
		MessageIDs []string `json:"message_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := h.svc.MarkManyAsRead(c.Context(), userID(c), req.MessageIDs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "marked as read"})
}

func (h *MessageHandler) SearchMessages(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	pageSize := int64(c.QueryInt("page_size", 20))
	msgs, err := h.svc.SearchMessages(c.Context(), userID(c), c.Query("q"), page, pageSize)
	if err != nil {
		return respondErr(c, err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *MessageHandler) UnreadTotal(c *fiber.Ctx) error {
	total, err := h.svc.UnreadTotal(c.Context(), userID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": total})
}
