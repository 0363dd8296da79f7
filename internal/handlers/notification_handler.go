package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/hireloop-backend/internal/models"
	"github.com/fathima-sithara/hireloop-backend/internal/service"
)

type NotificationHandler struct {
	svc *service.Notification
}

func NewNotificationHandler(svc *service.Notification) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	pageSize := int64(c.QueryInt("page_size", 20))

	filter := models.NotificationFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
	}
	if v := c.Query("is_read"); v != "" {
		isRead := v == "true"
		filter.IsRead = &isRead
	}

	res, err := h.svc.List(c.Context(), userID(c), filter, page, pageSize)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(res)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.svc.MarkRead(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "marked as read"})
}

func (h *NotificationHandler) MarkManyRead(c *fiber.Ctx) error {
	var req struct {
		NotificationIDs []string `json:"notification_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	n, err := h.svc.MarkManyRead(c.Context(), userID(c), req.NotificationIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"modified": n})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.svc.MarkAllRead(c.Context(), userID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"modified": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "notification deleted"})
}

func (h *NotificationHandler) DeleteMany(c *fiber.Ctx) error {
	var req struct {
		NotificationIDs []string `json:"notification_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	n, err := h.svc.DeleteMany(c.Context(), userID(c), req.NotificationIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}

func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.svc.DeleteAll(c.Context(), userID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}
