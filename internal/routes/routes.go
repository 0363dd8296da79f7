package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/fathima-sithara/hireloop-backend/internal/auth"
	"github.com/fathima-sithara/hireloop-backend/internal/handlers"
	"github.com/fathima-sithara/hireloop-backend/internal/metrics"
	"github.com/fathima-sithara/hireloop-backend/internal/middleware"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
	"github.com/fathima-sithara/hireloop-backend/internal/service"
	"github.com/fathima-sithara/hireloop-backend/internal/ws"
)

func Register(app *fiber.App, msgSvc *service.Messaging, notifSvc *service.Notification, hub *ws.Hub, validator *auth.Validator, users repository.UserRepo, log *zap.SugaredLogger) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Get("/ws", ws.Upgrade, ws.Handler(hub, validator, users, log))
	app.Get("/presence/:user_id", func(c *fiber.Ctx) error {
		uid := c.Params("user_id")
		return c.JSON(fiber.Map{"user_id": uid, "online": hub.CheckPresence(uid)})
	})

	api := app.Group("/api/v1", middleware.JWTAuth(validator))

	mh := handlers.NewMessageHandler(msgSvc)
	api.Post("/conversations", mh.CreateConversation)
	api.Get("/conversations", mh.ListConversations)
	api.Delete("/conversations/:id", mh.DeleteConversation)
	api.Post("/conversations/:id/messages", mh.SendMessage)
	api.Get("/conversations/:id/messages", mh.GetMessages)
	api.Put("/messages/:id", mh.EditMessage)
	api.Delete("/messages/:id", mh.DeleteMessage)
	api.Post("/messages/read", mh.MarkManyAsRead)
	api.Post("/messages/:id/read", mh.MarkAsRead)
	api.Get("/messages/search", mh.SearchMessages)
	api.Get("/messages/unread-count", mh.UnreadTotal)

	nh := handlers.NewNotificationHandler(notifSvc)
	api.Get("/notifications", nh.List)
	api.Put("/notifications/read-all", nh.MarkAllRead)
	api.Put("/notifications/read", nh.MarkManyRead)
	api.Put("/notifications/:id/read", nh.MarkRead)
	api.Delete("/notifications/all", nh.DeleteAll)
	api.Delete("/notifications/:id", nh.Delete)
	api.Delete("/notifications", nh.DeleteMany)
}
