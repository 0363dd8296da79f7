package ws

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/hireloop-backend/internal/auth"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
)

const handshakeTimeout = 5 * time.Second

// Upgrade gates the ws route on a websocket upgrade request and stashes
// the Authorization header, which is not reachable once the connection is
// hijacked.
func Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("authorization", c.Get("Authorization"))
	return c.Next()
}

// Handler authenticates the handshake and attaches the connection to its
// channels. The credential may arrive as a `token` query param or a bearer
// Authorization header; no credential, invalid credential, unknown user or
// deactivated user all close the socket before any channel join.
func Handler(hub *Hub, validator *auth.Validator, users repository.UserRepo, log *zap.SugaredLogger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			if hdr, _ := conn.Locals("authorization").(string); hdr != "" {
				parts := strings.SplitN(hdr, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					token = parts[1]
				}
			}
		}
		if token == "" {
			_ = conn.Close()
			return
		}

		sub, err := validator.Validate(token)
		if err != nil {
			log.Debugw("ws handshake rejected", "err", err)
			_ = conn.Close()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		user, err := users.FindByID(ctx, sub)
		cancel()
		if err != nil || !user.IsActive {
			_ = conn.Close()
			return
		}

		channels := []string{ChannelForUser(user.ID)}
		if room := RoomForRole(user.Role); room != "" {
			channels = append(channels, room)
		}

		client := NewClient(conn, user.ID, channels, hub)
		hub.Register(client)
		log.Infow("ws connected", "user_id", user.ID, "role", user.Role)

		go client.writePump()
		client.readPump()

		log.Infow("ws disconnected", "user_id", user.ID)
	})
}
