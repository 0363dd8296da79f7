package ws

import "encoding/json"

// frame is the wire format delivered to clients.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// envelope is the cross-node relay format carried over redis pub/sub.
// Channel is empty for a broadcast to every connection. Origin identifies
// the publishing hub so it can drop its own relayed envelopes.
type envelope struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Channel naming.
const (
	RoomAdmin    = "admin-room"
	RoomEmployer = "employer-room"
)

func ChannelForUser(userID string) string {
	return "user:" + userID
}

// RoomForRole maps an elevated role to its shared channel. Ordinary users
// get no role room.
func RoomForRole(role string) string {
	switch role {
	case "admin":
		return RoomAdmin
	case "employer":
		return RoomEmployer
	default:
		return ""
	}
}
