package service

// RealtimePublisher is the push boundary. Implementations must be
// non-blocking and best-effort: no subscriber, no hub, no problem — the
// durable stores stay the source of truth.
type RealtimePublisher interface {
	PublishToUser(userID, event string, payload any)
	PublishToRole(role, event string, payload any)
	PublishToAll(event string, payload any)
}

// Realtime event names.
const (
	EventNewMessage     = "new-message"
	EventMessageDeleted = "message-deleted"
	EventNotification   = "notification"
)
