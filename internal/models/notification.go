package models

import "time"

// Notification types. Closed vocabulary used for filtering and for routing
// to delivery channels (in-app, email, push) by the external workers.
const (
	NotificationTypeNewMessage        = "new_message"
	NotificationTypeApplicationStatus = "application_status"
	NotificationTypeJobAlert          = "job_alert"
	NotificationTypeProfileView       = "profile_view"
)

const (
	NotificationCategoryMessaging   = "messaging"
	NotificationCategoryApplication = "application"
	NotificationCategoryJobs        = "jobs"
	NotificationCategoryProfile     = "profile"
)

type Notification struct {
	ID            string         `bson:"_id,omitempty" json:"id"`
	RecipientID   string         `bson:"recipient_id" json:"recipient_id"`
	Type          string         `bson:"type" json:"type"`
	Category      string         `bson:"category" json:"category"`
	Title         string         `bson:"title" json:"title"`
	Message       string         `bson:"message" json:"message"`
	IsRead        bool           `bson:"is_read" json:"is_read"`
	ReadAt        *time.Time     `bson:"read_at,omitempty" json:"read_at,omitempty"`
	RelatedUserID string         `bson:"related_user_id,omitempty" json:"related_user_id,omitempty"`
	Metadata      map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
}

// NotificationFilter narrows a notification listing. Nil/empty fields match
// everything.
type NotificationFilter struct {
	IsRead   *bool
	Type     string
	Category string
}
