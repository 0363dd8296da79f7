package models

import "time"

// DeletedMessageContent replaces the content of a soft-deleted message.
const DeletedMessageContent = "This message was deleted"

// EditWindow is how long after creation a message may still be edited.
const EditWindow = 15 * time.Minute

type Attachment struct {
	URL      string `bson:"url" json:"url"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	MimeType string `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
	Size     int64  `bson:"size,omitempty" json:"size,omitempty"`
}

type Message struct {
	ID             string       `bson:"_id,omitempty" json:"id"`
	ConversationID string       `bson:"conversation_id" json:"conversation_id"`
	SenderID       string       `bson:"sender_id" json:"sender_id"`
	Content        string       `bson:"content" json:"content"`
	Attachments    []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ReadBy         []string     `bson:"read_by" json:"read_by"`
	IsEdited       bool         `bson:"is_edited" json:"is_edited"`
	IsDeleted      bool         `bson:"is_deleted" json:"is_deleted"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updated_at"`
}

func (m *Message) ReadByUser(userID string) bool {
	for _, u := range m.ReadBy {
		if u == userID {
			return true
		}
	}
	return false
}

// MessageSummary is the sender-safe shape pushed over the realtime channel.
type MessageSummary struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
