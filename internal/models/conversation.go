package models

import (
	"sort"
	"time"
)

const ConversationTypeDirect = "direct"

// UnreadCounts maps a participant id to their unread message count.
// Missing keys read as zero.
type UnreadCounts map[string]int64

func (u UnreadCounts) Get(userID string) int64 {
	if u == nil {
		return 0
	}
	return u[userID]
}

type Conversation struct {
	ID            string       `bson:"_id,omitempty" json:"id"`
	Type          string       `bson:"type" json:"type"`
	Participants  []string     `bson:"participants" json:"participants"`
	LastMessageID string       `bson:"last_message_id,omitempty" json:"last_message_id,omitempty"`
	UnreadCounts  UnreadCounts `bson:"unread_counts" json:"unread_counts"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}

// DirectPair returns the two participant ids in canonical (sorted) order.
// Conversations are stored with sorted participants so the same pair always
// resolves to the same document regardless of argument order.
func DirectPair(a, b string) []string {
	p := []string{a, b}
	sort.Strings(p)
	return p
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Others returns every participant except the given user.
func (c *Conversation) Others(userID string) []string {
	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != userID {
			out = append(out, p)
		}
	}
	return out
}
