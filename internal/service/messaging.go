package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/hireloop-backend/internal/apperr"
	"github.com/fathima-sithara/hireloop-backend/internal/models"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
)

// Messaging orchestrates conversations, messages and the realtime push.
type Messaging struct {
	convs  repository.ConversationRepo
	msgs   repository.MessageRepo
	users  repository.UserRepo
	notifs *Notification
	rt     RealtimePublisher
	log    *zap.SugaredLogger
}

// NewMessaging wires the messaging service. rt and notifs may be nil; the
// service then skips pushes and inbox records but keeps all durable
// message state correct.
func NewMessaging(convs repository.ConversationRepo, msgs repository.MessageRepo, users repository.UserRepo, notifs *Notification, rt RealtimePublisher, log *zap.SugaredLogger) *Messaging {
	return &Messaging{convs: convs, msgs: msgs, users: users, notifs: notifs, rt: rt, log: log}
}

// CreateOrGetConversation returns the direct conversation for the pair,
// creating it on first use. Safe to call repeatedly and with the users in
// either order.
func (s *Messaging) CreateOrGetConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if userA == "" || userB == "" {
		return nil, apperr.Validation("both participants are required")
	}
	if userA == userB {
		return nil, apperr.Validation("cannot start a conversation with yourself")
	}

	existing, err := s.convs.FindDirectByParticipants(ctx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	pair := models.DirectPair(userA, userB)
	conv := &models.Conversation{
		Type:         models.ConversationTypeDirect,
		Participants: pair,
		UnreadCounts: models.UnreadCounts{pair[0]: 0, pair[1]: 0},
	}
	if err := s.convs.Insert(ctx, conv); err != nil {
		// lost a creation race: the other writer's document wins
		if c, ferr := s.convs.FindDirectByParticipants(ctx, userA, userB); ferr == nil {
			return c, nil
		}
		return nil, err
	}
	return conv, nil
}

// ListConversations returns every conversation the user participates in,
// most recently active first. LastMessageID and the unread counters ride
// along for list previews.
func (s *Messaging) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	return s.convs.ListByParticipant(ctx, userID)
}

// SendMessage persists the message, advances the conversation state and
// then pushes. Pushes come last so a client that reacts to the event
// always finds the message and the bumped counter already in storage.
func (s *Messaging) SendMessage(ctx context.Context, senderID, convID, content string, attachments []models.Attachment) (*models.Message, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil, apperr.Validation("message content is required")
	}

	conv, err := s.findConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, apperr.Forbidden("not a participant of this conversation")
	}

	msg := &models.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		Attachments:    attachments,
	}
	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, err
	}

	recipients := conv.Others(senderID)
	if err := s.convs.ApplyMessageSent(ctx, convID, msg.ID, recipients); err != nil {
		return nil, err
	}

	summary := s.summarize(ctx, msg)
	for _, uid := range recipients {
		if s.rt != nil {
			s.rt.PublishToUser(uid, EventNewMessage, summary)
		}
		if s.notifs != nil {
			if err := s.notifs.NotifyNewMessage(ctx, uid, senderID, summary.SenderName, convID, msg.ID); err != nil {
				s.log.Warnw("new-message notification", "recipient", uid, "err", err)
			}
		}
	}
	return msg, nil
}

// GetMessages returns a page of messages oldest-first and marks the
// conversation read for the caller. Opening a thread implies reading it.
func (s *Messaging) GetMessages(ctx context.Context, userID, convID string, page, pageSize int64) ([]*models.Message, error) {
	conv, err := s.findConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.Forbidden("not a participant of this conversation")
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	msgs, err := s.msgs.ListByConversation(ctx, convID, page, pageSize)
	if err != nil {
		return nil, err
	}
	// storage order is newest-first, callers want the page chronological
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if err := s.convs.ResetUnread(ctx, convID, userID); err != nil {
		s.log.Warnw("reset unread", "conversation_id", convID, "err", err)
	}
	return msgs, nil
}

// EditMessage updates content. Sender-only, inside the edit window, and
// never on a deleted message.
func (s *Messaging) EditMessage(ctx context.Context, userID, messageID, newContent string) (*models.Message, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, apperr.Validation("message content is required")
	}
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, apperr.Forbidden("only the sender can edit a message")
	}
	if msg.IsDeleted {
		return nil, apperr.Validation("message has been deleted")
	}
	if time.Since(msg.CreatedAt) > models.EditWindow {
		return nil, apperr.Validation("edit window has expired")
	}
	if err := s.msgs.UpdateContent(ctx, messageID, newContent); err != nil {
		return nil, err
	}
	msg.Content = newContent
	msg.IsEdited = true
	msg.UpdatedAt = time.Now().UTC()
	return msg, nil
}

// DeleteMessage soft-deletes: the document stays, content becomes the
// tombstone and attachments are dropped. Unread counters are not adjusted
// retroactively.
func (s *Messaging) DeleteMessage(ctx context.Context, userID, messageID string) error {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return apperr.Forbidden("only the sender can delete a message")
	}
	if err := s.msgs.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	if s.rt != nil {
		if conv, err := s.convs.FindByID(ctx, msg.ConversationID); err == nil {
			for _, uid := range conv.Others(userID) {
				s.rt.PublishToUser(uid, EventMessageDeleted, map[string]string{
					"message_id":      messageID,
					"conversation_id": msg.ConversationID,
				})
			}
		}
	}
	return nil
}

// MarkAsRead records the reader on the message. Idempotent, and only for
// participants of the message's conversation.
func (s *Messaging) MarkAsRead(ctx context.Context, userID, messageID string) error {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, userID, msg.ConversationID); err != nil {
		return err
	}
	return s.msgs.AddReadBy(ctx, messageID, userID)
}

// MarkManyAsRead records the reader on a batch of messages, skipping ids
// that no longer exist.
func (s *Messaging) MarkManyAsRead(ctx context.Context, userID string, messageIDs []string) error {
	checked := make(map[string]bool)
	for _, id := range messageIDs {
		msg, err := s.msgs.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		if !checked[msg.ConversationID] {
			if err := s.requireParticipant(ctx, userID, msg.ConversationID); err != nil {
				return err
			}
			checked[msg.ConversationID] = true
		}
		if err := s.msgs.AddReadBy(ctx, id, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *Messaging) requireParticipant(ctx context.Context, userID, convID string) error {
	conv, err := s.findConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return apperr.Forbidden("not a participant of this conversation")
	}
	return nil
}

// SearchMessages matches content across the caller's conversations,
// excluding deleted messages.
func (s *Messaging) SearchMessages(ctx context.Context, userID, query string, page, pageSize int64) ([]*models.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("search query is required")
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	convs, err := s.convs.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	return s.msgs.Search(ctx, ids, query, page, pageSize)
}

// UnreadTotal sums the caller's counter across all their conversations.
// Derived at query time, never stored, so there is no second source of
// truth to drift.
func (s *Messaging) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	convs, err := s.convs.ListByParticipant(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range convs {
		total += c.UnreadCounts.Get(userID)
	}
	return total, nil
}

// DeleteConversation removes the conversation and every message in it.
// Destructive and irreversible.
func (s *Messaging) DeleteConversation(ctx context.Context, userID, convID string) error {
	conv, err := s.findConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return apperr.Forbidden("not a participant of this conversation")
	}
	if _, err := s.msgs.DeleteByConversation(ctx, convID); err != nil {
		return err
	}
	return s.convs.Delete(ctx, convID)
}

func (s *Messaging) findConversation(ctx context.Context, convID string) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, err
	}
	return conv, nil
}

func (s *Messaging) findMessage(ctx context.Context, messageID string) (*models.Message, error) {
	msg, err := s.msgs.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, err
	}
	return msg, nil
}

func (s *Messaging) summarize(ctx context.Context, msg *models.Message) models.MessageSummary {
	summary := models.MessageSummary{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if sender, err := s.users.FindByID(ctx, msg.SenderID); err == nil {
		summary.SenderName = sender.Name
	}
	return summary
}
