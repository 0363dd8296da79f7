package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fathima-sithara/hireloop-backend/internal/apperr"
	"github.com/fathima-sithara/hireloop-backend/internal/metrics"
	"github.com/fathima-sithara/hireloop-backend/internal/models"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
)

// DeliveryProducer hands created notifications to the external delivery
// workers (email, push). Routing by channel happens on their side.
type DeliveryProducer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Notification creates and manages durable notifications. Creation does
// not push to the realtime layer by itself: callers that want a live event
// publish explicitly. Persistence and push stay independently composable.
type Notification struct {
	repo     repository.NotificationRepo
	delivery DeliveryProducer
	log      *zap.SugaredLogger
}

func NewNotification(repo repository.NotificationRepo, delivery DeliveryProducer, log *zap.SugaredLogger) *Notification {
	return &Notification{repo: repo, delivery: delivery, log: log}
}

type CreateInput struct {
	RecipientID   string
	Type          string
	Category      string
	Title         string
	Message       string
	RelatedUserID string
	Metadata      map[string]any
}

func (s *Notification) Create(ctx context.Context, in CreateInput) (*models.Notification, error) {
	if in.RecipientID == "" {
		return nil, apperr.Validation("recipient is required")
	}
	if in.Type == "" || in.Title == "" {
		return nil, apperr.Validation("type and title are required")
	}
	n := &models.Notification{
		RecipientID:   in.RecipientID,
		Type:          in.Type,
		Category:      in.Category,
		Title:         in.Title,
		Message:       in.Message,
		RelatedUserID: in.RelatedUserID,
		Metadata:      in.Metadata,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
	s.emitDelivery(ctx, n)
	return n, nil
}

// emitDelivery publishes the record for the email/push workers. Best
// effort: a broker outage never fails the create.
func (s *Notification) emitDelivery(ctx context.Context, n *models.Notification) {
	if s.delivery == nil {
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.delivery.Publish(ctx, n.RecipientID, b); err != nil {
		s.log.Warnw("notification delivery publish", "notification_id", n.ID, "err", err)
	}
}

type ListResult struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

// List returns a page plus the recipient's unread count, computed at query
// time.
func (s *Notification) List(ctx context.Context, recipientID string, filter models.NotificationFilter, page, pageSize int64) (*ListResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	items, err := s.repo.List(ctx, recipientID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return &ListResult{Notifications: items, UnreadCount: unread}, nil
}

func (s *Notification) MarkRead(ctx context.Context, recipientID, id string) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return err
	}
	return nil
}

func (s *Notification) MarkManyRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.MarkManyRead(ctx, ids, recipientID)
}

func (s *Notification) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Notification) Delete(ctx context.Context, recipientID, id string) error {
	if err := s.repo.Delete(ctx, id, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return err
	}
	return nil
}

func (s *Notification) DeleteMany(ctx context.Context, recipientID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, ids, recipientID)
}

func (s *Notification) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.DeleteAll(ctx, recipientID)
}

// Typed recipes. Each one fixes type, category and wording for a known
// scenario so other domains never assemble raw records.

func (s *Notification) NotifyNewMessage(ctx context.Context, recipientID, senderID, senderName, convID, messageID string) error {
	title := "New message"
	if senderName != "" {
		title = fmt.Sprintf("New message from %s", senderName)
	}
	_, err := s.Create(ctx, CreateInput{
		RecipientID:   recipientID,
		Type:          models.NotificationTypeNewMessage,
		Category:      models.NotificationCategoryMessaging,
		Title:         title,
		Message:       "You have a new message",
		RelatedUserID: senderID,
		Metadata: map[string]any{
			"conversation_id": convID,
			"message_id":      messageID,
		},
	})
	return err
}

func (s *Notification) NotifyApplicationStatus(ctx context.Context, recipientID, jobID, jobTitle, status string) error {
	_, err := s.Create(ctx, CreateInput{
		RecipientID: recipientID,
		Type:        models.NotificationTypeApplicationStatus,
		Category:    models.NotificationCategoryApplication,
		Title:       "Application update",
		Message:     fmt.Sprintf("Your application for %s is now %s", jobTitle, status),
		Metadata: map[string]any{
			"job_id": jobID,
			"status": status,
		},
	})
	return err
}

func (s *Notification) NotifyJobAlert(ctx context.Context, recipientID, jobID, jobTitle string) error {
	_, err := s.Create(ctx, CreateInput{
		RecipientID: recipientID,
		Type:        models.NotificationTypeJobAlert,
		Category:    models.NotificationCategoryJobs,
		Title:       "New job match",
		Message:     fmt.Sprintf("%s matches your job alerts", jobTitle),
		Metadata:    map[string]any{"job_id": jobID},
	})
	return err
}

func (s *Notification) NotifyProfileView(ctx context.Context, recipientID, viewerID, viewerName string) error {
	msg := "Someone viewed your profile"
	if viewerName != "" {
		msg = fmt.Sprintf("%s viewed your profile", viewerName)
	}
	_, err := s.Create(ctx, CreateInput{
		RecipientID:   recipientID,
		Type:          models.NotificationTypeProfileView,
		Category:      models.NotificationCategoryProfile,
		Title:         "Profile view",
		Message:       msg,
		RelatedUserID: viewerID,
	})
	return err
}
