package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/apperror"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/store"
)

// NotifyParams describes one notification to deliver
type NotifyParams struct {
	UserID        string
	Type          models.NotificationType
	Title         string
	Message       string
	BookingID     uuid.UUID
	EditRequestID *uuid.UUID
	RequesterID   string
	RequesterName string
	Metadata      map[string]any
}

type NotificationService struct {
	store  store.Notifications
	pusher Pusher
}

func NewNotificationService(s store.Notifications, pusher Pusher) *NotificationService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &NotificationService{store: s, pusher: pusher}
}

// Notify persists an unread notification and pushes it to the target's
// user topic. Persistence errors are returned; the push is best-effort.
func (s *NotificationService) Notify(ctx context.Context, p NotifyParams) (*models.Notification, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, apperror.InvalidRequest("notification target is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, apperror.InvalidRequest("notification title is required")
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	n := &models.Notification{
		ID:                   uuid.New(),
		UserID:               p.UserID,
		Type:                 p.Type,
		Title:                p.Title,
		Message:              p.Message,
		BookingID:            p.BookingID,
		BookingEditRequestID: p.EditRequestID,
		RequesterID:          p.RequesterID,
		RequesterName:        p.RequesterName,
		IsRead:               false,
		Metadata:             metadata,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		log.Printf("Error creating notification: %v (user_id=%s, type=%s)", err, p.UserID, p.Type)
		return nil, apperror.Internal("Failed to create notification", err)
	}

	s.pusher.Publish(realtime.UserTopic(n.UserID), realtime.EventNewNotification, n)
	return n, nil
}

// List returns the user's newest notifications
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	items, err := s.store.ListNotifications(ctx, userID, store.NotificationPageSize)
	if err != nil {
		log.Printf("Error listing notifications: %v (user_id=%s)", err, userID)
		return nil, apperror.Internal("Failed to fetch notifications", err)
	}
	return items, nil
}

// MarkRead flags the given notifications as read. IDs that belong to
// other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []uuid.UUID) (int64, error) {
	n, err := s.store.MarkNotificationsRead(ctx, userID, ids)
	if err != nil {
		log.Printf("Error marking notifications as read: %v (user_id=%s)", err, userID)
		return 0, apperror.Internal("Failed to update notifications", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		log.Printf("Error marking all notifications as read: %v (user_id=%s)", err, userID)
		return 0, apperror.Internal("Failed to update notifications", err)
	}
	return n, nil
}
