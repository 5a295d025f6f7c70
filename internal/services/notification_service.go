package services

import (
	"context"
	"fmt"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationService records and serves user-facing notifications.
type NotificationService struct {
	repo NotificationStore
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification for a user. Fire-and-forget: a storage
// failure is logged and never propagated to the caller.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notifType, message string, data map[string]interface{}) {
	notif := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
		Data:    data,
		Read:    false,
	}
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"type":    notifType,
		}).Warn("Failed to create notification")
	}
}

// NotificationList bundles a notification page with the unread counter.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// GetUserNotifications returns a user's notifications plus their unread count.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) (*NotificationList, error) {
	if limit <= 0 {
		limit = 50
	}

	notifications, err := s.repo.GetUserNotifications(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %v", err)
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkNotificationAsRead flips a notification's read flag. Only the owning
// user's notifications are reachable.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("notification %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark notification as read: %v", err)
	}
	return notif, nil
}

// CleanupExpiredNotifications is called periodically by cron to delete old rows.
func (s *NotificationService) CleanupExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
