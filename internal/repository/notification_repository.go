package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(30 * 24 * time.Hour)
	if notif.Data == nil {
		notif.Data = map[string]interface{}{}
	}

	_, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

// GetUserNotifications returns notifications for a user, newest first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// CountUnread counts a user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkAsRead flips a notification to read. Scoped to the owning user so
// nobody can mark somebody else's notifications.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"read": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notif models.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&notif)
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// DeleteExpiredNotifications removes notifications past their expiry.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) error {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	return nil
}
