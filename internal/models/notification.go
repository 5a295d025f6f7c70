package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationLike      = "like"
	NotificationComment   = "comment"
	NotificationMilestone = "milestone"
	NotificationReminder  = "reminder"
	NotificationAdmin     = "admin"
	NotificationChallenge = "challenge"
)

type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID     `bson:"user_id" json:"user_id"`
	Type      string                 `bson:"type" json:"type"`
	Message   string                 `bson:"message" json:"message"`
	Data      map[string]interface{} `bson:"data" json:"data"` // opaque payload: commitment_id, badge, etc.
	Read      bool                   `bson:"read" json:"read"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time              `bson:"expires_at" json:"expires_at"` // for auto-deletion after 30 days
}
