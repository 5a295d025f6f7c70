package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a user comment on a commitment.
type Comment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitmentID primitive.ObjectID `bson:"commitment_id" json:"commitment_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Text         string             `bson:"text" json:"text"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
