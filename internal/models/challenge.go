package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Challenge is a time-boxed group goal users can join. Joining notifies the
// creator; progress toward the target is aggregated from participants.
type Challenge struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedByUserID     primitive.ObjectID   `bson:"created_by_user_id" json:"created_by_user_id"`
	Title               string               `bson:"title" json:"title"`
	Description         string               `bson:"description" json:"description"`
	StartDate           time.Time            `bson:"start_date" json:"start_date"`
	EndDate             time.Time            `bson:"end_date" json:"end_date"`
	Visibility          string               `bson:"visibility" json:"visibility"`
	ParticipantIDs      []primitive.ObjectID `bson:"participant_ids" json:"participant_ids"`
	TargetCarbonSavings float64              `bson:"target_carbon_savings" json:"target_carbon_savings"`
	CurrentCarbonSaving float64              `bson:"current_carbon_savings" json:"current_carbon_savings"`
	CreatedAt           time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updated_at"`
}
