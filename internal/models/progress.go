package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressUpdate is an append-only record of a single user-submitted update
// against a commitment. It is the durable ledger from which the commitment's
// actual carbon savings and milestone counters are advanced; rows are never
// modified after insertion.
type ProgressUpdate struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitmentID     primitive.ObjectID `bson:"commitment_id" json:"commitment_id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount           string             `bson:"amount" json:"amount"`
	Note             string             `bson:"note,omitempty" json:"note,omitempty"`
	DeltaCarbonSaved float64            `bson:"delta_carbon_saved" json:"delta_carbon_saved"`
	Date             time.Time          `bson:"date" json:"date"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}
