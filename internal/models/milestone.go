package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Milestone statuses. Transitions are one-way:
// pending -> in_progress -> completed.
const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
)

// Milestone is a sub-goal tracked against a single commitment. Milestones are
// generated in a batch of at most three when the commitment is created and
// advance by one per progress update.
type Milestone struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitmentID           primitive.ObjectID `bson:"commitment_id" json:"commitment_id"`
	Title                  string             `bson:"title" json:"title"`
	Description            string             `bson:"description" json:"description"`
	TargetValue            float64            `bson:"target_value" json:"target_value"`
	CurrentValue           float64            `bson:"current_value" json:"current_value"`
	Status                 string             `bson:"status" json:"status"`
	EstimatedCarbonSavings float64            `bson:"estimated_carbon_savings" json:"estimated_carbon_savings"`
	CompletedAt            *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}
