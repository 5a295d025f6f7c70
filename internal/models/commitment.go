package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commitment categories as extracted by the AI interpretation.
const (
	CategoryTransport   = "transport"
	CategoryEnergy      = "energy"
	CategoryFood        = "food"
	CategoryWaste       = "waste"
	CategoryWater       = "water"
	CategoryConsumption = "consumption"
	CategoryOther       = "other"
)

// Commitment frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyOnce    = "once"
)

// Commitment statuses.
const (
	CommitmentActive    = "active"
	CommitmentCompleted = "completed"
	CommitmentArchived  = "archived"
)

// AllowedCategories is used for validating user-supplied category filters.
var AllowedCategories = map[string]bool{
	CategoryTransport:   true,
	CategoryEnergy:      true,
	CategoryFood:        true,
	CategoryWaste:       true,
	CategoryWater:       true,
	CategoryConsumption: true,
	CategoryOther:       true,
}

// CarbonSavings is the estimated-savings triple attached to a commitment
// at creation time.
type CarbonSavings struct {
	PerPeriod float64 `bson:"per_period" json:"per_period"`
	Total     float64 `bson:"total" json:"total"`
	Unit      string  `bson:"unit" json:"unit"`
}

// Commitment is a user's declared sustainability action posted to the wall.
// ActualCarbonSaved only ever grows and is mutated solely by progress updates.
type Commitment struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Text              string               `bson:"text" json:"text"`
	MediaType         string               `bson:"media_type" json:"media_type"` // "text", "image" or "video"
	MediaURL          string               `bson:"media_url,omitempty" json:"media_url,omitempty"`
	Category          string               `bson:"category" json:"category"`
	Summary           string               `bson:"summary" json:"summary"`
	Frequency         string               `bson:"frequency" json:"frequency"`
	Duration          string               `bson:"duration,omitempty" json:"duration,omitempty"`
	Visibility        string               `bson:"visibility" json:"visibility"` // "public", "private" or "group"
	EstimatedSavings  CarbonSavings        `bson:"estimated_carbon_savings" json:"estimated_carbon_savings"`
	ActualCarbonSaved float64              `bson:"actual_carbon_saved" json:"actual_carbon_saved"`
	Status            string               `bson:"status" json:"status"`
	LikeCount         int                  `bson:"like_count" json:"like_count"`
	CommentCount      int                  `bson:"comment_count" json:"comment_count"`
	Likes             []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}
