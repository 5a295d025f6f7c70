package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account on the Green Commitment Wall.
// The gamification aggregate (level, totals, badges) lives directly on the
// user document and is mutated only through the gamification service.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email               string             `bson:"email" json:"email"`
	Name                string             `bson:"name" json:"name"`
	Username            string             `bson:"username,omitempty" json:"username,omitempty"`
	HashedPassword      string             `bson:"hashed_password" json:"-"`
	Image               string             `bson:"image,omitempty" json:"image,omitempty"`
	Bio                 string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Location            string             `bson:"location,omitempty" json:"location,omitempty"`
	FocusAreas          []string           `bson:"focus_areas,omitempty" json:"focus_areas,omitempty"`
	Role                string             `bson:"role" json:"role"` // "user" or "admin"
	TotalCarbonSaved    float64            `bson:"total_carbon_saved" json:"total_carbon_saved"`
	TotalCommitments    int                `bson:"total_commitments" json:"total_commitments"`
	CompletedMilestones int                `bson:"completed_milestones" json:"completed_milestones"`
	Level               int                `bson:"level" json:"level"`
	Badges              []string           `bson:"badges" json:"badges"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the subset of user fields exposed on social surfaces
// (wall feed, leaderboard, comments).
type PublicUser struct {
	ID               primitive.ObjectID `json:"id"`
	Name             string             `json:"name"`
	Username         string             `json:"username,omitempty"`
	Image            string             `json:"image,omitempty"`
	Level            int                `json:"level"`
	TotalCarbonSaved float64            `json:"total_carbon_saved"`
	TotalCommitments int                `json:"total_commitments"`
	Badges           []string           `json:"badges"`
}

// Public strips private fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Name:             u.Name,
		Username:         u.Username,
		Image:            u.Image,
		Level:            u.Level,
		TotalCarbonSaved: u.TotalCarbonSaved,
		TotalCommitments: u.TotalCommitments,
		Badges:           u.Badges,
	}
}
