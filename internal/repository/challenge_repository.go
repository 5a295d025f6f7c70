package repository

import (
	"context"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChallengeRepository handles database operations related to challenges.
type ChallengeRepository struct {
	collection *mongo.Collection
}

// NewChallengeRepository creates a new instance of ChallengeRepository.
func NewChallengeRepository(db *mongo.Database) *ChallengeRepository {
	return &ChallengeRepository{
		collection: db.Collection("challenges"),
	}
}

// CreateChallenge inserts a new challenge.
func (r *ChallengeRepository) CreateChallenge(ctx context.Context, challenge *models.Challenge) (*models.Challenge, error) {
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, challenge)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert challenge")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted challenge ID")
		return nil, err
	}
	challenge.ID = insertedID
	return challenge, nil
}

// GetChallengeByID fetches a challenge by its ID.
func (r *ChallengeRepository) GetChallengeByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge)
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// AddParticipant adds a user to the challenge participant set without duplicates.
func (r *ChallengeRepository) AddParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"participant_ids": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": challengeID}, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"challenge_id": challengeID.Hex(),
			"user_id":      userID.Hex(),
		}).Error("Failed to add challenge participant")
		return err
	}
	return nil
}

// GetChallenges lists public challenges by lifecycle status relative to now.
func (r *ChallengeRepository) GetChallenges(ctx context.Context, status string, limit int64) ([]models.Challenge, error) {
	now := time.Now()
	filter := bson.M{"visibility": "public"}

	switch status {
	case "upcoming":
		filter["start_date"] = bson.M{"$gt": now}
	case "completed":
		filter["end_date"] = bson.M{"$lt": now}
	default: // active
		filter["start_date"] = bson.M{"$lte": now}
		filter["end_date"] = bson.M{"$gte": now}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch challenges")
		return nil, err
	}
	defer cursor.Close(ctx)

	var challenges []models.Challenge
	if err := cursor.All(ctx, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}
