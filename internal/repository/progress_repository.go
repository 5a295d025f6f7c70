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

// ProgressRepository handles the append-only progress update ledger.
type ProgressRepository struct {
	collection *mongo.Collection
}

// NewProgressRepository creates a new instance of ProgressRepository.
func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{
		collection: db.Collection("progress_updates"),
	}
}

// CreateProgressUpdate appends a progress event. Rows are immutable once
// inserted; there is deliberately no update or delete here.
func (r *ProgressRepository) CreateProgressUpdate(ctx context.Context, update *models.ProgressUpdate) (*models.ProgressUpdate, error) {
	update.CreatedAt = time.Now()
	if update.Date.IsZero() {
		update.Date = update.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, update)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert progress update")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted progress update ID")
		return nil, err
	}
	update.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"progress_id":   update.ID.Hex(),
		"commitment_id": update.CommitmentID.Hex(),
	}).Info("Progress update recorded")
	return update, nil
}

// GetByCommitment returns the most recent progress updates for a commitment.
func (r *ProgressRepository) GetByCommitment(ctx context.Context, commitmentID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"commitment_id": commitmentID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", commitmentID.Hex()).Error("Failed to fetch progress updates")
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.ProgressUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// GetRecentByUser returns a user's most recent progress updates across all
// commitments, for the dashboard.
func (r *ProgressRepository) GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.ProgressUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// DailyCarbon is one day of summed carbon savings.
type DailyCarbon struct {
	Date        string  `bson:"_id" json:"date"`
	CarbonSaved float64 `bson:"carbon_saved" json:"carbon_saved"`
}

// GetCarbonHistory sums a user's carbon deltas per day since the given time.
func (r *ProgressRepository) GetCarbonHistory(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]DailyCarbon, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    userID,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"carbon_saved": bson.M{"$sum": "$delta_carbon_saved"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to aggregate carbon history")
		return nil, err
	}
	defer cursor.Close(ctx)

	var history []DailyCarbon
	if err := cursor.All(ctx, &history); err != nil {
		return nil, err
	}
	return history, nil
}
