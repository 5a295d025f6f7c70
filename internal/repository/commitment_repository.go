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

// FeedQuery describes wall feed filtering, sorting and pagination.
type FeedQuery struct {
	Category  string
	Since     time.Time
	CarbonMin float64
	CarbonMax float64
	Search    string
	Sort      string // "recent", "impact" or "popular"
	Page      int64
	Limit     int64
}

// CommitmentRepository handles database operations related to commitments.
type CommitmentRepository struct {
	collection *mongo.Collection
}

// NewCommitmentRepository creates a new instance of CommitmentRepository.
func NewCommitmentRepository(db *mongo.Database) *CommitmentRepository {
	return &CommitmentRepository{
		collection: db.Collection("commitments"),
	}
}

// CreateCommitment inserts a new commitment.
func (r *CommitmentRepository) CreateCommitment(ctx context.Context, commitment *models.Commitment) (*models.Commitment, error) {
	commitment.CreatedAt = time.Now()
	commitment.UpdatedAt = time.Now()
	if commitment.Likes == nil {
		commitment.Likes = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, commitment)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert commitment")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted commitment ID")
		return nil, err
	}
	commitment.ID = insertedID

	logger.Log.WithField("commitment_id", commitment.ID.Hex()).Info("Commitment created successfully")
	return commitment, nil
}

// GetCommitmentByID fetches a commitment by its ID.
func (r *CommitmentRepository) GetCommitmentByID(ctx context.Context, id primitive.ObjectID) (*models.Commitment, error) {
	var commitment models.Commitment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&commitment)
	if err != nil {
		return nil, err
	}
	return &commitment, nil
}

// UpdateCommitment overwrites mutable commitment fields.
func (r *CommitmentRepository) UpdateCommitment(ctx context.Context, id primitive.ObjectID, commitment *models.Commitment) error {
	commitment.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": commitment})
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", id.Hex()).Error("Failed to update commitment")
		return err
	}
	return nil
}

// DeleteCommitment removes a commitment.
func (r *CommitmentRepository) DeleteCommitment(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", id.Hex()).Error("Failed to delete commitment")
		return err
	}
	logger.Log.WithField("commitment_id", id.Hex()).Info("Commitment deleted successfully")
	return nil
}

// IncrementActualCarbon adds a non-negative delta to the accumulator.
func (r *CommitmentRepository) IncrementActualCarbon(ctx context.Context, id primitive.ObjectID, delta float64) error {
	update := bson.M{
		"$inc": bson.M{"actual_carbon_saved": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", id.Hex()).Error("Failed to increment actual carbon saved")
	}
	return err
}

// IncrementCommentCount bumps the denormalized comment counter.
func (r *CommitmentRepository) IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"comment_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// SetLikes persists the like set together with its counter so the two cannot drift.
func (r *CommitmentRepository) SetLikes(ctx context.Context, id primitive.ObjectID, likes []primitive.ObjectID, likeCount int) error {
	update := bson.M{"$set": bson.M{
		"likes":      likes,
		"like_count": likeCount,
		"updated_at": time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", id.Hex()).Error("Failed to persist likes")
	}
	return err
}

// GetUserCommitments fetches a user's commitments, optionally filtered by
// status and restricted to public ones.
func (r *CommitmentRepository) GetUserCommitments(ctx context.Context, userID primitive.ObjectID, status string, publicOnly bool) ([]models.Commitment, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	if publicOnly {
		filter["visibility"] = "public"
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch user commitments")
		return nil, err
	}
	defer cursor.Close(ctx)

	var commitments []models.Commitment
	if err := cursor.All(ctx, &commitments); err != nil {
		return nil, err
	}
	return commitments, nil
}

// GetStaleActiveCommitments returns active commitments that have not been
// touched since the cutoff. Used by the reminder scan.
func (r *CommitmentRepository) GetStaleActiveCommitments(ctx context.Context, cutoff time.Time, limit int64) ([]models.Commitment, error) {
	filter := bson.M{
		"status":     models.CommitmentActive,
		"updated_at": bson.M{"$lt": cutoff},
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch stale commitments")
		return nil, err
	}
	defer cursor.Close(ctx)

	var commitments []models.Commitment
	if err := cursor.All(ctx, &commitments); err != nil {
		return nil, err
	}
	return commitments, nil
}

// GetFeed returns public active commitments matching the feed query plus the
// total count for pagination.
func (r *CommitmentRepository) GetFeed(ctx context.Context, q FeedQuery) ([]models.Commitment, int64, error) {
	filter := bson.M{
		"visibility": "public",
		"status":     models.CommitmentActive,
	}
	if q.Category != "" && q.Category != "all" {
		filter["category"] = q.Category
	}
	if !q.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": q.Since}
	}
	if q.CarbonMax > 0 {
		filter["estimated_carbon_savings.total"] = bson.M{"$gte": q.CarbonMin, "$lte": q.CarbonMax}
	} else if q.CarbonMin > 0 {
		filter["estimated_carbon_savings.total"] = bson.M{"$gte": q.CarbonMin}
	}
	if q.Search != "" {
		filter["text"] = bson.M{"$regex": q.Search, "$options": "i"}
	}

	var sort bson.D
	switch q.Sort {
	case "impact":
		sort = bson.D{{Key: "estimated_carbon_savings.total", Value: -1}}
	case "popular":
		sort = bson.D{{Key: "like_count", Value: -1}}
	default:
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sort).SetSkip((page - 1) * limit).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch wall feed")
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var commitments []models.Commitment
	if err := cursor.All(ctx, &commitments); err != nil {
		return nil, 0, err
	}
	return commitments, total, nil
}

// CountUserCommitments counts a user's commitments with the given status.
func (r *CommitmentRepository) CountUserCommitments(ctx context.Context, userID primitive.ObjectID, status string) (int64, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return r.collection.CountDocuments(ctx, filter)
}

// GetUserCommitmentIDs returns the IDs of every commitment owned by the user.
func (r *CommitmentRepository) GetUserCommitmentIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CategoryCount is a per-category commitment aggregate.
type CategoryCount struct {
	Category    string  `bson:"_id" json:"category"`
	Count       int     `bson:"count" json:"count"`
	CarbonSaved float64 `bson:"carbon_saved" json:"carbon_saved"`
}

// GetCategoryBreakdown groups a user's commitments by category.
func (r *CommitmentRepository) GetCategoryBreakdown(ctx context.Context, userID primitive.ObjectID) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$category",
			"count":        bson.M{"$sum": 1},
			"carbon_saved": bson.M{"$sum": "$actual_carbon_saved"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to aggregate category breakdown")
		return nil, err
	}
	defer cursor.Close(ctx)

	var breakdown []CategoryCount
	if err := cursor.All(ctx, &breakdown); err != nil {
		return nil, err
	}
	return breakdown, nil
}

// WallStats aggregates the public wall as a whole.
type WallStats struct {
	TotalCommitments int64   `json:"total_commitments"`
	EstimatedTotal   float64 `bson:"estimated_total" json:"estimated_total_kg"`
	ActualTotal      float64 `bson:"actual_total" json:"actual_total_kg"`
}

// GetWallStats sums estimated and actual savings across public commitments.
func (r *CommitmentRepository) GetWallStats(ctx context.Context) (*WallStats, error) {
	filter := bson.M{"visibility": "public"}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"estimated_total": bson.M{"$sum": "$estimated_carbon_savings.total"},
			"actual_total":    bson.M{"$sum": "$actual_carbon_saved"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := WallStats{TotalCommitments: total}
	var rows []WallStats
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		stats.EstimatedTotal = rows[0].EstimatedTotal
		stats.ActualTotal = rows[0].ActualTotal
	}
	return &stats, nil
}
