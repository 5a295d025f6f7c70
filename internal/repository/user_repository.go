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

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert user")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted user ID")
		return nil, err
	}
	user.ID = insertedID

	logger.Log.WithField("user_id", user.ID.Hex()).Info("User created successfully")
	return user, nil
}

// GetUserByID fetches a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Warn("Failed to find user by ID")
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies profile field updates to a user document.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update user profile")
		return err
	}
	return nil
}

// IncrementStats atomically applies gamification counter deltas and returns the
// document as it stands after the increment. The increments themselves are
// commutative under concurrent requests; the level recomputation done by the
// caller reads this snapshot.
func (r *UserRepository) IncrementStats(ctx context.Context, id primitive.ObjectID, carbonDelta float64, commitmentsDelta, milestonesDelta int) (*models.User, error) {
	update := bson.M{
		"$inc": bson.M{
			"total_carbon_saved":   carbonDelta,
			"total_commitments":    commitmentsDelta,
			"completed_milestones": milestonesDelta,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to increment user stats")
		return nil, err
	}
	return &user, nil
}

// SetLevel persists a recomputed level.
func (r *UserRepository) SetLevel(ctx context.Context, id primitive.ObjectID, level int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"level": level}})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to set user level")
	}
	return err
}

// AddBadges appends badges to the user's badge set without duplicates.
func (r *UserRepository) AddBadges(ctx context.Context, id primitive.ObjectID, badges []string) error {
	if len(badges) == 0 {
		return nil
	}
	update := bson.M{
		"$addToSet": bson.M{"badges": bson.M{"$each": badges}},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to add badges")
	}
	return err
}

// GetTopUsers returns users ranked by the given metric field.
func (r *UserRepository) GetTopUsers(ctx context.Context, sortField string, limit int64) ([]models.User, error) {
	sort := bson.D{{Key: sortField, Value: -1}}
	if sortField == "level" {
		// Break level ties by carbon saved.
		sort = append(sort, bson.E{Key: "total_carbon_saved", Value: -1})
	}
	opts := options.Find().SetSort(sort).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch leaderboard users")
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
