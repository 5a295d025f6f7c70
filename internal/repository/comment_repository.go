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

// CommentRepository handles database operations related to commitment comments.
type CommentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		collection: db.Collection("comments"),
	}
}

// CreateComment inserts a new comment.
func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert comment")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted comment ID")
		return nil, err
	}
	comment.ID = insertedID
	return comment, nil
}

// GetCommentsByCommitment fetches comments for a commitment, newest first.
func (r *CommentRepository) GetCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"commitment_id": commitmentID}, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", commitmentID.Hex()).Error("Failed to fetch comments")
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteCommentsByCommitment removes all comments on a commitment.
func (r *CommentRepository) DeleteCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"commitment_id": commitmentID})
	return err
}
