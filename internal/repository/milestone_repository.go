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

// MilestoneRepository handles database operations related to milestones.
type MilestoneRepository struct {
	collection *mongo.Collection
}

// NewMilestoneRepository creates a new instance of MilestoneRepository.
func NewMilestoneRepository(db *mongo.Database) *MilestoneRepository {
	return &MilestoneRepository{
		collection: db.Collection("milestones"),
	}
}

// CreateMilestone inserts a single milestone.
func (r *MilestoneRepository) CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error) {
	milestone.CreatedAt = time.Now()
	milestone.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, milestone)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert milestone")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted milestone ID")
		return nil, err
	}
	milestone.ID = insertedID
	return milestone, nil
}

// GetMilestonesByCommitment fetches milestones for a commitment, oldest first.
// When statuses are given only milestones in those states are returned.
func (r *MilestoneRepository) GetMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID, statuses ...string) ([]models.Milestone, error) {
	filter := bson.M{"commitment_id": commitmentID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", commitmentID.Hex()).Error("Failed to fetch milestones")
		return nil, err
	}
	defer cursor.Close(ctx)

	var milestones []models.Milestone
	if err := cursor.All(ctx, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// UpdateMilestone persists milestone progress fields.
func (r *MilestoneRepository) UpdateMilestone(ctx context.Context, milestone *models.Milestone) error {
	milestone.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": milestone.ID}, bson.M{"$set": milestone})
	if err != nil {
		logger.Log.WithError(err).WithField("milestone_id", milestone.ID.Hex()).Error("Failed to update milestone")
		return err
	}
	return nil
}

// DeleteMilestonesByCommitment removes every milestone owned by a commitment.
// Called when the commitment itself is deleted.
func (r *MilestoneRepository) DeleteMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"commitment_id": commitmentID})
	if err != nil {
		logger.Log.WithError(err).WithField("commitment_id", commitmentID.Hex()).Error("Failed to delete milestones")
		return err
	}
	return nil
}

// CountByCommitments counts milestones across many commitments, optionally by status.
func (r *MilestoneRepository) CountByCommitments(ctx context.Context, commitmentIDs []primitive.ObjectID, status string) (int64, error) {
	filter := bson.M{"commitment_id": bson.M{"$in": commitmentIDs}}
	if status != "" {
		filter["status"] = status
	}
	return r.collection.CountDocuments(ctx, filter)
}
