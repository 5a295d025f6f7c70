package services

import (
	"context"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces consumed by the services. The Mongo repositories satisfy
// them; tests substitute in-memory fakes.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update bson.M) error
	IncrementStats(ctx context.Context, id primitive.ObjectID, carbonDelta float64, commitmentsDelta, milestonesDelta int) (*models.User, error)
	SetLevel(ctx context.Context, id primitive.ObjectID, level int) error
	AddBadges(ctx context.Context, id primitive.ObjectID, badges []string) error
	GetTopUsers(ctx context.Context, sortField string, limit int64) ([]models.User, error)
}

type CommitmentStore interface {
	CreateCommitment(ctx context.Context, commitment *models.Commitment) (*models.Commitment, error)
	GetCommitmentByID(ctx context.Context, id primitive.ObjectID) (*models.Commitment, error)
	UpdateCommitment(ctx context.Context, id primitive.ObjectID, commitment *models.Commitment) error
	DeleteCommitment(ctx context.Context, id primitive.ObjectID) error
	IncrementActualCarbon(ctx context.Context, id primitive.ObjectID, delta float64) error
	IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error
	SetLikes(ctx context.Context, id primitive.ObjectID, likes []primitive.ObjectID, likeCount int) error
	GetUserCommitments(ctx context.Context, userID primitive.ObjectID, status string, publicOnly bool) ([]models.Commitment, error)
	GetFeed(ctx context.Context, q repository.FeedQuery) ([]models.Commitment, int64, error)
	CountUserCommitments(ctx context.Context, userID primitive.ObjectID, status string) (int64, error)
	GetUserCommitmentIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	GetCategoryBreakdown(ctx context.Context, userID primitive.ObjectID) ([]repository.CategoryCount, error)
	GetWallStats(ctx context.Context) (*repository.WallStats, error)
}

type MilestoneStore interface {
	CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error)
	GetMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID, statuses ...string) ([]models.Milestone, error)
	UpdateMilestone(ctx context.Context, milestone *models.Milestone) error
	DeleteMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error
	CountByCommitments(ctx context.Context, commitmentIDs []primitive.ObjectID, status string) (int64, error)
}

type ProgressStore interface {
	CreateProgressUpdate(ctx context.Context, update *models.ProgressUpdate) (*models.ProgressUpdate, error)
	GetByCommitment(ctx context.Context, commitmentID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error)
	GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error)
	GetCarbonHistory(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]repository.DailyCarbon, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) ([]models.Comment, error)
	DeleteCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
	DeleteExpiredNotifications(ctx context.Context) error
}

type ChallengeStore interface {
	CreateChallenge(ctx context.Context, challenge *models.Challenge) (*models.Challenge, error)
	GetChallengeByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error)
	AddParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) error
	GetChallenges(ctx context.Context, status string, limit int64) ([]models.Challenge, error)
}

// Notifier is the fire-and-forget notification sink consumed by the
// gamification engine and the social paths.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, notifType, message string, data map[string]interface{})
}
