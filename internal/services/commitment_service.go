package services

import (
	"context"
	"fmt"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIProvider is the interpretation capability the lifecycle manager depends
// on. Implemented by AIService; none of its methods can fail.
type AIProvider interface {
	InterpretCommitment(ctx context.Context, text string) Interpretation
	EstimateCarbonSavings(ctx context.Context, interp Interpretation, duration string) CarbonEstimate
	SuggestMilestones(ctx context.Context, text string, interp Interpretation) []MilestoneSuggestion
}

// StatsEngine is the slice of the gamification engine consumed by the
// commitment and progress services.
type StatsEngine interface {
	ApplyStatsDelta(ctx context.Context, userID primitive.ObjectID, delta StatsDelta) (*models.User, error)
	EvaluateBadges(ctx context.Context, userID primitive.ObjectID, event string, data map[string]interface{}) ([]string, error)
}

// CreateCommitmentRequest carries the caller-supplied fields for a new commitment.
type CreateCommitmentRequest struct {
	Text       string `json:"text"`
	MediaURL   string `json:"media_url"`
	MediaType  string `json:"media_type"`
	Duration   string `json:"duration"`
	Visibility string `json:"visibility"`
}

// UpdateCommitmentRequest carries owner-editable fields; empty values are left untouched.
type UpdateCommitmentRequest struct {
	Text       string `json:"text"`
	Duration   string `json:"duration"`
	Visibility string `json:"visibility"`
	Status     string `json:"status"`
	MediaURL   string `json:"media_url"`
	MediaType  string `json:"media_type"`
}

// CommitmentCreationResult is the atomic creation bundle returned to the
// caller: the persisted commitment plus the interpretation, estimate and
// milestones that produced it.
type CommitmentCreationResult struct {
	Commitment     *models.Commitment `json:"commitment"`
	Interpretation Interpretation     `json:"interpretation"`
	CarbonEstimate CarbonEstimate     `json:"carbon_estimate"`
	Milestones     []models.Milestone `json:"milestones"`
}

// CommitmentService orchestrates the commitment lifecycle: AI-backed
// creation, ownership-guarded mutation, and the social like/comment surface.
type CommitmentService struct {
	commitments  CommitmentStore
	milestones   MilestoneStore
	comments     CommentStore
	users        UserStore
	ai           AIProvider
	gamification StatsEngine
	notifier     Notifier
}

// NewCommitmentService creates a new instance of CommitmentService.
func NewCommitmentService(
	commitments CommitmentStore,
	milestones MilestoneStore,
	comments CommentStore,
	users UserStore,
	ai AIProvider,
	gamification StatsEngine,
	notifier Notifier,
) *CommitmentService {
	return &CommitmentService{
		commitments:  commitments,
		milestones:   milestones,
		comments:     comments,
		users:        users,
		ai:           ai,
		gamification: gamification,
		notifier:     notifier,
	}
}

// CreateCommitment runs the full creation pipeline: interpret the text,
// estimate savings, persist the commitment, bump the owner's stats, and
// generate milestones. The pieces are persisted sequentially without a
// cross-collection transaction; a late failure leaves earlier writes in place
// and surfaces as a generic creation error.
func (s *CommitmentService) CreateCommitment(ctx context.Context, userID primitive.ObjectID, req CreateCommitmentRequest) (*CommitmentCreationResult, error) {
	if req.Text == "" {
		logger.Log.Warn("Commitment text is empty during creation")
		return nil, fmt.Errorf("commitment text is required: %w", ErrInvalid)
	}

	duration := req.Duration
	if duration == "" {
		duration = "1 month"
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = "public"
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "text"
	}

	interpretation := s.ai.InterpretCommitment(ctx, req.Text)
	estimate := s.ai.EstimateCarbonSavings(ctx, interpretation, duration)

	commitment := &models.Commitment{
		UserID:     userID,
		Text:       req.Text,
		MediaType:  mediaType,
		MediaURL:   req.MediaURL,
		Category:   interpretation.Category,
		Summary:    interpretation.ExtractedDetails,
		Frequency:  interpretation.Frequency,
		Duration:   duration,
		Visibility: visibility,
		EstimatedSavings: models.CarbonSavings{
			PerPeriod: estimate.PerPeriod,
			Total:     estimate.Total,
			Unit:      estimate.Unit,
		},
		Status: models.CommitmentActive,
		Likes:  []primitive.ObjectID{},
	}

	created, err := s.commitments.CreateCommitment(ctx, commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to create commitment: %v", err)
	}

	if _, err := s.gamification.ApplyStatsDelta(ctx, userID, StatsDelta{CommitmentsDelta: 1}); err != nil {
		return nil, fmt.Errorf("failed to create commitment: %v", err)
	}
	if _, err := s.gamification.EvaluateBadges(ctx, userID, EventCommitmentCreated, nil); err != nil {
		logger.Log.WithError(err).Warn("Badge evaluation after commitment creation failed")
	}

	suggestions := s.ai.SuggestMilestones(ctx, req.Text, interpretation)
	milestones := make([]models.Milestone, 0, len(suggestions))
	for _, suggestion := range suggestions {
		milestone := &models.Milestone{
			CommitmentID:           created.ID,
			Title:                  suggestion.Title,
			Description:            suggestion.Description,
			TargetValue:            suggestion.TargetValue,
			EstimatedCarbonSavings: suggestion.EstimatedCarbonSavings,
			Status:                 models.MilestonePending,
		}
		persisted, err := s.milestones.CreateMilestone(ctx, milestone)
		if err != nil {
			return nil, fmt.Errorf("failed to create commitment: %v", err)
		}
		milestones = append(milestones, *persisted)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":       userID.Hex(),
		"commitment_id": created.ID.Hex(),
		"category":      created.Category,
		"milestones":    len(milestones),
	}).Info("Commitment created")

	return &CommitmentCreationResult{
		Commitment:     created,
		Interpretation: interpretation,
		CarbonEstimate: estimate,
		Milestones:     milestones,
	}, nil
}

// GetCommitment fetches a commitment and its milestones. Private commitments
// are visible to their owner only.
func (s *CommitmentService) GetCommitment(ctx context.Context, id, callerID primitive.ObjectID) (*models.Commitment, []models.Milestone, error) {
	commitment, err := s.commitments.GetCommitmentByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("commitment %s: %w", id.Hex(), ErrNotFound)
	}

	if commitment.Visibility == "private" && commitment.UserID != callerID {
		return nil, nil, fmt.Errorf("commitment %s is private: %w", id.Hex(), ErrForbidden)
	}

	milestones, err := s.milestones.GetMilestonesByCommitment(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch milestones: %v", err)
	}
	return commitment, milestones, nil
}

// UpdateCommitment applies owner-editable field updates.
func (s *CommitmentService) UpdateCommitment(ctx context.Context, id, callerID primitive.ObjectID, req UpdateCommitmentRequest) (*models.Commitment, error) {
	commitment, err := s.commitments.GetCommitmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("commitment %s: %w", id.Hex(), ErrNotFound)
	}
	if commitment.UserID != callerID {
		return nil, fmt.Errorf("only the owner can update a commitment: %w", ErrForbidden)
	}

	if req.Text != "" {
		commitment.Text = req.Text
	}
	if req.Duration != "" {
		commitment.Duration = req.Duration
	}
	if req.Visibility != "" {
		commitment.Visibility = req.Visibility
	}
	if req.Status != "" {
		commitment.Status = req.Status
	}
	if req.MediaURL != "" {
		commitment.MediaURL = req.MediaURL
	}
	if req.MediaType != "" {
		commitment.MediaType = req.MediaType
	}

	if err := s.commitments.UpdateCommitment(ctx, id, commitment); err != nil {
		return nil, fmt.Errorf("failed to update commitment: %v", err)
	}
	return commitment, nil
}

// DeleteCommitment removes a commitment together with its milestones and
// comments. Owner only.
func (s *CommitmentService) DeleteCommitment(ctx context.Context, id, callerID primitive.ObjectID) error {
	commitment, err := s.commitments.GetCommitmentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("commitment %s: %w", id.Hex(), ErrNotFound)
	}
	if commitment.UserID != callerID {
		return fmt.Errorf("only the owner can delete a commitment: %w", ErrForbidden)
	}

	if err := s.milestones.DeleteMilestonesByCommitment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete commitment: %v", err)
	}
	if err := s.comments.DeleteCommentsByCommitment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete commitment: %v", err)
	}
	if err := s.commitments.DeleteCommitment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete commitment: %v", err)
	}
	return nil
}

// ToggleLike flips the caller's membership in the commitment's like set.
// The counter always equals the set size; the owner is notified only on a
// like by somebody else.
func (s *CommitmentService) ToggleLike(ctx context.Context, id, callerID primitive.ObjectID) (liked bool, likeCount int, err error) {
	commitment, err := s.commitments.GetCommitmentByID(ctx, id)
	if err != nil {
		return false, 0, fmt.Errorf("commitment %s: %w", id.Hex(), ErrNotFound)
	}

	likes := commitment.Likes
	found := -1
	for i, uid := range likes {
		if uid == callerID {
			found = i
			break
		}
	}

	if found >= 0 {
		likes = append(likes[:found], likes[found+1:]...)
	} else {
		likes = append(likes, callerID)
		liked = true
	}
	likeCount = len(likes)

	if err := s.commitments.SetLikes(ctx, id, likes, likeCount); err != nil {
		return false, 0, fmt.Errorf("failed to persist like: %v", err)
	}

	if liked && commitment.UserID != callerID {
		likerName := "Someone"
		if liker, err := s.users.GetUserByID(ctx, callerID); err == nil {
			likerName = liker.Name
		}
		s.notifier.Notify(ctx, commitment.UserID, models.NotificationLike,
			fmt.Sprintf("%s liked your commitment", likerName),
			map[string]interface{}{"commitment_id": id.Hex()},
		)
	}

	return liked, likeCount, nil
}

// AddComment appends a comment, bumps the counter and notifies the owner
// when the commenter is somebody else.
func (s *CommitmentService) AddComment(ctx context.Context, id, callerID primitive.ObjectID, text string) (*models.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrInvalid)
	}

	commitment, err := s.commitments.GetCommitmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("commitment %s: %w", id.Hex(), ErrNotFound)
	}

	comment, err := s.comments.CreateComment(ctx, &models.Comment{
		CommitmentID: id,
		UserID:       callerID,
		Text:         text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %v", err)
	}

	if err := s.commitments.IncrementCommentCount(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("commitment_id", id.Hex()).Warn("Failed to bump comment counter")
	}

	if commitment.UserID != callerID {
		commenterName := "Someone"
		if commenter, err := s.users.GetUserByID(ctx, callerID); err == nil {
			commenterName = commenter.Name
		}
		s.notifier.Notify(ctx, commitment.UserID, models.NotificationComment,
			fmt.Sprintf("%s commented on your commitment", commenterName),
			map[string]interface{}{
				"commitment_id": id.Hex(),
				"comment_id":    comment.ID.Hex(),
			},
		)
	}

	return comment, nil
}

// GetComments returns a commitment's comments, newest first.
func (s *CommitmentService) GetComments(ctx context.Context, id primitive.ObjectID) ([]models.Comment, error) {
	comments, err := s.comments.GetCommentsByCommitment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %v", err)
	}
	return comments, nil
}

// GetUserCommitments lists a user's commitments; non-owners see public ones only.
func (s *CommitmentService) GetUserCommitments(ctx context.Context, targetID, callerID primitive.ObjectID, status string) ([]models.Commitment, error) {
	publicOnly := targetID != callerID
	commitments, err := s.commitments.GetUserCommitments(ctx, targetID, status, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user commitments: %v", err)
	}
	return commitments, nil
}

// GetWallFeed returns the filtered, sorted, paginated public feed.
func (s *CommitmentService) GetWallFeed(ctx context.Context, q repository.FeedQuery) ([]models.Commitment, int64, error) {
	commitments, total, err := s.commitments.GetFeed(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wall feed: %v", err)
	}
	return commitments, total, nil
}

// GetTrendingCommitments returns the most-liked public commitments of the
// past week.
func (s *CommitmentService) GetTrendingCommitments(ctx context.Context, limit int64) ([]models.Commitment, error) {
	q := repository.FeedQuery{
		Sort:  "popular",
		Since: time.Now().Add(-7 * 24 * time.Hour),
		Limit: limit,
	}
	commitments, _, err := s.commitments.GetFeed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending commitments: %v", err)
	}
	return commitments, nil
}

// GetWallStats aggregates the public wall totals.
func (s *CommitmentService) GetWallStats(ctx context.Context) (*repository.WallStats, error) {
	stats, err := s.commitments.GetWallStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wall stats: %v", err)
	}
	return stats, nil
}
