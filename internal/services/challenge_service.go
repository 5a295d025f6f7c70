package services

import (
	"context"
	"fmt"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateChallengeRequest carries the fields for a new challenge.
type CreateChallengeRequest struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	TargetCarbonSavings float64   `json:"target_carbon_savings"`
	Visibility          string    `json:"visibility"`
}

// ChallengeService manages group challenges and the social leaderboard.
type ChallengeService struct {
	repo     ChallengeStore
	users    UserStore
	notifier Notifier
}

// NewChallengeService creates a new instance of ChallengeService.
func NewChallengeService(repo ChallengeStore, users UserStore, notifier Notifier) *ChallengeService {
	return &ChallengeService{
		repo:     repo,
		users:    users,
		notifier: notifier,
	}
}

// CreateChallenge creates a challenge with the creator as first participant.
func (s *ChallengeService) CreateChallenge(ctx context.Context, creatorID primitive.ObjectID, req CreateChallengeRequest) (*models.Challenge, error) {
	if req.Title == "" || req.Description == "" {
		return nil, fmt.Errorf("challenge title and description are required: %w", ErrInvalid)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("challenge end date must be after start date: %w", ErrInvalid)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = "public"
	}

	challenge := &models.Challenge{
		CreatedByUserID:     creatorID,
		Title:               req.Title,
		Description:         req.Description,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Visibility:          visibility,
		ParticipantIDs:      []primitive.ObjectID{creatorID},
		TargetCarbonSavings: req.TargetCarbonSavings,
	}

	created, err := s.repo.CreateChallenge(ctx, challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %v", err)
	}

	logger.Log.WithField("challenge_id", created.ID.Hex()).Info("Challenge created")
	return created, nil
}

// JoinChallenge adds the caller as a participant and notifies the creator.
func (s *ChallengeService) JoinChallenge(ctx context.Context, challengeID, userID primitive.ObjectID) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeID.Hex(), ErrNotFound)
	}

	for _, pid := range challenge.ParticipantIDs {
		if pid == userID {
			return nil, fmt.Errorf("already joined this challenge: %w", ErrInvalid)
		}
	}

	if err := s.repo.AddParticipant(ctx, challengeID, userID); err != nil {
		return nil, fmt.Errorf("failed to join challenge: %v", err)
	}
	challenge.ParticipantIDs = append(challenge.ParticipantIDs, userID)

	if challenge.CreatedByUserID != userID {
		joinerName := "Someone"
		if joiner, err := s.users.GetUserByID(ctx, userID); err == nil {
			joinerName = joiner.Name
		}
		s.notifier.Notify(ctx, challenge.CreatedByUserID, models.NotificationChallenge,
			fmt.Sprintf("%s joined your challenge: %s", joinerName, challenge.Title),
			map[string]interface{}{"challenge_id": challengeID.Hex()},
		)
	}

	return challenge, nil
}

// GetChallenge fetches a challenge by ID.
func (s *ChallengeService) GetChallenge(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallengeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", id.Hex(), ErrNotFound)
	}
	return challenge, nil
}

// GetChallenges lists public challenges by lifecycle status.
func (s *ChallengeService) GetChallenges(ctx context.Context, status string, limit int64) ([]models.Challenge, error) {
	if limit <= 0 {
		limit = 20
	}
	challenges, err := s.repo.GetChallenges(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %v", err)
	}
	return challenges, nil
}

// GetLeaderboard ranks users by the requested metric.
func (s *ChallengeService) GetLeaderboard(ctx context.Context, metric string, limit int64) ([]models.PublicUser, error) {
	if limit <= 0 {
		limit = 50
	}

	var sortField string
	switch metric {
	case "commitments":
		sortField = "total_commitments"
	case "level":
		sortField = "level"
	default:
		sortField = "total_carbon_saved"
	}

	users, err := s.users.GetTopUsers(ctx, sortField, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %v", err)
	}

	leaders := make([]models.PublicUser, 0, len(users))
	for i := range users {
		leaders = append(leaders, users[i].Public())
	}
	return leaders, nil
}
