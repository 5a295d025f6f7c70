package services

import (
	"context"
	"fmt"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Gamification events that can trigger badge evaluation.
const (
	EventCommitmentCreated  = "commitment_created"
	EventMilestoneCompleted = "milestone_completed"
	EventProgressUpdate     = "progress_update"
	EventStreak             = "streak"
)

// StatsDelta is one additive mutation of a user's gamification aggregate.
// All deltas are expected to be non-negative.
type StatsDelta struct {
	CarbonDelta      float64
	CommitmentsDelta int
	MilestonesDelta  int
}

// BadgeRule is one entry of the ordered badge rule set. A rule fires when its
// condition holds and the user does not already hold the badge.
type BadgeRule struct {
	ID        string
	Title     string
	Condition func(user *models.User, event string, data map[string]interface{}) bool
}

// DefaultLevelThresholds maps total kg CO2 saved to levels: the level is the
// 1-based index of the highest threshold not exceeding the total.
var DefaultLevelThresholds = []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// DefaultBadgeRules returns the badge rule set in evaluation order.
func DefaultBadgeRules() []BadgeRule {
	return []BadgeRule{
		{
			ID:    "first_commitment",
			Title: "First Step",
			Condition: func(u *models.User, event string, _ map[string]interface{}) bool {
				return event == EventCommitmentCreated && u.TotalCommitments == 1
			},
		},
		{
			ID:    "commitment_5",
			Title: "5 Commitments",
			Condition: func(u *models.User, _ string, _ map[string]interface{}) bool {
				return u.TotalCommitments >= 5
			},
		},
		{
			ID:    "commitment_10",
			Title: "10 Commitments",
			Condition: func(u *models.User, _ string, _ map[string]interface{}) bool {
				return u.TotalCommitments >= 10
			},
		},
		{
			ID:    "first_milestone",
			Title: "First Milestone",
			Condition: func(u *models.User, event string, _ map[string]interface{}) bool {
				return event == EventMilestoneCompleted && u.CompletedMilestones == 1
			},
		},
		{
			ID:    "carbon_10kg",
			Title: "10kg CO2 Saved",
			Condition: func(u *models.User, _ string, _ map[string]interface{}) bool {
				return u.TotalCarbonSaved >= 10
			},
		},
		{
			ID:    "carbon_100kg",
			Title: "100kg CO2 Saved",
			Condition: func(u *models.User, _ string, _ map[string]interface{}) bool {
				return u.TotalCarbonSaved >= 100
			},
		},
		{
			ID:    "carbon_1000kg",
			Title: "1 Ton CO2 Saved",
			Condition: func(u *models.User, _ string, _ map[string]interface{}) bool {
				return u.TotalCarbonSaved >= 1000
			},
		},
		{
			ID:    "7_day_streak",
			Title: "7 Day Streak",
			Condition: func(_ *models.User, event string, data map[string]interface{}) bool {
				return event == EventStreak && streakDays(data) == 7
			},
		},
		{
			ID:    "30_day_streak",
			Title: "30 Day Streak",
			Condition: func(_ *models.User, event string, data map[string]interface{}) bool {
				return event == EventStreak && streakDays(data) == 30
			},
		},
	}
}

func streakDays(data map[string]interface{}) int {
	if data == nil {
		return 0
	}
	if days, ok := toFloat(data["days"]); ok {
		return int(days)
	}
	return 0
}

// LevelForCarbon computes the level for a carbon total against a threshold
// table. Levels start at 1.
func LevelForCarbon(thresholds []float64, totalCarbonSaved float64) int {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if totalCarbonSaved >= thresholds[i] {
			return i + 1
		}
	}
	return 1
}

// GamificationService maintains per-user aggregate stats, derives the level
// and awards badges. The rule tables are injected as immutable configuration.
type GamificationService struct {
	users      UserStore
	notifier   Notifier
	thresholds []float64
	rules      []BadgeRule
}

// NewGamificationService creates a new instance of GamificationService.
func NewGamificationService(users UserStore, notifier Notifier, thresholds []float64, rules []BadgeRule) *GamificationService {
	return &GamificationService{
		users:      users,
		notifier:   notifier,
		thresholds: thresholds,
		rules:      rules,
	}
}

// ApplyStatsDelta additively applies the delta to the user aggregate,
// recomputes the level, and re-evaluates badges when carbon was added.
// A missing user is fatal here, unlike in the badge path.
func (s *GamificationService) ApplyStatsDelta(ctx context.Context, userID primitive.ObjectID, delta StatsDelta) (*models.User, error) {
	user, err := s.users.IncrementStats(ctx, userID, delta.CarbonDelta, delta.CommitmentsDelta, delta.MilestonesDelta)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user stats: %v", err)
	}

	level := LevelForCarbon(s.thresholds, user.TotalCarbonSaved)
	if level != user.Level {
		if err := s.users.SetLevel(ctx, userID, level); err != nil {
			return nil, fmt.Errorf("failed to persist user level: %v", err)
		}
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID.Hex(),
			"level":   level,
		}).Info("User level changed")
		user.Level = level
	}

	if delta.CarbonDelta > 0 {
		if _, err := s.EvaluateBadges(ctx, userID, EventProgressUpdate, nil); err != nil {
			logger.Log.WithError(err).Warn("Badge evaluation after stats delta failed")
		}
	}

	return user, nil
}

// EvaluateBadges runs the ordered rule set against the user's current
// aggregate and already-held badges, awards whatever newly fired, and emits a
// notification per new badge. A missing user yields no badges, not an error.
func (s *GamificationService) EvaluateBadges(ctx context.Context, userID primitive.ObjectID, event string, data map[string]interface{}) ([]string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil
	}

	held := make(map[string]bool, len(user.Badges))
	for _, b := range user.Badges {
		held[b] = true
	}

	var newBadges []string
	for _, rule := range s.rules {
		if held[rule.ID] || !rule.Condition(user, event, data) {
			continue
		}
		held[rule.ID] = true
		newBadges = append(newBadges, rule.ID)

		s.notifier.Notify(ctx, userID, models.NotificationMilestone,
			fmt.Sprintf("You've earned the %q badge! 🎉", rule.Title),
			map[string]interface{}{"badge": rule.ID},
		)
	}

	if len(newBadges) == 0 {
		return nil, nil
	}

	if err := s.users.AddBadges(ctx, userID, newBadges); err != nil {
		return nil, fmt.Errorf("failed to persist badges: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"badges":  newBadges,
		"event":   event,
	}).Info("Badges awarded")
	return newBadges, nil
}
