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

// ProgressResult is the bundle returned after recording a progress update.
type ProgressResult struct {
	ProgressUpdate    *models.ProgressUpdate `json:"progress_update"`
	UpdatedMilestones []models.Milestone     `json:"updated_milestones"`
	ActualCarbonSaved float64                `json:"actual_carbon_saved"`
}

// Dashboard aggregates a user's stats for the profile dashboard surface.
type Dashboard struct {
	Stats             DashboardStats             `json:"stats"`
	CarbonHistory     []repository.DailyCarbon   `json:"carbon_history"`
	CategoryBreakdown []repository.CategoryCount `json:"category_breakdown"`
	RecentProgress    []models.ProgressUpdate    `json:"recent_progress"`
}

// DashboardStats is the headline stat block of the dashboard.
type DashboardStats struct {
	TotalCarbonSaved     float64  `json:"total_carbon_saved"`
	Level                int      `json:"level"`
	Badges               []string `json:"badges"`
	ActiveCommitments    int64    `json:"active_commitments"`
	CompletedCommitments int64    `json:"completed_commitments"`
	TotalMilestones      int64    `json:"total_milestones"`
	CompletedMilestones  int64    `json:"completed_milestones"`
}

// ProgressService records progress events, advances milestones and feeds the
// gamification engine.
type ProgressService struct {
	commitments  CommitmentStore
	milestones   MilestoneStore
	progress     ProgressStore
	users        UserStore
	gamification StatsEngine
	notifier     Notifier
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(
	commitments CommitmentStore,
	milestones MilestoneStore,
	progress ProgressStore,
	users UserStore,
	gamification StatsEngine,
	notifier Notifier,
) *ProgressService {
	return &ProgressService{
		commitments:  commitments,
		milestones:   milestones,
		progress:     progress,
		users:        users,
		gamification: gamification,
		notifier:     notifier,
	}
}

// RecordProgress appends an immutable progress event against a commitment,
// grows the commitment's carbon accumulator, updates the owner's stats, and
// advances every open milestone by one. Only the owner may record progress;
// the ownership check precedes all side effects.
func (s *ProgressService) RecordProgress(ctx context.Context, commitmentID, callerID primitive.ObjectID, amount, note string, deltaCarbonSaved float64) (*ProgressResult, error) {
	commitment, err := s.commitments.GetCommitmentByID(ctx, commitmentID)
	if err != nil {
		return nil, fmt.Errorf("commitment %s: %w", commitmentID.Hex(), ErrNotFound)
	}
	if commitment.UserID != callerID {
		return nil, fmt.Errorf("only the owner can record progress: %w", ErrForbidden)
	}

	if deltaCarbonSaved < 0 {
		deltaCarbonSaved = 0
	}

	update, err := s.progress.CreateProgressUpdate(ctx, &models.ProgressUpdate{
		CommitmentID:     commitmentID,
		UserID:           callerID,
		Amount:           amount,
		Note:             note,
		DeltaCarbonSaved: deltaCarbonSaved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %v", err)
	}

	if err := s.commitments.IncrementActualCarbon(ctx, commitmentID, deltaCarbonSaved); err != nil {
		return nil, fmt.Errorf("failed to record progress: %v", err)
	}

	if _, err := s.gamification.ApplyStatsDelta(ctx, callerID, StatsDelta{CarbonDelta: deltaCarbonSaved}); err != nil {
		return nil, fmt.Errorf("failed to record progress: %v", err)
	}

	open, err := s.milestones.GetMilestonesByCommitment(ctx, commitmentID,
		models.MilestonePending, models.MilestoneInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %v", err)
	}

	updated := make([]models.Milestone, 0, len(open))
	for i := range open {
		milestone := &open[i]
		completed := advanceMilestone(milestone, time.Now())

		if err := s.milestones.UpdateMilestone(ctx, milestone); err != nil {
			return nil, fmt.Errorf("failed to record progress: %v", err)
		}

		if completed {
			if _, err := s.gamification.ApplyStatsDelta(ctx, callerID, StatsDelta{MilestonesDelta: 1}); err != nil {
				return nil, fmt.Errorf("failed to record progress: %v", err)
			}
			if _, err := s.gamification.EvaluateBadges(ctx, callerID, EventMilestoneCompleted, nil); err != nil {
				logger.Log.WithError(err).Warn("Badge evaluation after milestone completion failed")
			}

			s.notifier.Notify(ctx, callerID, models.NotificationMilestone,
				fmt.Sprintf("Congratulations! You've completed the milestone: %s", milestone.Title),
				map[string]interface{}{"commitment_id": commitmentID.Hex()},
			)
		}

		updated = append(updated, *milestone)
	}

	logger.Log.WithFields(logrus.Fields{
		"commitment_id": commitmentID.Hex(),
		"user_id":       callerID.Hex(),
		"delta":         deltaCarbonSaved,
		"milestones":    len(updated),
	}).Info("Progress recorded")

	return &ProgressResult{
		ProgressUpdate:    update,
		UpdatedMilestones: updated,
		ActualCarbonSaved: commitment.ActualCarbonSaved + deltaCarbonSaved,
	}, nil
}

// advanceMilestone applies one progress event to a milestone. Advancement is
// driven by the count of events, not by the carbon amount. Transitions are
// strictly one-way; completedAt is written exactly once. Returns whether this
// event completed the milestone.
func advanceMilestone(m *models.Milestone, now time.Time) bool {
	if m.Status == models.MilestoneCompleted {
		return false
	}

	m.CurrentValue++

	if m.CurrentValue >= m.TargetValue {
		m.Status = models.MilestoneCompleted
		if m.CompletedAt == nil {
			completedAt := now
			m.CompletedAt = &completedAt
		}
		return true
	}

	if m.CurrentValue > 0 && m.Status == models.MilestonePending {
		m.Status = models.MilestoneInProgress
	}
	return false
}

// GetProgressUpdates returns the most recent progress events for a commitment.
func (s *ProgressService) GetProgressUpdates(ctx context.Context, commitmentID primitive.ObjectID) ([]models.ProgressUpdate, error) {
	updates, err := s.progress.GetByCommitment(ctx, commitmentID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress updates: %v", err)
	}
	return updates, nil
}

// GetMilestones returns every milestone of a commitment, oldest first.
func (s *ProgressService) GetMilestones(ctx context.Context, commitmentID primitive.ObjectID) ([]models.Milestone, error) {
	milestones, err := s.milestones.GetMilestonesByCommitment(ctx, commitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch milestones: %v", err)
	}
	return milestones, nil
}

// GetDashboard assembles the per-user dashboard aggregate.
func (s *ProgressService) GetDashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}

	active, err := s.commitments.CountUserCommitments(ctx, userID, models.CommitmentActive)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}
	completed, err := s.commitments.CountUserCommitments(ctx, userID, models.CommitmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}

	commitmentIDs, err := s.commitments.GetUserCommitmentIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}

	totalMilestones, err := s.milestones.CountByCommitments(ctx, commitmentIDs, "")
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}
	completedMilestones, err := s.milestones.CountByCommitments(ctx, commitmentIDs, models.MilestoneCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}

	history, err := s.progress.GetCarbonHistory(ctx, userID, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}
	breakdown, err := s.commitments.GetCategoryBreakdown(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}
	recent, err := s.progress.GetRecentByUser(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %v", err)
	}

	return &Dashboard{
		Stats: DashboardStats{
			TotalCarbonSaved:     user.TotalCarbonSaved,
			Level:                user.Level,
			Badges:               user.Badges,
			ActiveCommitments:    active,
			CompletedCommitments: completed,
			TotalMilestones:      totalMilestones,
			CompletedMilestones:  completedMilestones,
		},
		CarbonHistory:     history,
		CategoryBreakdown: breakdown,
		RecentProgress:    recent,
	}, nil
}
