package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProgressFixture(t *testing.T) (*ProgressService, *fakeUserStore, *fakeCommitmentStore, *fakeMilestoneStore, *fakeProgressStore, *fakeNotifier, *models.User, *models.Commitment) {
	t.Helper()
	user := &models.User{Level: 1}
	users := newFakeUserStore(user)
	commitment := &models.Commitment{
		UserID:     user.ID,
		Text:       "bike to work",
		Status:     models.CommitmentActive,
		Visibility: "public",
	}
	commitments := newFakeCommitmentStore(commitment)
	milestones := newFakeMilestoneStore()
	progress := &fakeProgressStore{}
	notifier := &fakeNotifier{}
	gamification := newGamification(users, notifier)
	svc := NewProgressService(commitments, milestones, progress, users, gamification, notifier)
	return svc, users, commitments, milestones, progress, notifier, user, commitment
}

func TestAdvanceMilestone_Transitions(t *testing.T) {
	now := time.Now()

	m := &models.Milestone{Status: models.MilestonePending, TargetValue: 3}

	completed := advanceMilestone(m, now)
	assert.False(t, completed)
	assert.Equal(t, models.MilestoneInProgress, m.Status)
	assert.Equal(t, 1.0, m.CurrentValue)

	completed = advanceMilestone(m, now)
	assert.False(t, completed)

	completed = advanceMilestone(m, now)
	assert.True(t, completed)
	assert.Equal(t, models.MilestoneCompleted, m.Status)
	assert.Equal(t, 3.0, m.CurrentValue)
	require.NotNil(t, m.CompletedAt)
}

func TestAdvanceMilestone_CompletedIsTerminal(t *testing.T) {
	completedAt := time.Now().Add(-time.Hour)
	m := &models.Milestone{
		Status:       models.MilestoneCompleted,
		TargetValue:  3,
		CurrentValue: 3,
		CompletedAt:  &completedAt,
	}

	completed := advanceMilestone(m, time.Now())

	assert.False(t, completed)
	assert.Equal(t, 3.0, m.CurrentValue)
	assert.Equal(t, completedAt, *m.CompletedAt)
}

func TestAdvanceMilestone_SingleEventCompletion(t *testing.T) {
	m := &models.Milestone{Status: models.MilestonePending, TargetValue: 1}

	completed := advanceMilestone(m, time.Now())

	assert.True(t, completed)
	assert.Equal(t, models.MilestoneCompleted, m.Status)
}

func TestRecordProgress_AppendsLedgerAndStats(t *testing.T) {
	svc, users, commitments, _, progress, _, user, commitment := newProgressFixture(t)

	result, err := svc.RecordProgress(context.Background(), commitment.ID, user.ID, "5 km", "biked today", 2.5)
	require.NoError(t, err)

	require.Len(t, progress.updates, 1)
	assert.Equal(t, "5 km", progress.updates[0].Amount)
	assert.Equal(t, 2.5, progress.updates[0].DeltaCarbonSaved)
	assert.Equal(t, 2.5, commitments.commitments[commitment.ID].ActualCarbonSaved)
	assert.Equal(t, 2.5, users.users[user.ID].TotalCarbonSaved)
	assert.Equal(t, 2.5, result.ActualCarbonSaved)
}

func TestRecordProgress_NonOwnerRejected(t *testing.T) {
	svc, users, commitments, _, progress, _, _, commitment := newProgressFixture(t)

	stranger := primitive.NewObjectID()
	_, err := svc.RecordProgress(context.Background(), commitment.ID, stranger, "1", "", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
	// Rejection happens before any side effect.
	assert.Empty(t, progress.updates)
	assert.Equal(t, 0.0, commitments.commitments[commitment.ID].ActualCarbonSaved)
	for _, u := range users.users {
		assert.Equal(t, 0.0, u.TotalCarbonSaved)
	}
}

func TestRecordProgress_UnknownCommitment(t *testing.T) {
	svc, _, _, _, _, _, user, _ := newProgressFixture(t)

	_, err := svc.RecordProgress(context.Background(), primitive.NewObjectID(), user.ID, "1", "", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordProgress_NegativeCarbonClamped(t *testing.T) {
	svc, users, commitments, _, _, _, user, commitment := newProgressFixture(t)

	result, err := svc.RecordProgress(context.Background(), commitment.ID, user.ID, "1", "", -4)
	require.NoError(t, err)

	assert.Equal(t, 0.0, commitments.commitments[commitment.ID].ActualCarbonSaved)
	assert.Equal(t, 0.0, users.users[user.ID].TotalCarbonSaved)
	assert.Equal(t, 0.0, result.ActualCarbonSaved)
}

func TestRecordProgress_AdvancesOpenMilestones(t *testing.T) {
	svc, _, _, milestones, _, _, user, commitment := newProgressFixture(t)

	open := &models.Milestone{
		ID:           primitive.NewObjectID(),
		CommitmentID: commitment.ID,
		Title:        "First Week",
		TargetValue:  7,
		CurrentValue: 5,
		Status:       models.MilestoneInProgress,
	}
	milestones.milestones[open.ID] = open

	result, err := svc.RecordProgress(context.Background(), commitment.ID, user.ID, "1", "", 1)
	require.NoError(t, err)

	require.Len(t, result.UpdatedMilestones, 1)
	assert.Equal(t, 6.0, result.UpdatedMilestones[0].CurrentValue)
	assert.Equal(t, models.MilestoneInProgress, result.UpdatedMilestones[0].Status)
}

func TestRecordProgress_CompletesMilestone(t *testing.T) {
	svc, users, _, milestones, _, notifier, user, commitment := newProgressFixture(t)

	almostDone := &models.Milestone{
		ID:           primitive.NewObjectID(),
		CommitmentID: commitment.ID,
		Title:        "First Week",
		TargetValue:  7,
		CurrentValue: 6,
		Status:       models.MilestoneInProgress,
	}
	milestones.milestones[almostDone.ID] = almostDone

	result, err := svc.RecordProgress(context.Background(), commitment.ID, user.ID, "1", "", 1)
	require.NoError(t, err)

	require.Len(t, result.UpdatedMilestones, 1)
	completed := result.UpdatedMilestones[0]
	assert.Equal(t, models.MilestoneCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	assert.Equal(t, 1, users.users[user.ID].CompletedMilestones)

	var messages []string
	for _, n := range notifier.sent {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "Congratulations! You've completed the milestone: First Week")
}

func TestRecordProgress_CompletedMilestonesUntouched(t *testing.T) {
	svc, _, _, milestones, _, _, user, commitment := newProgressFixture(t)

	completedAt := time.Now().Add(-24 * time.Hour)
	done := &models.Milestone{
		ID:           primitive.NewObjectID(),
		CommitmentID: commitment.ID,
		Title:        "First Week",
		TargetValue:  7,
		CurrentValue: 7,
		Status:       models.MilestoneCompleted,
		CompletedAt:  &completedAt,
	}
	milestones.milestones[done.ID] = done

	result, err := svc.RecordProgress(context.Background(), commitment.ID, user.ID, "1", "", 1)
	require.NoError(t, err)

	// Completed milestones are excluded from the open set entirely.
	assert.Empty(t, result.UpdatedMilestones)
	assert.Equal(t, 7.0, milestones.milestones[done.ID].CurrentValue)
	assert.Equal(t, completedAt, *milestones.milestones[done.ID].CompletedAt)
}
