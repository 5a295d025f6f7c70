package services

import (
	"context"
	"errors"
	"testing"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCommitmentFixture(t *testing.T, oracle *fakeOracle) (*CommitmentService, *fakeUserStore, *fakeCommitmentStore, *fakeMilestoneStore, *fakeCommentStore, *fakeNotifier, *models.User) {
	t.Helper()
	user := &models.User{Name: "Alex", Level: 1}
	users := newFakeUserStore(user)
	commitments := newFakeCommitmentStore()
	milestones := newFakeMilestoneStore()
	comments := &fakeCommentStore{}
	notifier := &fakeNotifier{}
	gamification := newGamification(users, notifier)

	var aiSvc *AIService
	if oracle == nil {
		aiSvc = NewAIService(nil)
	} else {
		aiSvc = NewAIService(oracle)
	}

	svc := NewCommitmentService(commitments, milestones, comments, users, aiSvc, gamification, notifier)
	return svc, users, commitments, milestones, comments, notifier, user
}

func TestCreateCommitment_FallbackPipeline(t *testing.T) {
	svc, users, _, _, _, _, user := newCommitmentFixture(t, nil)

	result, err := svc.CreateCommitment(context.Background(), user.ID, CreateCommitmentRequest{
		Text: "I will carry a reusable bottle",
	})
	require.NoError(t, err)

	commitment := result.Commitment
	assert.Equal(t, models.CategoryOther, commitment.Category)
	assert.Equal(t, models.FrequencyOnce, commitment.Frequency)
	assert.Equal(t, "I will carry a reusable bottle", commitment.Summary)
	assert.Equal(t, 1.0, commitment.EstimatedSavings.PerPeriod)
	assert.Equal(t, 1.0, commitment.EstimatedSavings.Total)
	assert.Equal(t, "kg CO2", commitment.EstimatedSavings.Unit)
	assert.Equal(t, models.CommitmentActive, commitment.Status)
	assert.Equal(t, "public", commitment.Visibility)
	assert.Equal(t, "1 month", commitment.Duration)

	require.Len(t, result.Milestones, 3)
	for _, m := range result.Milestones {
		assert.Equal(t, commitment.ID, m.CommitmentID)
		assert.Equal(t, models.MilestonePending, m.Status)
	}
	assert.Equal(t, 7.0, result.Milestones[0].TargetValue)
	assert.Equal(t, 30.0, result.Milestones[1].TargetValue)
	assert.Equal(t, 90.0, result.Milestones[2].TargetValue)

	assert.Equal(t, 1, users.users[user.ID].TotalCommitments)
	assert.Contains(t, users.users[user.ID].Badges, "first_commitment")
}

func TestCreateCommitment_EmptyText(t *testing.T) {
	svc, _, commitments, _, _, _, user := newCommitmentFixture(t, nil)

	_, err := svc.CreateCommitment(context.Background(), user.ID, CreateCommitmentRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Empty(t, commitments.commitments)
}

func TestCreateCommitment_OracleFailureStillSucceeds(t *testing.T) {
	oracle := &fakeOracle{err: errOracleDown}
	svc, _, _, _, _, _, user := newCommitmentFixture(t, oracle)

	result, err := svc.CreateCommitment(context.Background(), user.ID, CreateCommitmentRequest{
		Text: "take the train instead of flying",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CategoryOther, result.Commitment.Category)
	assert.Equal(t, "low", result.CarbonEstimate.Confidence)
	require.Len(t, result.Milestones, 3)
}

func TestGetCommitment_PrivateVisibility(t *testing.T) {
	svc, _, commitments, _, _, _, user := newCommitmentFixture(t, nil)

	private := &models.Commitment{
		ID:         primitive.NewObjectID(),
		UserID:     user.ID,
		Text:       "secret",
		Visibility: "private",
		Status:     models.CommitmentActive,
	}
	commitments.commitments[private.ID] = private

	_, _, err := svc.GetCommitment(context.Background(), private.ID, user.ID)
	assert.NoError(t, err)

	_, _, err = svc.GetCommitment(context.Background(), private.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestGetCommitment_NotFound(t *testing.T) {
	svc, _, _, _, _, _, user := newCommitmentFixture(t, nil)

	_, _, err := svc.GetCommitment(context.Background(), primitive.NewObjectID(), user.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestToggleLike_RoundTrip(t *testing.T) {
	svc, users, commitments, _, _, notifier, owner := newCommitmentFixture(t, nil)

	liker := &models.User{ID: primitive.NewObjectID(), Name: "Sam"}
	users.users[liker.ID] = liker

	commitment := &models.Commitment{
		ID:         primitive.NewObjectID(),
		UserID:     owner.ID,
		Visibility: "public",
		Status:     models.CommitmentActive,
		Likes:      []primitive.ObjectID{},
	}
	commitments.commitments[commitment.ID] = commitment

	liked, count, err := svc.ToggleLike(context.Background(), commitment.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, owner.ID, notifier.sent[0].UserID)
	assert.Equal(t, "Sam liked your commitment", notifier.sent[0].Message)

	liked, count, err = svc.ToggleLike(context.Background(), commitment.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	// Unliking does not notify.
	assert.Len(t, notifier.sent, 1)
}

func TestToggleLike_SelfLikeDoesNotNotify(t *testing.T) {
	svc, _, commitments, _, _, notifier, owner := newCommitmentFixture(t, nil)

	commitment := &models.Commitment{
		ID:     primitive.NewObjectID(),
		UserID: owner.ID,
		Likes:  []primitive.ObjectID{},
	}
	commitments.commitments[commitment.ID] = commitment

	liked, count, err := svc.ToggleLike(context.Background(), commitment.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	assert.Empty(t, notifier.sent)
}

func TestAddComment_NotifiesOwner(t *testing.T) {
	svc, users, commitments, _, _, notifier, owner := newCommitmentFixture(t, nil)

	commenter := &models.User{ID: primitive.NewObjectID(), Name: "Robin"}
	users.users[commenter.ID] = commenter

	commitment := &models.Commitment{
		ID:     primitive.NewObjectID(),
		UserID: owner.ID,
	}
	commitments.commitments[commitment.ID] = commitment

	comment, err := svc.AddComment(context.Background(), commitment.ID, commenter.ID, "great idea!")
	require.NoError(t, err)

	assert.Equal(t, "great idea!", comment.Text)
	assert.Equal(t, 1, commitments.commitments[commitment.ID].CommentCount)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Robin commented on your commitment", notifier.sent[0].Message)
	assert.Equal(t, comment.ID.Hex(), notifier.sent[0].Data["comment_id"])
}

func TestAddComment_EmptyText(t *testing.T) {
	svc, _, _, _, _, _, user := newCommitmentFixture(t, nil)

	_, err := svc.AddComment(context.Background(), primitive.NewObjectID(), user.ID, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestUpdateCommitment_OwnerOnly(t *testing.T) {
	svc, _, commitments, _, _, _, owner := newCommitmentFixture(t, nil)

	commitment := &models.Commitment{
		ID:         primitive.NewObjectID(),
		UserID:     owner.ID,
		Text:       "original",
		Visibility: "public",
	}
	commitments.commitments[commitment.ID] = commitment

	_, err := svc.UpdateCommitment(context.Background(), commitment.ID, primitive.NewObjectID(),
		UpdateCommitmentRequest{Text: "hijacked"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "original", commitments.commitments[commitment.ID].Text)

	updated, err := svc.UpdateCommitment(context.Background(), commitment.ID, owner.ID,
		UpdateCommitmentRequest{Visibility: "private"})
	require.NoError(t, err)
	assert.Equal(t, "private", updated.Visibility)
	assert.Equal(t, "original", updated.Text)
}

func TestDeleteCommitment_Cascades(t *testing.T) {
	svc, _, commitments, milestones, comments, _, owner := newCommitmentFixture(t, nil)

	commitment := &models.Commitment{ID: primitive.NewObjectID(), UserID: owner.ID}
	commitments.commitments[commitment.ID] = commitment

	m := &models.Milestone{ID: primitive.NewObjectID(), CommitmentID: commitment.ID}
	milestones.milestones[m.ID] = m
	comments.comments = []models.Comment{{ID: primitive.NewObjectID(), CommitmentID: commitment.ID}}

	err := svc.DeleteCommitment(context.Background(), commitment.ID, owner.ID)
	require.NoError(t, err)

	assert.Empty(t, commitments.commitments)
	assert.Empty(t, milestones.milestones)
	assert.Empty(t, comments.comments)
}
