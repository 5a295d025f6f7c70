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

func newGamification(users *fakeUserStore, notifier *fakeNotifier) *GamificationService {
	return NewGamificationService(users, notifier, DefaultLevelThresholds, DefaultBadgeRules())
}

func TestLevelForCarbon(t *testing.T) {
	cases := []struct {
		total float64
		level int
	}{
		{0, 1},
		{9.99, 1},
		{10, 2},
		{15, 2},
		{50, 3},
		{99.5, 3},
		{100, 4},
		{250, 5},
		{10000, 10},
		{250000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForCarbon(DefaultLevelThresholds, tc.total), "total=%v", tc.total)
	}
}

func TestApplyStatsDelta_LevelUp(t *testing.T) {
	user := &models.User{Level: 1, TotalCarbonSaved: 8}
	users := newFakeUserStore(user)
	svc := newGamification(users, &fakeNotifier{})

	updated, err := svc.ApplyStatsDelta(context.Background(), user.ID, StatsDelta{CarbonDelta: 7})
	require.NoError(t, err)

	assert.Equal(t, 15.0, updated.TotalCarbonSaved)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, 2, users.users[user.ID].Level)
}

func TestApplyStatsDelta_OrderIndependent(t *testing.T) {
	// Two users receiving the same deltas in different orders end up with
	// identical aggregates.
	a := &models.User{Level: 1}
	b := &models.User{Level: 1}
	users := newFakeUserStore(a, b)
	svc := newGamification(users, &fakeNotifier{})

	ctx := context.Background()
	_, err := svc.ApplyStatsDelta(ctx, a.ID, StatsDelta{CarbonDelta: 12})
	require.NoError(t, err)
	_, err = svc.ApplyStatsDelta(ctx, a.ID, StatsDelta{CommitmentsDelta: 1})
	require.NoError(t, err)

	_, err = svc.ApplyStatsDelta(ctx, b.ID, StatsDelta{CommitmentsDelta: 1})
	require.NoError(t, err)
	_, err = svc.ApplyStatsDelta(ctx, b.ID, StatsDelta{CarbonDelta: 12})
	require.NoError(t, err)

	assert.Equal(t, users.users[a.ID].TotalCarbonSaved, users.users[b.ID].TotalCarbonSaved)
	assert.Equal(t, users.users[a.ID].TotalCommitments, users.users[b.ID].TotalCommitments)
	assert.Equal(t, users.users[a.ID].Level, users.users[b.ID].Level)
}

func TestApplyStatsDelta_MissingUser(t *testing.T) {
	svc := newGamification(newFakeUserStore(), &fakeNotifier{})

	_, err := svc.ApplyStatsDelta(context.Background(), primitive.NewObjectID(), StatsDelta{CarbonDelta: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEvaluateBadges_FirstCommitment(t *testing.T) {
	user := &models.User{TotalCommitments: 1}
	users := newFakeUserStore(user)
	notifier := &fakeNotifier{}
	svc := newGamification(users, notifier)

	badges, err := svc.EvaluateBadges(context.Background(), user.ID, EventCommitmentCreated, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first_commitment"}, badges)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Message, "First Step")
}

func TestEvaluateBadges_CarbonThreshold(t *testing.T) {
	user := &models.User{TotalCarbonSaved: 12}
	users := newFakeUserStore(user)
	svc := newGamification(users, &fakeNotifier{})

	badges, err := svc.EvaluateBadges(context.Background(), user.ID, EventProgressUpdate, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"carbon_10kg"}, badges)
	assert.Equal(t, []string{"carbon_10kg"}, users.users[user.ID].Badges)
}

func TestEvaluateBadges_AlreadyHeld(t *testing.T) {
	user := &models.User{TotalCarbonSaved: 12, Badges: []string{"carbon_10kg"}}
	users := newFakeUserStore(user)
	notifier := &fakeNotifier{}
	svc := newGamification(users, notifier)

	badges, err := svc.EvaluateBadges(context.Background(), user.ID, EventProgressUpdate, nil)
	require.NoError(t, err)

	assert.Empty(t, badges)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, []string{"carbon_10kg"}, users.users[user.ID].Badges)
}

func TestEvaluateBadges_MultipleAtOnce(t *testing.T) {
	user := &models.User{TotalCommitments: 10, TotalCarbonSaved: 120}
	users := newFakeUserStore(user)
	notifier := &fakeNotifier{}
	svc := newGamification(users, notifier)

	badges, err := svc.EvaluateBadges(context.Background(), user.ID, EventProgressUpdate, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"commitment_5", "commitment_10", "carbon_10kg", "carbon_100kg"}, badges)
	assert.Len(t, notifier.sent, 4)
}

func TestEvaluateBadges_StreakEvent(t *testing.T) {
	user := &models.User{}
	users := newFakeUserStore(user)
	svc := newGamification(users, &fakeNotifier{})

	badges, err := svc.EvaluateBadges(context.Background(), user.ID, EventStreak,
		map[string]interface{}{"days": 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"7_day_streak"}, badges)

	badges, err = svc.EvaluateBadges(context.Background(), user.ID, EventStreak,
		map[string]interface{}{"days": 8})
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestEvaluateBadges_MissingUser(t *testing.T) {
	svc := newGamification(newFakeUserStore(), &fakeNotifier{})

	badges, err := svc.EvaluateBadges(context.Background(), primitive.NewObjectID(), EventProgressUpdate, nil)

	assert.NoError(t, err)
	assert.Nil(t, badges)
}
