package services

import (
	"context"
	"errors"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory fakes backing the service tests. They implement just enough of
// the store interfaces to exercise the service logic.

type fakeOracle struct {
	reply string
	err   error
	calls int
}

func (o *fakeOracle) GenerateContent(ctx context.Context, prompt string) (string, error) {
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	return o.reply, nil
}

type sentNotification struct {
	UserID  primitive.ObjectID
	Type    string
	Message string
	Data    map[string]interface{}
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) Notify(ctx context.Context, userID primitive.ObjectID, notifType, message string, data map[string]interface{}) {
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: notifType, Message: message, Data: data})
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	if _, ok := s.users[id]; !ok {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *fakeUserStore) IncrementStats(ctx context.Context, id primitive.ObjectID, carbonDelta float64, commitmentsDelta, milestonesDelta int) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	user.TotalCarbonSaved += carbonDelta
	user.TotalCommitments += commitmentsDelta
	user.CompletedMilestones += milestonesDelta
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) SetLevel(ctx context.Context, id primitive.ObjectID, level int) error {
	user, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Level = level
	return nil
}

func (s *fakeUserStore) AddBadges(ctx context.Context, id primitive.ObjectID, badges []string) error {
	user, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	held := make(map[string]bool, len(user.Badges))
	for _, b := range user.Badges {
		held[b] = true
	}
	for _, b := range badges {
		if !held[b] {
			user.Badges = append(user.Badges, b)
		}
	}
	return nil
}

func (s *fakeUserStore) GetTopUsers(ctx context.Context, sortField string, limit int64) ([]models.User, error) {
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

type fakeCommitmentStore struct {
	commitments map[primitive.ObjectID]*models.Commitment
}

func newFakeCommitmentStore(commitments ...*models.Commitment) *fakeCommitmentStore {
	s := &fakeCommitmentStore{commitments: make(map[primitive.ObjectID]*models.Commitment)}
	for _, c := range commitments {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		s.commitments[c.ID] = c
	}
	return s
}

func (s *fakeCommitmentStore) CreateCommitment(ctx context.Context, commitment *models.Commitment) (*models.Commitment, error) {
	commitment.ID = primitive.NewObjectID()
	commitment.CreatedAt = time.Now()
	commitment.UpdatedAt = time.Now()
	s.commitments[commitment.ID] = commitment
	copied := *commitment
	return &copied, nil
}

func (s *fakeCommitmentStore) GetCommitmentByID(ctx context.Context, id primitive.ObjectID) (*models.Commitment, error) {
	commitment, ok := s.commitments[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *commitment
	return &copied, nil
}

func (s *fakeCommitmentStore) UpdateCommitment(ctx context.Context, id primitive.ObjectID, commitment *models.Commitment) error {
	if _, ok := s.commitments[id]; !ok {
		return mongo.ErrNoDocuments
	}
	commitment.ID = id
	s.commitments[id] = commitment
	return nil
}

func (s *fakeCommitmentStore) DeleteCommitment(ctx context.Context, id primitive.ObjectID) error {
	delete(s.commitments, id)
	return nil
}

func (s *fakeCommitmentStore) IncrementActualCarbon(ctx context.Context, id primitive.ObjectID, delta float64) error {
	commitment, ok := s.commitments[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	commitment.ActualCarbonSaved += delta
	return nil
}

func (s *fakeCommitmentStore) IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error {
	commitment, ok := s.commitments[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	commitment.CommentCount++
	return nil
}

func (s *fakeCommitmentStore) SetLikes(ctx context.Context, id primitive.ObjectID, likes []primitive.ObjectID, likeCount int) error {
	commitment, ok := s.commitments[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	commitment.Likes = likes
	commitment.LikeCount = likeCount
	return nil
}

func (s *fakeCommitmentStore) GetUserCommitments(ctx context.Context, userID primitive.ObjectID, status string, publicOnly bool) ([]models.Commitment, error) {
	var out []models.Commitment
	for _, c := range s.commitments {
		if c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if publicOnly && c.Visibility != "public" {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCommitmentStore) GetFeed(ctx context.Context, q repository.FeedQuery) ([]models.Commitment, int64, error) {
	var out []models.Commitment
	for _, c := range s.commitments {
		if c.Visibility == "public" && c.Status == models.CommitmentActive {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeCommitmentStore) CountUserCommitments(ctx context.Context, userID primitive.ObjectID, status string) (int64, error) {
	commitments, _ := s.GetUserCommitments(ctx, userID, status, false)
	return int64(len(commitments)), nil
}

func (s *fakeCommitmentStore) GetUserCommitmentIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, c := range s.commitments {
		if c.UserID == userID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *fakeCommitmentStore) GetCategoryBreakdown(ctx context.Context, userID primitive.ObjectID) ([]repository.CategoryCount, error) {
	return nil, nil
}

func (s *fakeCommitmentStore) GetWallStats(ctx context.Context) (*repository.WallStats, error) {
	return &repository.WallStats{}, nil
}

type fakeMilestoneStore struct {
	milestones map[primitive.ObjectID]*models.Milestone
}

func newFakeMilestoneStore(milestones ...*models.Milestone) *fakeMilestoneStore {
	s := &fakeMilestoneStore{milestones: make(map[primitive.ObjectID]*models.Milestone)}
	for _, m := range milestones {
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		s.milestones[m.ID] = m
	}
	return s
}

func (s *fakeMilestoneStore) CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error) {
	milestone.ID = primitive.NewObjectID()
	milestone.CreatedAt = time.Now()
	s.milestones[milestone.ID] = milestone
	copied := *milestone
	return &copied, nil
}

func (s *fakeMilestoneStore) GetMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID, statuses ...string) ([]models.Milestone, error) {
	wanted := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	var out []models.Milestone
	for _, m := range s.milestones {
		if m.CommitmentID != commitmentID {
			continue
		}
		if len(wanted) > 0 && !wanted[m.Status] {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *fakeMilestoneStore) UpdateMilestone(ctx context.Context, milestone *models.Milestone) error {
	if _, ok := s.milestones[milestone.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *milestone
	s.milestones[milestone.ID] = &copied
	return nil
}

func (s *fakeMilestoneStore) DeleteMilestonesByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error {
	for id, m := range s.milestones {
		if m.CommitmentID == commitmentID {
			delete(s.milestones, id)
		}
	}
	return nil
}

func (s *fakeMilestoneStore) CountByCommitments(ctx context.Context, commitmentIDs []primitive.ObjectID, status string) (int64, error) {
	var count int64
	for _, m := range s.milestones {
		for _, id := range commitmentIDs {
			if m.CommitmentID == id && (status == "" || m.Status == status) {
				count++
			}
		}
	}
	return count, nil
}

type fakeProgressStore struct {
	updates []models.ProgressUpdate
}

func (s *fakeProgressStore) CreateProgressUpdate(ctx context.Context, update *models.ProgressUpdate) (*models.ProgressUpdate, error) {
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	s.updates = append(s.updates, *update)
	copied := *update
	return &copied, nil
}

func (s *fakeProgressStore) GetByCommitment(ctx context.Context, commitmentID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error) {
	var out []models.ProgressUpdate
	for _, u := range s.updates {
		if u.CommitmentID == commitmentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeProgressStore) GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProgressUpdate, error) {
	var out []models.ProgressUpdate
	for _, u := range s.updates {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeProgressStore) GetCarbonHistory(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]repository.DailyCarbon, error) {
	return nil, nil
}

type fakeCommentStore struct {
	comments []models.Comment
}

func (s *fakeCommentStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	s.comments = append(s.comments, *comment)
	copied := *comment
	return &copied, nil
}

func (s *fakeCommentStore) GetCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.CommitmentID == commitmentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCommentStore) DeleteCommentsByCommitment(ctx context.Context, commitmentID primitive.ObjectID) error {
	var kept []models.Comment
	for _, c := range s.comments {
		if c.CommitmentID != commitmentID {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return nil
}

var errOracleDown = errors.New("oracle unavailable")
