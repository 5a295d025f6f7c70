package services

import (
	"context"
	"fmt"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService encapsulates account management.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// RegisterUser creates a new account with a zeroed gamification aggregate.
func (s *UserService) RegisterUser(ctx context.Context, email, name, password string) (*models.User, error) {
	if email == "" || name == "" || password == "" {
		return nil, fmt.Errorf("email, name and password are required: %w", ErrInvalid)
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("email already registered: %w", ErrInvalid)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:          email,
		Name:           name,
		HashedPassword: string(hashed),
		Role:           "user",
		Level:          1,
		Badges:         []string{},
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logger.Log.WithField("user_id", created.ID.Hex()).Info("User registered")
	return created, nil
}

// AuthenticateUser verifies credentials and returns the account.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser fetches a user by ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return user, nil
}

// UpdateProfileRequest carries self-editable profile fields.
type UpdateProfileRequest struct {
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	Image      string   `json:"image"`
	Bio        string   `json:"bio"`
	Location   string   `json:"location"`
	FocusAreas []string `json:"focus_areas"`
}

// UpdateProfile applies non-empty profile updates to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateProfileRequest) (*models.User, error) {
	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Username != "" {
		update["username"] = req.Username
	}
	if req.Image != "" {
		update["image"] = req.Image
	}
	if req.Bio != "" {
		update["bio"] = req.Bio
	}
	if req.Location != "" {
		update["location"] = req.Location
	}
	if req.FocusAreas != nil {
		update["focus_areas"] = req.FocusAreas
	}

	if len(update) > 0 {
		if err := s.repo.UpdateProfile(ctx, id, update); err != nil {
			return nil, fmt.Errorf("failed to update profile: %v", err)
		}
	}
	return s.GetUser(ctx, id)
}
