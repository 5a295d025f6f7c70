package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/config"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	jwtutil "github.com/YeiyoNathnael/Green-Commitment-wall/pkg/jwt"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles HTTP requests related to user accounts.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		log.WithError(err).Error("Failed to register user")
		writeServiceError(w, err, "Failed to register user")
		return
	}

	log.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, createdUser)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMeHandler returns the logged-in user's own account.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		log.WithField("userID", claims.UserID).WithError(err).Warn("User not found")
		writeServiceError(w, err, "Failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetUserHandler returns a user's public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("GetUserHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to GetUserHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.Service.GetUser(r.Context(), requestedID)
	if err != nil {
		log.WithField("userID", requestedID.Hex()).WithError(err).Warn("User not found")
		writeServiceError(w, err, "Failed to fetch user")
		return
	}

	// The full account is only visible to its owner; everyone else gets
	// the public projection.
	if claims.UserID == user.ID.Hex() {
		writeJSON(w, http.StatusOK, user)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// UpdateProfileHandler updates the logged-in user's own profile.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("UpdateProfileHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to UpdateProfileHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedID := mux.Vars(r)["id"]
	if requestedID != claims.UserID {
		log.WithFields(log.Fields{
			"requestedUserID": requestedID,
			"loggedInUserID":  claims.UserID,
		}).Warn("Forbidden profile update attempt")
		http.Error(w, "Forbidden: You can only update your own profile", http.StatusForbidden)
		return
	}

	userID, err := primitive.ObjectIDFromHex(requestedID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode profile update request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": requestedID,
			"error":  err,
		}).Error("Failed to update profile")
		writeServiceError(w, err, "Failed to update profile")
		return
	}

	log.WithField("userID", updated.ID.Hex()).Info("Profile updated successfully")
	writeJSON(w, http.StatusOK, updated)
}
