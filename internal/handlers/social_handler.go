package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SocialHandler handles notifications, group challenges and the community
// leaderboard.
type SocialHandler struct {
	Notifications *services.NotificationService
	Challenges    *services.ChallengeService
}

// NewSocialHandler creates a new instance of SocialHandler.
func NewSocialHandler(notifications *services.NotificationService, challenges *services.ChallengeService) *SocialHandler {
	return &SocialHandler{
		Notifications: notifications,
		Challenges:    challenges,
	}
}

// GetNotificationsHandler lists the caller's notifications, newest first.
func (h *SocialHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true"
	var limit int64
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	list, err := h.Notifications.GetUserNotifications(r.Context(), userID, unreadOnly, limit)
	if err != nil {
		log.WithField("userID", claims.UserID).WithError(err).Error("Failed to fetch notifications")
		writeServiceError(w, err, "Failed to fetch notifications")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// MarkNotificationReadHandler marks one of the caller's notifications as read.
func (h *SocialHandler) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	notification, err := h.Notifications.MarkNotificationAsRead(r.Context(), notificationID, userID)
	if err != nil {
		log.WithField("notificationID", notificationID.Hex()).WithError(err).Warn("Failed to mark notification as read")
		writeServiceError(w, err, "Failed to mark notification as read")
		return
	}

	writeJSON(w, http.StatusOK, notification)
}

// CreateChallengeHandler creates a group challenge with the caller as its
// first participant.
func (h *SocialHandler) CreateChallengeHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("CreateChallengeHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req services.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode challenge request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	challenge, err := h.Challenges.CreateChallenge(r.Context(), creatorID, req)
	if err != nil {
		log.WithError(err).Warn("Failed to create challenge")
		writeServiceError(w, err, "Failed to create challenge")
		return
	}

	log.WithField("challengeID", challenge.ID.Hex()).Info("Challenge created successfully")
	writeJSON(w, http.StatusCreated, challenge)
}

// JoinChallengeHandler adds the caller to a challenge's participants.
func (h *SocialHandler) JoinChallengeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	challengeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	challenge, err := h.Challenges.JoinChallenge(r.Context(), challengeID, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"challengeID": challengeID.Hex(),
			"userID":      claims.UserID,
		}).WithError(err).Warn("Failed to join challenge")
		writeServiceError(w, err, "Failed to join challenge")
		return
	}

	log.WithFields(log.Fields{
		"challengeID": challengeID.Hex(),
		"userID":      claims.UserID,
	}).Info("User joined challenge")
	writeJSON(w, http.StatusOK, challenge)
}

// GetChallengeHandler fetches a single challenge.
func (h *SocialHandler) GetChallengeHandler(w http.ResponseWriter, r *http.Request) {
	challengeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}

	challenge, err := h.Challenges.GetChallenge(r.Context(), challengeID)
	if err != nil {
		log.WithField("challengeID", challengeID.Hex()).WithError(err).Warn("Failed to fetch challenge")
		writeServiceError(w, err, "Failed to fetch challenge")
		return
	}

	writeJSON(w, http.StatusOK, challenge)
}

// GetChallengesHandler lists challenges, optionally filtered by status
// (active, upcoming or completed).
func (h *SocialHandler) GetChallengesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int64
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	challenges, err := h.Challenges.GetChallenges(r.Context(), q.Get("status"), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch challenges")
		writeServiceError(w, err, "Failed to fetch challenges")
		return
	}

	writeJSON(w, http.StatusOK, challenges)
}

// AdminNotifyHandler lets an admin push a notice to a specific user
// (moderation messages, announcements).
func (h *SocialHandler) AdminNotifyHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	h.Notifications.Notify(r.Context(), userID, models.NotificationAdmin, req.Message, nil)

	log.WithFields(log.Fields{
		"adminID":  claims.UserID,
		"targetID": req.UserID,
	}).Info("Admin notification sent")
	w.WriteHeader(http.StatusAccepted)
}

// GetLeaderboardHandler returns the top users ranked by carbon saved,
// commitment count or level.
func (h *SocialHandler) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int64
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	leaders, err := h.Challenges.GetLeaderboard(r.Context(), q.Get("metric"), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch leaderboard")
		writeServiceError(w, err, "Failed to fetch leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, leaders)
}
