package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommitmentHandler handles HTTP requests related to commitments: creation,
// the public wall feed, likes and comments.
type CommitmentHandler struct {
	Service *services.CommitmentService
}

// NewCommitmentHandler creates a new instance of CommitmentHandler.
func NewCommitmentHandler(service *services.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{Service: service}
}

// CreateCommitmentHandler handles the creation of a new commitment. The
// response bundles the stored commitment with its interpretation, carbon
// estimate and suggested milestones.
func (h *CommitmentHandler) CreateCommitmentHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("CreateCommitmentHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized attempt to create commitment")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req services.CreateCommitmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode commitment request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.CreateCommitment(r.Context(), userID, req)
	if err != nil {
		log.WithError(err).Error("Failed to create commitment")
		writeServiceError(w, err, "Failed to create commitment")
		return
	}

	log.WithFields(log.Fields{
		"commitmentID": result.Commitment.ID.Hex(),
		"userID":       claims.UserID,
	}).Info("Commitment created successfully")
	writeJSON(w, http.StatusCreated, result)
}

// GetCommitmentHandler fetches a single commitment with its milestones.
func (h *CommitmentHandler) GetCommitmentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	commitment, milestones, err := h.Service.GetCommitment(r.Context(), commitmentID, callerID)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Warn("Failed to fetch commitment")
		writeServiceError(w, err, "Failed to fetch commitment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"commitment": commitment,
		"milestones": milestones,
	})
}

// UpdateCommitmentHandler updates an owned commitment.
func (h *CommitmentHandler) UpdateCommitmentHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("UpdateCommitmentHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req services.UpdateCommitmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode commitment update request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateCommitment(r.Context(), commitmentID, callerID, req)
	if err != nil {
		log.WithFields(log.Fields{
			"commitmentID": commitmentID.Hex(),
			"error":        err,
		}).Warn("Failed to update commitment")
		writeServiceError(w, err, "Failed to update commitment")
		return
	}

	log.WithField("commitmentID", updated.ID.Hex()).Info("Commitment updated successfully")
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCommitmentHandler deletes an owned commitment and everything
// hanging off it.
func (h *CommitmentHandler) DeleteCommitmentHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("DeleteCommitmentHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteCommitment(r.Context(), commitmentID, callerID); err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Warn("Failed to delete commitment")
		writeServiceError(w, err, "Failed to delete commitment")
		return
	}

	log.WithField("commitmentID", commitmentID.Hex()).Info("Commitment deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// GetUserCommitmentsHandler lists a user's commitments. Private commitments
// are only included when the caller asks for their own list.
func (h *CommitmentHandler) GetUserCommitmentsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	status := r.URL.Query().Get("status")
	commitments, err := h.Service.GetUserCommitments(r.Context(), targetID, callerID, status)
	if err != nil {
		log.WithField("userID", targetID.Hex()).WithError(err).Error("Failed to fetch user commitments")
		writeServiceError(w, err, "Failed to fetch commitments")
		return
	}

	writeJSON(w, http.StatusOK, commitments)
}

// ToggleLikeHandler likes or unlikes a commitment for the caller.
func (h *CommitmentHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	liked, likeCount, err := h.Service.ToggleLike(r.Context(), commitmentID, callerID)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Warn("Failed to toggle like")
		writeServiceError(w, err, "Failed to toggle like")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"liked":      liked,
		"like_count": likeCount,
	})
}

// AddCommentHandler adds a comment to a commitment.
func (h *CommitmentHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}
	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode comment request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	comment, err := h.Service.AddComment(r.Context(), commitmentID, callerID, req.Text)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Warn("Failed to add comment")
		writeServiceError(w, err, "Failed to add comment")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// GetCommentsHandler lists a commitment's comments.
func (h *CommitmentHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}

	comments, err := h.Service.GetComments(r.Context(), commitmentID)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Error("Failed to fetch comments")
		writeServiceError(w, err, "Failed to fetch comments")
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// GetWallFeedHandler returns the public commitment wall: filterable,
// searchable and paginated.
func (h *CommitmentHandler) GetWallFeedHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := repository.FeedQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}
	if v := q.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.Since = t
		}
	}
	if v := q.Get("carbon_min"); v != "" {
		query.CarbonMin, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("carbon_max"); v != "" {
		query.CarbonMax, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("page"); v != "" {
		query.Page, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("limit"); v != "" {
		query.Limit, _ = strconv.ParseInt(v, 10, 64)
	}

	commitments, total, err := h.Service.GetWallFeed(r.Context(), query)
	if err != nil {
		log.WithError(err).Error("Failed to fetch wall feed")
		writeServiceError(w, err, "Failed to fetch wall feed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"commitments": commitments,
		"total":       total,
		"page":        query.Page,
		"limit":       query.Limit,
	})
}

// GetTrendingHandler returns the most liked public commitments of the last
// seven days.
func (h *CommitmentHandler) GetTrendingHandler(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	commitments, err := h.Service.GetTrendingCommitments(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch trending commitments")
		writeServiceError(w, err, "Failed to fetch trending commitments")
		return
	}

	writeJSON(w, http.StatusOK, commitments)
}

// GetWallStatsHandler returns aggregate community numbers for the wall.
func (h *CommitmentHandler) GetWallStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetWallStats(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to fetch wall stats")
		writeServiceError(w, err, "Failed to fetch wall stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
