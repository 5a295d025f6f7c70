package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressHandler handles progress logging, milestone listing and the
// personal impact dashboard.
type ProgressHandler struct {
	Service *services.ProgressService
}

// NewProgressHandler creates a new instance of ProgressHandler.
func NewProgressHandler(service *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: service}
}

// RecordProgressHandler logs a progress update against an owned commitment
// and returns the ripple effects: advanced milestones and the new running
// carbon total.
func (h *ProgressHandler) RecordProgressHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RecordProgressHandler called")
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized attempt to record progress")
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
		Amount      string  `json:"amount"`
		Note        string  `json:"note"`
		CarbonSaved float64 `json:"carbon_saved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode progress request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.RecordProgress(r.Context(), commitmentID, callerID, req.Amount, req.Note, req.CarbonSaved)
	if err != nil {
		log.WithFields(log.Fields{
			"commitmentID": commitmentID.Hex(),
			"error":        err,
		}).Warn("Failed to record progress")
		writeServiceError(w, err, "Failed to record progress")
		return
	}

	log.WithFields(log.Fields{
		"commitmentID": commitmentID.Hex(),
		"userID":       claims.UserID,
	}).Info("Progress recorded successfully")
	writeJSON(w, http.StatusCreated, result)
}

// GetProgressUpdatesHandler lists the progress history of a commitment.
func (h *ProgressHandler) GetProgressUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}

	updates, err := h.Service.GetProgressUpdates(r.Context(), commitmentID)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Error("Failed to fetch progress updates")
		writeServiceError(w, err, "Failed to fetch progress updates")
		return
	}

	writeJSON(w, http.StatusOK, updates)
}

// GetMilestonesHandler lists the milestones of a commitment.
func (h *ProgressHandler) GetMilestonesHandler(w http.ResponseWriter, r *http.Request) {
	commitmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid commitment ID", http.StatusBadRequest)
		return
	}

	milestones, err := h.Service.GetMilestones(r.Context(), commitmentID)
	if err != nil {
		log.WithField("commitmentID", commitmentID.Hex()).WithError(err).Error("Failed to fetch milestones")
		writeServiceError(w, err, "Failed to fetch milestones")
		return
	}

	writeJSON(w, http.StatusOK, milestones)
}

// GetDashboardHandler returns the caller's personal impact dashboard:
// lifetime stats, 30-day carbon history, category breakdown and recent
// activity.
func (h *ProgressHandler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
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

	dashboard, err := h.Service.GetDashboard(r.Context(), userID)
	if err != nil {
		log.WithField("userID", claims.UserID).WithError(err).Error("Failed to build dashboard")
		writeServiceError(w, err, "Failed to build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}
