package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/models"
	"tripvote-backend/internal/utils"
)

// ActivitiesHandler manages activity and voting endpoints
type ActivitiesHandler struct {
	db *pgxpool.Pool
}

// NewActivitiesHandler creates a new ActivitiesHandler
func NewActivitiesHandler(db *pgxpool.Pool) *ActivitiesHandler {
	return &ActivitiesHandler{db: db}
}

// ListActivities handles GET /api/trips/{trip_id}/activities
// @Summary List a trip's activities
// @Description Ordered by date then time ascending; participant-scoped
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Success 200 {array} dto.ActivityResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities [get]
func (h *ActivitiesHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}

	if !h.requireParticipant(w, r, tripID, userID) {
		return
	}

	resp, err := fetchTripActivities(r.Context(), h.db, tripID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// CreateActivity handles POST /api/trips/{trip_id}/activities
// @Summary Propose an activity
// @Description Any current participant may propose; category defaults to OT
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param payload body dto.CreateActivityRequest true "Activity payload"
// @Success 201 {object} dto.ActivityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities [post]
func (h *ActivitiesHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}

	if !h.requireParticipant(w, r, tripID, userID) {
		return
	}

	var req dto.CreateActivityRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if errs := req.Validate(); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.WriteValidationErrors(w, map[string]string{"date": "Date must be in YYYY-MM-DD format."})
		return
	}

	var clock *string
	if req.Time != nil && *req.Time != "" {
		normalized, err := utils.ParseClock(*req.Time)
		if err != nil {
			utils.WriteValidationErrors(w, map[string]string{"time": "Time must be in HH:MM format."})
			return
		}
		clock = &normalized
	}

	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	activity := models.Activity{
		ID:            uuid.New(),
		TripID:        tripID,
		Title:         req.Title,
		Date:          date,
		Time:          clock,
		Category:      category,
		EstimatedCost: req.EstimatedCost,
		Notes:         notes,
		CreatedBy:     userID,
		CreatedAt:     time.Now(),
	}

	_, err = h.db.Exec(r.Context(),
		`INSERT INTO activities (id, trip_id, title, date, time, category, estimated_cost, notes, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		activity.ID, activity.TripID, activity.Title, activity.Date, activity.Time,
		activity.Category, activity.EstimatedCost, activity.Notes, activity.CreatedBy, activity.CreatedAt)
	if err != nil {
		slog.Error("create activity: insert failed", "error", err, "trip_id", tripID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	resp, err := buildActivityResponse(r.Context(), h.db, activity)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, resp)
}

// GetActivity handles GET /api/trips/{trip_id}/activities/{activity_id}
// @Summary Get one activity with votes and tallies
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param activity_id path string true "Activity ID"
// @Success 200 {object} dto.ActivityResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities/{activity_id} [get]
func (h *ActivitiesHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	activity, err := fetchActivityForParticipant(r.Context(), h.db, tripID, activityID, userID)
	if err != nil {
		h.activityNotFound(w, err)
		return
	}

	resp, err := buildActivityResponse(r.Context(), h.db, activity)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// UpdateActivity handles PUT /api/trips/{trip_id}/activities/{activity_id}
// @Summary Update an activity
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param activity_id path string true "Activity ID"
// @Param payload body dto.UpdateActivityRequest true "Fields to update"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities/{activity_id} [put]
func (h *ActivitiesHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	cur, err := fetchActivityForParticipant(r.Context(), h.db, tripID, activityID, userID)
	if err != nil {
		h.activityNotFound(w, err)
		return
	}

	var req dto.UpdateActivityRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	title := cur.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			utils.WriteValidationErrors(w, map[string]string{"title": "Title cannot be blank."})
			return
		}
	}
	date := cur.Date
	if req.Date != nil {
		date, err = utils.ParseDate(*req.Date)
		if err != nil {
			utils.WriteValidationErrors(w, map[string]string{"date": "Date must be in YYYY-MM-DD format."})
			return
		}
	}
	clock := cur.Time
	if req.Time != nil {
		if *req.Time == "" {
			clock = nil
		} else {
			normalized, err := utils.ParseClock(*req.Time)
			if err != nil {
				utils.WriteValidationErrors(w, map[string]string{"time": "Time must be in HH:MM format."})
				return
			}
			clock = &normalized
		}
	}
	category := cur.Category
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			utils.WriteValidationErrors(w, map[string]string{"category": "Category must be one of AD, FD, ST, OT."})
			return
		}
		category = *req.Category
	}
	estimatedCost := cur.EstimatedCost
	if req.EstimatedCost != nil {
		if *req.EstimatedCost < 0 {
			utils.WriteValidationErrors(w, map[string]string{"estimated_cost": "Cost cannot be negative."})
			return
		}
		estimatedCost = req.EstimatedCost
	}
	notes := cur.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	_, err = h.db.Exec(r.Context(),
		`UPDATE activities
		    SET title = $1, date = $2, time = $3, category = $4, estimated_cost = $5, notes = $6
		  WHERE id = $7`,
		title, date, clock, category, estimatedCost, notes, cur.ID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	cur.Title = title
	cur.Date = date
	cur.Time = clock
	cur.Category = category
	cur.EstimatedCost = estimatedCost
	cur.Notes = notes
	resp, err := buildActivityResponse(r.Context(), h.db, cur)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// DeleteActivity handles DELETE /api/trips/{trip_id}/activities/{activity_id}
// @Summary Delete an activity
// @Description Deletes the activity; its votes cascade
// @Tags activities
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param activity_id path string true "Activity ID"
// @Success 204 "Deleted"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities/{activity_id} [delete]
func (h *ActivitiesHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	activity, err := fetchActivityForParticipant(r.Context(), h.db, tripID, activityID, userID)
	if err != nil {
		h.activityNotFound(w, err)
		return
	}

	if _, err := h.db.Exec(r.Context(), `DELETE FROM activities WHERE id = $1`, activity.ID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to delete activity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /api/trips/{trip_id}/activities/{activity_id}/vote
// @Summary Cast or change a vote on an activity
// @Description Upserts the caller's vote; voting again replaces the prior value
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param activity_id path string true "Activity ID"
// @Param payload body dto.VoteRequest true "true for upvote, false for downvote"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse "Missing vote field"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/activities/{activity_id}/vote [post]
func (h *ActivitiesHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.activityScope(w, r)
	if !ok {
		return
	}
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	activity, err := fetchActivityForParticipant(r.Context(), h.db, tripID, activityID, userID)
	if err != nil {
		h.activityNotFound(w, err)
		return
	}

	var req dto.VoteRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if req.Vote == nil {
		utils.WriteValidationErrors(w, map[string]string{"vote": "This field is required."})
		return
	}

	// Single-statement upsert keyed on (activity_id, user_id); a concurrent
	// double-submit from the same user can never produce two rows
	_, err = h.db.Exec(r.Context(),
		`INSERT INTO activity_votes (id, activity_id, user_id, vote, voted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (activity_id, user_id)
		 DO UPDATE SET vote = EXCLUDED.vote, voted_at = EXCLUDED.voted_at`,
		uuid.New(), activity.ID, userID, *req.Vote, time.Now())
	if err != nil {
		slog.Error("vote: upsert failed", "error", err, "activity_id", activity.ID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.DetailResponse{Detail: "Vote recorded"})
}

// requireParticipant writes the participant-scoped 404 when userID has not
// joined tripID
func (h *ActivitiesHandler) requireParticipant(w http.ResponseWriter, r *http.Request, tripID, userID uuid.UUID) bool {
	ok, err := isParticipant(r.Context(), h.db, tripID, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !ok {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return false
	}
	return true
}

func (h *ActivitiesHandler) activityScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid user context")
		return uuid.Nil, uuid.Nil, false
	}
	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tripID, true
}

func (h *ActivitiesHandler) activityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	activityID, err := uuid.Parse(r.PathValue("activity_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return uuid.Nil, false
	}
	return activityID, true
}

// activityNotFound reports an activity lookup failure; unauthorized access is
// indistinguishable from a missing row
func (h *ActivitiesHandler) activityNotFound(w http.ResponseWriter, err error) {
	if noRows(err) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
}
