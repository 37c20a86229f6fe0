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

// tripCodeRetries bounds the regenerate-and-retry loop for server-generated codes
const tripCodeRetries = 5

// TripsHandler manages trip-related endpoints
type TripsHandler struct {
	db *pgxpool.Pool
}

// NewTripsHandler creates a new TripsHandler
func NewTripsHandler(db *pgxpool.Pool) *TripsHandler {
	return &TripsHandler{db: db}
}

// ListTrips handles GET /api/trips
// @Summary List trips the caller participates in
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TripResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [get]
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid user context")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT t.id, t.name, t.start_date, t.end_date, t.group_budget, t.created_by, t.trip_code, t.created_at
		   FROM trips t
		   JOIN trip_participants tp ON tp.trip_id = t.id
		  WHERE tp.user_id = $1
		  ORDER BY t.created_at DESC`, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	trips := make([]models.Trip, 0)
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.GroupBudget, &t.CreatedBy, &t.TripCode, &t.CreatedAt); err != nil {
			rows.Close()
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		trips = append(trips, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]dto.TripResponse, 0, len(trips))
	for _, t := range trips {
		tr, err := buildTripResponse(r.Context(), h.db, t)
		if err != nil {
			slog.Error("list trips: assemble response failed", "error", err, "trip_id", t.ID)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		resp = append(resp, tr)
	}

	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// CreateTrip handles POST /api/trips
// @Summary Create a new trip
// @Description Creates a trip with a unique shareable join code and adds the caller as first participant
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTripRequest true "Trip payload"
// @Success 201 {object} dto.TripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [post]
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid user context")
		return
	}

	var req dto.CreateTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.TripCode = strings.ToUpper(strings.TrimSpace(req.TripCode))
	if errs := req.Validate(); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		utils.WriteValidationErrors(w, map[string]string{"start_date": "Date must be in YYYY-MM-DD format."})
		return
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		utils.WriteValidationErrors(w, map[string]string{"end_date": "Date must be in YYYY-MM-DD format."})
		return
	}
	if endDate.Before(startDate) {
		utils.WriteValidationErrors(w, map[string]string{"end_date": "End date cannot be before start date."})
		return
	}

	clientCode := req.TripCode != ""

	trip := models.Trip{
		ID:          uuid.New(),
		Name:        req.Name,
		StartDate:   startDate,
		EndDate:     endDate,
		GroupBudget: req.GroupBudget,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}

	// Insert trip and auto-join the creator in one transaction; on a join-code
	// collision a server-generated code is regenerated and retried, a
	// client-supplied one is rejected.
	for attempt := 0; attempt < tripCodeRetries; attempt++ {
		code := req.TripCode
		if !clientCode {
			code, err = utils.GenerateTripCode()
			if err != nil {
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate trip code")
				return
			}
		}
		trip.TripCode = code

		tx, err := h.db.Begin(r.Context())
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		_, err = tx.Exec(r.Context(),
			`INSERT INTO trips (id, name, start_date, end_date, group_budget, created_by, trip_code, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			trip.ID, trip.Name, trip.StartDate, trip.EndDate, trip.GroupBudget, trip.CreatedBy, trip.TripCode, trip.CreatedAt)
		if err != nil {
			tx.Rollback(r.Context())
			if isUniqueViolation(err) {
				if clientCode {
					utils.WriteValidationErrors(w, map[string]string{"trip_code": "This trip code is already in use."})
					return
				}
				continue // regenerate and retry
			}
			slog.Error("create trip: insert failed", "error", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create trip")
			return
		}

		_, err = tx.Exec(r.Context(),
			`INSERT INTO trip_participants (id, trip_id, user_id, joined_at)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New(), trip.ID, userID, trip.CreatedAt)
		if err != nil {
			tx.Rollback(r.Context())
			slog.Error("create trip: auto-join creator failed", "error", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create trip")
			return
		}

		if err := tx.Commit(r.Context()); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		resp, err := buildTripResponse(r.Context(), h.db, trip)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		slog.Info("trip created", "trip_id", trip.ID, "trip_code", trip.TripCode, "created_by", userID)
		utils.WriteJSONResponse(w, http.StatusCreated, resp)
		return
	}

	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to allocate a unique trip code")
}

// GetTrip handles GET /api/trips/{trip_id}
// @Summary Get trip detail with participants and activities
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Success 200 {object} dto.TripResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Trip missing or caller not a participant"
// @Router /api/trips/{trip_id} [get]
func (h *TripsHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripScope(w, r)
	if !ok {
		return
	}

	trip, err := fetchTripForParticipant(r.Context(), h.db, tripID, userID)
	if err != nil {
		h.tripNotFound(w, err)
		return
	}

	resp, err := buildTripResponse(r.Context(), h.db, trip)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// UpdateTrip handles PUT /api/trips/{trip_id}
// @Summary Update a trip
// @Description Any current participant may update; created_by and trip_code are immutable
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param payload body dto.UpdateTripRequest true "Fields to update"
// @Success 200 {object} dto.TripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id} [put]
func (h *TripsHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripScope(w, r)
	if !ok {
		return
	}

	cur, err := fetchTripForParticipant(r.Context(), h.db, tripID, userID)
	if err != nil {
		h.tripNotFound(w, err)
		return
	}

	var req dto.UpdateTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	name := cur.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			utils.WriteValidationErrors(w, map[string]string{"name": "Name cannot be blank."})
			return
		}
	}
	startDate := cur.StartDate
	if req.StartDate != nil {
		startDate, err = utils.ParseDate(*req.StartDate)
		if err != nil {
			utils.WriteValidationErrors(w, map[string]string{"start_date": "Date must be in YYYY-MM-DD format."})
			return
		}
	}
	endDate := cur.EndDate
	if req.EndDate != nil {
		endDate, err = utils.ParseDate(*req.EndDate)
		if err != nil {
			utils.WriteValidationErrors(w, map[string]string{"end_date": "Date must be in YYYY-MM-DD format."})
			return
		}
	}
	if endDate.Before(startDate) {
		utils.WriteValidationErrors(w, map[string]string{"end_date": "End date cannot be before start date."})
		return
	}
	groupBudget := cur.GroupBudget
	if req.GroupBudget != nil {
		if *req.GroupBudget < 0 {
			utils.WriteValidationErrors(w, map[string]string{"group_budget": "Budget cannot be negative."})
			return
		}
		groupBudget = req.GroupBudget
	}

	_, err = h.db.Exec(r.Context(),
		`UPDATE trips SET name = $1, start_date = $2, end_date = $3, group_budget = $4 WHERE id = $5`,
		name, startDate, endDate, groupBudget, cur.ID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update trip")
		return
	}

	cur.Name = name
	cur.StartDate = startDate
	cur.EndDate = endDate
	cur.GroupBudget = groupBudget
	resp, err := buildTripResponse(r.Context(), h.db, cur)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// DeleteTrip handles DELETE /api/trips/{trip_id}
// @Summary Delete a trip
// @Description Deletes the trip; participants, activities and votes cascade
// @Tags trips
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Success 204 "Deleted"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id} [delete]
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripScope(w, r)
	if !ok {
		return
	}

	trip, err := fetchTripForParticipant(r.Context(), h.db, tripID, userID)
	if err != nil {
		h.tripNotFound(w, err)
		return
	}

	if _, err := h.db.Exec(r.Context(), `DELETE FROM trips WHERE id = $1`, trip.ID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	slog.Info("trip deleted", "trip_id", trip.ID, "deleted_by", userID)
	w.WriteHeader(http.StatusNoContent)
}

// InviteUser handles POST /api/trips/{trip_id}/invite
// @Summary Add a participant by email
// @Description Only the trip creator may invite; the user is added immediately
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trip_id path string true "Trip ID"
// @Param payload body dto.InviteUserRequest true "Email of an existing user"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown email or already a participant"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{trip_id}/invite [post]
func (h *TripsHandler) InviteUser(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripScope(w, r)
	if !ok {
		return
	}

	// Inviting is creator-only, a stricter scope than general participant access
	var createdBy uuid.UUID
	err := h.db.QueryRow(r.Context(),
		`SELECT created_by FROM trips WHERE id = $1 AND created_by = $2`,
		tripID, userID).Scan(&createdBy)
	if err != nil {
		h.tripNotFound(w, err)
		return
	}

	var req dto.InviteUserRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		utils.WriteValidationErrors(w, map[string]string{"email": "This field is required."})
		return
	}

	var inviteeID uuid.UUID
	err = h.db.QueryRow(r.Context(), `SELECT id FROM users WHERE email = $1`, req.Email).Scan(&inviteeID)
	if err != nil {
		if noRows(err) {
			utils.WriteValidationErrors(w, map[string]string{"email": "User with this email does not exist."})
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tag, err := h.db.Exec(r.Context(),
		`INSERT INTO trip_participants (id, trip_id, user_id, joined_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (trip_id, user_id) DO NOTHING`,
		uuid.New(), tripID, inviteeID, time.Now())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "User is already a participant")
		return
	}

	slog.Info("participant invited", "trip_id", tripID, "user_id", inviteeID, "invited_by", userID)
	utils.WriteJSONResponse(w, http.StatusCreated, dto.DetailResponse{Detail: "User invited successfully"})
}

// JoinTrip handles POST /api/trips/join
// @Summary Join a trip by its shareable code
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.JoinTripRequest true "Trip code"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse "Missing code or already a participant"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No trip with this code"
// @Router /api/trips/join [post]
func (h *TripsHandler) JoinTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid user context")
		return
	}

	var req dto.JoinTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.TripCode = strings.ToUpper(strings.TrimSpace(req.TripCode))
	if req.TripCode == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Trip code is required")
		return
	}

	var tripID uuid.UUID
	err := h.db.QueryRow(r.Context(), `SELECT id FROM trips WHERE trip_code = $1`, req.TripCode).Scan(&tripID)
	if err != nil {
		if noRows(err) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// ON CONFLICT DO NOTHING makes the double-join race safe; a zero row count
	// means the caller was already in
	tag, err := h.db.Exec(r.Context(),
		`INSERT INTO trip_participants (id, trip_id, user_id, joined_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (trip_id, user_id) DO NOTHING`,
		uuid.New(), tripID, userID, time.Now())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Already a participant")
		return
	}

	slog.Info("trip joined", "trip_id", tripID, "user_id", userID)
	utils.WriteJSONResponse(w, http.StatusCreated, dto.DetailResponse{Detail: "Joined trip successfully"})
}

// tripScope pulls the caller identity and the trip_id path value, writing the
// error response itself when either is unusable
func (h *TripsHandler) tripScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid user context")
		return uuid.Nil, uuid.Nil, false
	}
	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		// An unparseable id can't match any trip; report the same not-found
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tripID, true
}

// tripNotFound reports a trip lookup failure. Unauthorized access deliberately
// gets the same 404 as a missing trip.
func (h *TripsHandler) tripNotFound(w http.ResponseWriter, err error) {
	if noRows(err) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error")
}
