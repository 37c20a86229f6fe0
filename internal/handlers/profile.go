package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"tripvote-backend/internal/config"
	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/models"
	"tripvote-backend/internal/utils"
)

// ProfileHandler manages the caller's own user profile
type ProfileHandler struct {
	db  *pgxpool.Pool
	cfg *config.Config
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(db *pgxpool.Pool, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg}
}

// GetProfile returns the current user's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /api/users/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var user models.User
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, username, profile_picture, created_at, updated_at
		   FROM users WHERE id = $1`, userID).Scan(
		&user.ID, &user.Email, &user.Username, &user.ProfilePicture, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, userResponse(user))
}

// UpdateProfile updates the caller's own user row only
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/users/profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	var cur models.User
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, username, profile_picture, password_hash, created_at, updated_at
		   FROM users WHERE id = $1`, userID).Scan(
		&cur.ID, &cur.Email, &cur.Username, &cur.ProfilePicture, &cur.PasswordHash, &cur.CreatedAt, &cur.UpdatedAt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	username := cur.Username
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	profilePicture := cur.ProfilePicture
	if req.ProfilePicture != nil {
		profilePicture = req.ProfilePicture
	}
	passwordHash := cur.PasswordHash
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		passwordHash = string(hashed)
	}

	now := time.Now()
	_, err = h.db.Exec(r.Context(),
		`UPDATE users SET username = $1, profile_picture = $2, password_hash = $3, updated_at = $4 WHERE id = $5`,
		username, profilePicture, passwordHash, now, userID)
	if err != nil {
		slog.Error("profile: update failed", "error", err, "user_id", userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	cur.Username = username
	cur.ProfilePicture = profilePicture
	cur.UpdatedAt = now
	utils.WriteJSONResponse(w, http.StatusOK, userResponse(cur))
}

func userResponse(u models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt:      utils.FormatTimestamp(u.UpdatedAt),
	}
}
