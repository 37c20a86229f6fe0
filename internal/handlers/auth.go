package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"tripvote-backend/internal/config"
	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/middleware"
	"tripvote-backend/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	db  *pgxpool.Pool
	cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(db *pgxpool.Pool, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with username, email, and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.DetailResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/users/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if errs := req.Validate(); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(r.Context(),
		`INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		uuid.New(), req.Email, req.Username, string(hashedPassword), now)
	if err != nil {
		// The unique index on email is the source of truth; a pre-check would race
		if isUniqueViolation(err) {
			utils.WriteValidationErrors(w, map[string]string{"email": "A user with this email already exists."})
			return
		}
		slog.Error("register: insert user failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.DetailResponse{Detail: "User created successfully"})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password, returning access and refresh tokens
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenPairResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var userID uuid.UUID
	var email, passwordHash string
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(req.Email))).Scan(&userID, &email, &passwordHash)
	if err != nil {
		// Same message whether the email is unknown or the password is wrong
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Email or password is incorrect")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Email or password is incorrect")
		return
	}

	access, refresh, err := middleware.GenerateTokenPair(userID, email, &h.cfg.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenPairResponse{Access: access, Refresh: refresh})
}

// Refresh exchanges a refresh token for a new access token
// @Summary Refresh access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 400 {object} dto.ErrorResponse "Missing refresh token"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Router /api/users/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if req.Refresh == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := middleware.ValidateToken(req.Refresh, middleware.TokenTypeRefresh, &h.cfg.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access, err := middleware.GenerateToken(claims.UserID, claims.Email, middleware.TokenTypeAccess, &h.cfg.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AccessTokenResponse{Access: access})
}
