package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"tripvote-backend/internal/config"
	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/middleware"
	"tripvote-backend/internal/models"
	"tripvote-backend/internal/utils"
)

// GoogleAuthHandler handles Google OAuth sign-in.
type GoogleAuthHandler struct {
	db           *pgxpool.Pool
	oauth2Config *oauth2.Config
	cfg          *config.Config
}

func NewGoogleAuthHandler(db *pgxpool.Pool, cfg *config.Config) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		db: db,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleOAuth.ClientID,
			ClientSecret: cfg.GoogleOAuth.ClientSecret,
			RedirectURL:  cfg.GoogleOAuth.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		cfg: cfg,
	}
}

// GoogleLogin starts the Google OAuth flow
// @Summary Google OAuth login
// @Description Get the Google authorization URL to start the OAuth flow
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Authorization URL and state"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.IsGoogleOAuthConfigured() {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Google login is not configured")
		return
	}

	// State parameter for CSRF protection.
	state := uuid.New().String()
	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"state":    state,
	})
}

// GoogleCallback completes the Google OAuth flow
// @Summary Google OAuth callback
// @Description Exchange the Google authorization code for an access/refresh token pair
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string false "State parameter for CSRF protection"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code")
		return
	}

	userInfo, err := h.getGoogleUserInfo(r, token.AccessToken)
	if err != nil {
		slog.Error("google user info fetch failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info from Google")
		return
	}
	userInfo.Email = strings.ToLower(strings.TrimSpace(userInfo.Email))

	var user models.User
	err = h.db.QueryRow(r.Context(),
		`SELECT id, email, username, profile_picture, created_at, updated_at
		 FROM users WHERE email = $1`, userInfo.Email).Scan(
		&user.ID, &user.Email, &user.Username, &user.ProfilePicture,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if !noRows(err) {
			slog.Error("google user lookup failed", "error", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user, err = h.createGoogleUser(r, userInfo)
		if err != nil {
			slog.Error("google user create failed", "error", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email, &h.cfg.JWT)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenPairResponse{
		Access:  access,
		Refresh: refresh,
	})
}

func (h *GoogleAuthHandler) getGoogleUserInfo(r *http.Request, accessToken string) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(r.Context(),
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Picture:  userInfo.Picture,
		Verified: verified,
	}, nil
}

func (h *GoogleAuthHandler) createGoogleUser(r *http.Request, googleUser *dto.GoogleUserInfo) (models.User, error) {
	username := googleUser.Name
	if username == "" {
		username = googleUser.Email
	}
	// Truncate by runes so multi-byte display names stay valid UTF-8.
	if runes := []rune(username); len(runes) > 50 {
		username = string(runes[:50])
	}

	var picture *string
	if googleUser.Picture != "" {
		picture = &googleUser.Picture
	}

	var user models.User
	// Empty password hash blocks password login for OAuth-only accounts.
	err := h.db.QueryRow(r.Context(),
		`INSERT INTO users (id, email, username, password_hash, profile_picture)
		 VALUES ($1, $2, $3, '', $4)
		 RETURNING id, email, username, profile_picture, created_at, updated_at`,
		uuid.New(), googleUser.Email, username, picture).Scan(
		&user.ID, &user.Email, &user.Username, &user.ProfilePicture,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
