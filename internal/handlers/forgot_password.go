package handlers

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
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

const (
	verificationCodeLength = 6
	verificationCodeTTL    = 3 * time.Minute
)

// ForgotPasswordHandler drives the email-code password reset flow.
type ForgotPasswordHandler struct {
	db    *pgxpool.Pool
	cfg   *config.Config
	email *utils.EmailService
}

func NewForgotPasswordHandler(db *pgxpool.Pool, cfg *config.Config) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		db:    db,
		cfg:   cfg,
		email: utils.NewEmailService(&cfg.Email),
	}
}

// ForgotPassword mails a verification code to the account's email
// @Summary Request password reset
// @Description Send a 6-digit verification code to the account's email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.ForgotPasswordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/users/forgot-password [post]
func (h *ForgotPasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		utils.WriteValidationErrors(w, map[string]string{"email": "This field is required."})
		return
	}

	var userID uuid.UUID
	err := h.db.QueryRow(r.Context(),
		"SELECT id FROM users WHERE email = $1", req.Email).Scan(&userID)
	if err != nil {
		if noRows(err) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "No account found with this email")
			return
		}
		slog.Error("forgot password lookup failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// A still-valid unused code acts as a cooldown against mail flooding.
	var expiresAt time.Time
	err = h.db.QueryRow(r.Context(),
		`SELECT expires_at FROM auth_verifications
		 WHERE user_id = $1 AND used = false AND expires_at > NOW()
		 ORDER BY created_at DESC LIMIT 1`,
		userID).Scan(&expiresAt)
	if err == nil {
		remaining := time.Until(expiresAt)
		utils.WriteErrorResponse(w, http.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting a new code", int(remaining.Seconds())))
		return
	} else if !noRows(err) {
		slog.Error("forgot password cooldown check failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	code, err := generateVerificationCode(verificationCodeLength)
	if err != nil {
		slog.Error("verification code generation failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	expiresAt = time.Now().Add(verificationCodeTTL)
	_, err = h.db.Exec(r.Context(),
		`INSERT INTO auth_verifications (id, user_id, email, code, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, req.Email, code, expiresAt)
	if err != nil {
		slog.Error("verification code insert failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if h.cfg.IsEmailConfigured() {
		if err := h.email.SendVerificationCode(req.Email, code); err != nil {
			slog.Error("verification email send failed", "email", req.Email, "error", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to send verification email")
			return
		}
	} else {
		// Development fallback when SMTP is not configured.
		slog.Info("verification code issued", "email", req.Email, "code", code)
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ForgotPasswordResponse{
		Detail:    "Verification code has been sent to your email",
		Email:     req.Email,
		ExpiresIn: "3 minutes",
	})
}

// VerifyOTP exchanges a mailed code for a short-lived reset token
// @Summary Verify reset code
// @Description Verify the 6-digit code and receive a temporary reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and verification code"
// @Success 200 {object} dto.VerifyOTPResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/verify-otp [post]
func (h *ForgotPasswordHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	errs := map[string]string{}
	if req.Email == "" {
		errs["email"] = "This field is required."
	}
	if req.Code == "" {
		errs["code"] = "This field is required."
	}
	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	var userID uuid.UUID
	err := h.db.QueryRow(r.Context(),
		"SELECT id FROM users WHERE email = $1", req.Email).Scan(&userID)
	if err != nil {
		if noRows(err) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "No account found with this email")
			return
		}
		slog.Error("verify otp lookup failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var (
		storedCode string
		expiresAt  time.Time
		used       bool
	)
	err = h.db.QueryRow(r.Context(),
		`SELECT code, expires_at, used FROM auth_verifications
		 WHERE user_id = $1 AND email = $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID, req.Email).Scan(&storedCode, &expiresAt, &used)
	if err != nil {
		if noRows(err) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "No verification code found")
			return
		}
		slog.Error("verify otp code lookup failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch {
	case used:
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "This verification code has already been used")
		return
	case time.Now().After(expiresAt):
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Verification code has expired. Please request a new one")
		return
	case storedCode != req.Code:
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "The verification code you entered is incorrect")
		return
	}

	resetToken, err := middleware.GenerateResetToken(userID, req.Email, req.Code, &h.cfg.JWT)
	if err != nil {
		slog.Error("reset token generation failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyOTPResponse{
		Detail:     "Code verified successfully",
		ResetToken: resetToken,
		ExpiresIn:  "10 minutes",
	})
}

// ResetPassword sets a new password using a verified reset token
// @Summary Reset password
// @Description Replace the account password using a reset token from verify-otp
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/users/reset-password [post]
func (h *ForgotPasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	errs := map[string]string{}
	if req.ResetToken == "" {
		errs["reset_token"] = "This field is required."
	}
	switch {
	case req.NewPassword == "":
		errs["new_password"] = "This field is required."
	case len(req.NewPassword) < 6:
		errs["new_password"] = "Password must be at least 6 characters."
	}
	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, &h.cfg.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid or expired reset token")
		return
	}

	var (
		verificationID uuid.UUID
		used           bool
		expiresAt      time.Time
	)
	err = h.db.QueryRow(r.Context(),
		`SELECT id, used, expires_at FROM auth_verifications
		 WHERE user_id = $1 AND email = $2 AND code = $3
		 ORDER BY created_at DESC LIMIT 1`,
		claims.UserID, claims.Email, claims.Code).Scan(&verificationID, &used, &expiresAt)
	if err != nil {
		if noRows(err) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "No matching verification found")
			return
		}
		slog.Error("reset password verification lookup failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if used {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "This verification code has already been used")
		return
	}
	if time.Now().After(expiresAt) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Verification code has expired")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Password update and code consumption must land together.
	tx, err := h.db.Begin(r.Context())
	if err != nil {
		slog.Error("reset password transaction begin failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer tx.Rollback(r.Context())

	_, err = tx.Exec(r.Context(),
		"UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2",
		string(hash), claims.UserID)
	if err != nil {
		slog.Error("password update failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_, err = tx.Exec(r.Context(),
		"UPDATE auth_verifications SET used = true WHERE id = $1", verificationID)
	if err != nil {
		slog.Error("verification consume failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		slog.Error("reset password commit failed", "error", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.DetailResponse{
		Detail: "Password has been reset successfully",
	})
}

func generateVerificationCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
