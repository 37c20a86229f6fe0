package dto

import "strings"

// ErrorResponse represents an error response body. Detail is always set;
// Errors carries field-level messages for validation failures.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// DetailResponse is a bare acknowledgment body
type DetailResponse struct {
	Detail string `json:"detail"`
}

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns field-level validation errors, empty when valid
func (r *RegisterRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Username) == "" {
		errs["username"] = "This field is required."
	}
	if !validEmail(r.Email) {
		errs["email"] = "Enter a valid email address."
	}
	if len(r.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters."
	}
	return errs
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPairResponse carries the bearer tokens issued at login
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries a refresh token to exchange for a new access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// AccessTokenResponse carries a freshly issued access token
type AccessTokenResponse struct {
	Access string `json:"access"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// UpdateProfileRequest represents fields a user may change on their own profile.
// All fields are optional; only provided ones will be updated.
type UpdateProfileRequest struct {
	Username       *string `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
	Password       *string `json:"password"`
}

// Validate returns field-level validation errors, empty when valid
func (r *UpdateProfileRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		errs["username"] = "Username cannot be blank."
	}
	if r.Password != nil && len(*r.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters."
	}
	return errs
}

// ForgotPasswordRequest asks for a reset code to be mailed
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse acknowledges a mailed reset code
type ForgotPasswordResponse struct {
	Detail    string `json:"detail"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expires_in"`
}

// VerifyOTPRequest exchanges a mailed code for a short-lived reset token
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyOTPResponse carries the reset token issued for a verified code
type VerifyOTPResponse struct {
	Detail     string `json:"detail"`
	ResetToken string `json:"reset_token"`
	ExpiresIn  string `json:"expires_in"`
}

// ResetPasswordRequest sets a new password using a verified reset token
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// GoogleUserInfo holds the profile fields fetched from Google
type GoogleUserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Verified bool   `json:"verified"`
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".") && !strings.ContainsAny(s, " \t")
}
