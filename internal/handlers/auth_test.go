package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/middleware"
	"tripvote-backend/internal/testutil"
)

func TestRegister(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewAuthHandler(pool, testutil.TestConfig())

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantField  string
	}{
		{
			name:       "valid registration",
			body:       dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate email",
			body:       dto.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
		},
		{
			name:       "duplicate email different case",
			body:       dto.RegisterRequest{Username: "alice3", Email: "ALICE@example.com", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
		},
		{
			name:       "missing password",
			body:       dto.RegisterRequest{Username: "bob", Email: "bob@example.com"},
			wantStatus: http.StatusBadRequest,
			wantField:  "password",
		},
		{
			name:       "invalid body",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if s, ok := tt.body.(string); ok {
				buf.WriteString(s)
			} else if err := json.NewEncoder(&buf).Encode(tt.body); err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/users/register", &buf)
			rec := httptest.NewRecorder()
			handler.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantField != "" {
				var resp dto.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if _, ok := resp.Errors[tt.wantField]; !ok {
					t.Errorf("expected field error for %q, got %+v", tt.wantField, resp)
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	handler := NewAuthHandler(pool, cfg)

	testutil.CreateTestUser(t, pool, "carol@example.com", "carol", "correct-horse")

	tests := []struct {
		name       string
		body       dto.LoginRequest
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       dto.LoginRequest{Email: "carol@example.com", Password: "correct-horse"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			body:       dto.LoginRequest{Email: "carol@example.com", Password: "battery-staple"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password",
			body:       dto.LoginRequest{Email: "carol@example.com"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK {
				var resp dto.TokenPairResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode token pair: %v", err)
				}
				if resp.Access == "" || resp.Refresh == "" {
					t.Errorf("expected both tokens, got %+v", resp)
				}
				if _, err := middleware.ValidateToken(resp.Access, middleware.TokenTypeAccess, &cfg.JWT); err != nil {
					t.Errorf("access token invalid: %v", err)
				}
			}
		})
	}
}

func TestLoginDoesNotLeakWhichFieldWasWrong(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewAuthHandler(pool, testutil.TestConfig())

	testutil.CreateTestUser(t, pool, "carol@example.com", "carol", "correct-horse")

	responseFor := func(body dto.LoginRequest) string {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		return rec.Body.String()
	}

	unknownEmail := responseFor(dto.LoginRequest{Email: "nobody@example.com", Password: "x-y-z-1"})
	wrongPassword := responseFor(dto.LoginRequest{Email: "carol@example.com", Password: "x-y-z-1"})

	if unknownEmail != wrongPassword {
		t.Errorf("failure responses differ:\n%s\n%s", unknownEmail, wrongPassword)
	}
}

func TestRefresh(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	handler := NewAuthHandler(pool, cfg)

	userID := testutil.CreateTestUser(t, pool, "dana@example.com", "dana", "secret1")
	_, refresh, err := middleware.GenerateTokenPair(userID, "dana@example.com", &cfg.JWT)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	access := testutil.AccessToken(t, cfg, userID, "dana@example.com")

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "valid refresh token", token: refresh, wantStatus: http.StatusOK},
		{name: "access token rejected", token: access, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", token: "not.a.token", wantStatus: http.StatusUnauthorized},
		{name: "missing token", token: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(dto.RefreshRequest{Refresh: tt.token})
			req := httptest.NewRequest(http.MethodPost, "/api/users/refresh", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Refresh(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK {
				var resp dto.AccessTokenResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if _, err := middleware.ValidateToken(resp.Access, middleware.TokenTypeAccess, &cfg.JWT); err != nil {
					t.Errorf("issued access token invalid: %v", err)
				}
			}
		})
	}
}
