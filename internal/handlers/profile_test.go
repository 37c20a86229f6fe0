package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/testutil"
)

func TestGetProfile(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewProfileHandler(pool, testutil.TestConfig())
	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")

	req := authedRequest(t, http.MethodGet, "/api/users/profile", nil, alice, "alice@example.com")
	rec := httptest.NewRecorder()
	handler.GetProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != alice.String() || resp.Username != "alice" || resp.Email != "alice@example.com" {
		t.Errorf("unexpected profile: %+v", resp)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Error("profile response leaks password material")
	}
}

func TestUpdateProfile(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewProfileHandler(pool, testutil.TestConfig())
	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")

	update := func(body dto.UpdateProfileRequest) *httptest.ResponseRecorder {
		req := authedRequest(t, http.MethodPut, "/api/users/profile", body, alice, "alice@example.com")
		rec := httptest.NewRecorder()
		handler.UpdateProfile(rec, req)
		return rec
	}

	t.Run("username and picture", func(t *testing.T) {
		name := "alice-renamed"
		pic := "https://example.com/alice.png"
		rec := update(dto.UpdateProfileRequest{Username: &name, ProfilePicture: &pic})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.UserResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Username != "alice-renamed" || resp.ProfilePicture == nil || *resp.ProfilePicture != pic {
			t.Errorf("unexpected profile: %+v", resp)
		}
		// Email is not an updatable field.
		if resp.Email != "alice@example.com" {
			t.Errorf("email changed: %s", resp.Email)
		}
	})

	t.Run("password change is hashed", func(t *testing.T) {
		newPass := "hunter22"
		rec := update(dto.UpdateProfileRequest{Password: &newPass})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var hash string
		if err := pool.QueryRow(context.Background(),
			`SELECT password_hash FROM users WHERE id = $1`, alice).Scan(&hash); err != nil {
			t.Fatal(err)
		}
		if hash == newPass {
			t.Error("password stored in plaintext")
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPass)) != nil {
			t.Error("stored hash does not match new password")
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		short := "abc"
		rec := update(dto.UpdateProfileRequest{Password: &short})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
	})
}
