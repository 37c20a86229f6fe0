package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/testutil"
)

func TestCreateGoogleUserTruncatesLongNameByRunes(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewGoogleAuthHandler(pool, testutil.TestConfig())

	// A 60-rune multi-byte name must be cut on a rune boundary, not a byte
	// one, or the insert fails on invalid UTF-8.
	name := strings.Repeat("ก", 60)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback", nil)

	user, err := handler.createGoogleUser(req, &dto.GoogleUserInfo{
		Email: "thai@example.com",
		Name:  name,
	})
	if err != nil {
		t.Fatalf("createGoogleUser: %v", err)
	}
	if !utf8.ValidString(user.Username) {
		t.Error("stored username is not valid UTF-8")
	}
	if got := len([]rune(user.Username)); got != 50 {
		t.Errorf("username length = %d runes, want 50", got)
	}

	var stored string
	if err := pool.QueryRow(context.Background(),
		`SELECT username FROM users WHERE id = $1`, user.ID).Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored != user.Username {
		t.Errorf("stored username %q differs from returned %q", stored, user.Username)
	}
}
