package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tripvote-backend/internal/testutil"
)

func TestSetupRoutes(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	mux := SetupRoutes(pool, cfg)

	userID := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")
	token := testutil.AccessToken(t, cfg, userID, "alice@example.com")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "liveness", method: http.MethodGet, path: "/livez", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/readyz", wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/users/login", wantStatus: http.StatusMethodNotAllowed},
		{name: "protected route without token", method: http.MethodGet, path: "/api/trips", wantStatus: http.StatusUnauthorized},
		{name: "protected route with token", method: http.MethodGet, path: "/api/trips", token: token, wantStatus: http.StatusOK},
		{name: "profile with token", method: http.MethodGet, path: "/api/users/profile", token: token, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d, body = %s",
					tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}
