package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	"tripvote-backend/internal/config"
	"tripvote-backend/internal/handlers"
	"tripvote-backend/internal/middleware"
)

// SetupRoutes builds the application mux with all routes registered.
// Method-and-pattern routing keeps the handlers free of dispatch code.
func SetupRoutes(pool *pgxpool.Pool, cfg *config.Config) *http.ServeMux {
	authHandler := handlers.NewAuthHandler(pool, cfg)
	profileHandler := handlers.NewProfileHandler(pool, cfg)
	tripsHandler := handlers.NewTripsHandler(pool)
	activitiesHandler := handlers.NewActivitiesHandler(pool)
	forgotHandler := handlers.NewForgotPasswordHandler(pool, cfg)
	googleHandler := handlers.NewGoogleAuthHandler(pool, cfg)
	healthHandler := handlers.NewHealthHandler(pool)

	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("GET /healthz", healthHandler.HealthCheck)
	mux.HandleFunc("GET /livez", healthHandler.LivenessCheck)
	mux.HandleFunc("GET /readyz", healthHandler.ReadinessCheck)

	// API documentation
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Account lifecycle
	mux.HandleFunc("POST /api/users/register", authHandler.Register)
	mux.HandleFunc("POST /api/users/login", authHandler.Login)
	mux.HandleFunc("POST /api/users/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/users/forgot-password", forgotHandler.ForgotPassword)
	mux.HandleFunc("POST /api/users/verify-otp", forgotHandler.VerifyOTP)
	mux.HandleFunc("POST /api/users/reset-password", forgotHandler.ResetPassword)

	// Google OAuth
	mux.HandleFunc("GET /api/auth/google/login", googleHandler.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", googleHandler.GoogleCallback)

	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(next, &cfg.JWT)
	}

	// Profile
	mux.HandleFunc("GET /api/users/profile", auth(profileHandler.GetProfile))
	mux.HandleFunc("PUT /api/users/profile", auth(profileHandler.UpdateProfile))

	// Trips
	mux.HandleFunc("GET /api/trips", auth(tripsHandler.ListTrips))
	mux.HandleFunc("POST /api/trips", auth(tripsHandler.CreateTrip))
	mux.HandleFunc("POST /api/trips/join", auth(tripsHandler.JoinTrip))
	mux.HandleFunc("GET /api/trips/{trip_id}", auth(tripsHandler.GetTrip))
	mux.HandleFunc("PUT /api/trips/{trip_id}", auth(tripsHandler.UpdateTrip))
	mux.HandleFunc("DELETE /api/trips/{trip_id}", auth(tripsHandler.DeleteTrip))
	mux.HandleFunc("POST /api/trips/{trip_id}/invite", auth(tripsHandler.InviteUser))

	// Activities and votes
	mux.HandleFunc("GET /api/trips/{trip_id}/activities", auth(activitiesHandler.ListActivities))
	mux.HandleFunc("POST /api/trips/{trip_id}/activities", auth(activitiesHandler.CreateActivity))
	mux.HandleFunc("GET /api/trips/{trip_id}/activities/{activity_id}", auth(activitiesHandler.GetActivity))
	mux.HandleFunc("PUT /api/trips/{trip_id}/activities/{activity_id}", auth(activitiesHandler.UpdateActivity))
	mux.HandleFunc("DELETE /api/trips/{trip_id}/activities/{activity_id}", auth(activitiesHandler.DeleteActivity))
	mux.HandleFunc("POST /api/trips/{trip_id}/activities/{activity_id}/vote", auth(activitiesHandler.Vote))

	return mux
}
