package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"aboutme/internal/models"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" &&
					r.URL.Path != "/api/health" &&
					r.URL.Path != "/metrics"
			}),
		))
	}
}

// WithRateLimiter adds rate limiting middleware to the router.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(r *mux.Router) {
		r.Use(middleware)
	}
}

// SetupRoutes configures the HTTP routes for the API
func SetupRoutes(handlers *Handlers, config *models.Config, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	for _, opt := range opts {
		opt(router)
	}

	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	router.HandleFunc("/api/health", handlers.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/check-username", handlers.CheckUsername).Methods("GET")
	api.HandleFunc("/u/{username}", handlers.GetProfileJSON).Methods("GET")

	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.HandleFunc("/signup", handlers.Signup).Methods("POST")
	authAPI.HandleFunc("/login", handlers.Login).Methods("POST")

	// Dashboard endpoints require a verified session.
	ownerAPI := api.PathPrefix("/profile").Subrouter()
	ownerAPI.Use(sessionMiddleware(handlers.sessions))
	ownerAPI.HandleFunc("", handlers.CreateProfile).Methods("POST")
	ownerAPI.HandleFunc("", handlers.GetOwnProfile).Methods("GET")
	ownerAPI.HandleFunc("", handlers.UpdateProfile).Methods("PUT")
	ownerAPI.HandleFunc("/visibility", handlers.SetVisibility).Methods("PATCH")
	ownerAPI.HandleFunc("/api-key", handlers.RotateAPIKey).Methods("POST")
	ownerAPI.HandleFunc("/api-key", handlers.RevokeAPIKey).Methods("DELETE")
	ownerAPI.HandleFunc("/stats", handlers.Stats).Methods("GET")

	// Server-rendered profile page; owners are recognized but never required.
	page := router.PathPrefix("/u").Subrouter()
	page.Use(optionalSessionMiddleware(handlers.sessions))
	page.HandleFunc("/{username}", handlers.ProfilePage).Methods("GET")

	router.Use(securityHeadersMiddleware)
	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		errorResp := models.NewErrorResponse("Method not allowed", models.ErrorCodeInvalidRequest)
		json.NewEncoder(w).Encode(errorResp)
	})

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				errorResp := models.NewErrorResponse("Internal server error", models.ErrorCodeInternalError)
				json.NewEncoder(w).Encode(errorResp)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
