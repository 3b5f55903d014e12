package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"aboutme/internal/auth"
	"aboutme/internal/models"
)

type contextKey string

const sessionClaimsKey contextKey = "session_claims"

// GetSessionClaims extracts the verified session claims from the request
// context, or nil for anonymous requests.
func GetSessionClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(sessionClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// GetSessionUserID returns the authenticated user's ID, or "" when anonymous.
func GetSessionUserID(r *http.Request) string {
	if claims := GetSessionClaims(r); claims != nil {
		return claims.Subject
	}
	return ""
}

// sessionMiddleware enforces a valid session JWT (Authorization bearer or
// session cookie) and stores the claims in the request context.
func sessionMiddleware(sessions *auth.SessionManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sessionToken(r)
			if !ok {
				writeMiddlewareError(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "authentication required")
				return
			}
			claims, err := sessions.Verify(token)
			if err != nil {
				writeMiddlewareError(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// optionalSessionMiddleware attaches session claims when a valid token is
// present and lets everything else through anonymously. Used on the profile
// page so owners see their private profiles.
func optionalSessionMiddleware(sessions *auth.SessionManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := sessionToken(r); ok {
				if claims, err := sessions.Verify(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionToken finds the session JWT in the Authorization header or, failing
// that, the session cookie.
func sessionToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r); ok {
		return token, true
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// securityHeadersMiddleware sets baseline browser protections on every
// response.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		next.ServeHTTP(w, r)
	})
}

// writeMiddlewareError writes a JSON error without a Handlers receiver, for
// use inside middleware.
func writeMiddlewareError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.NewErrorResponse(message, errorCode))
}
