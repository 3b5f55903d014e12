package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"aboutme/internal/models"
)

// Classify maps a request path to its limit class. Auth endpoints get the
// strictest budget, the username probe its anti-enumeration budget, the rest
// of the API the general API budget. Paths outside the API surface are
// unclassified and bypass limiting entirely.
func Classify(path string) (Class, bool) {
	if strings.HasPrefix(path, "/auth/") || strings.HasPrefix(path, "/api/auth/") {
		return ClassAuth, true
	}
	if path == "/api/check-username" {
		return ClassUsernameCheck, true
	}
	if strings.HasPrefix(path, "/api/") {
		return ClassAPI, true
	}
	return "", false
}

// ClientIP derives the client identifier from proxy headers: the first
// X-Forwarded-For element, then X-Real-IP, then a loopback fallback.
//
// This trusts the proxy. Deployed without a reverse proxy that overwrites
// these headers, any client can spoof its identifier and dodge the limiter.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return "127.0.0.1"
}

// Middleware returns HTTP middleware that enforces per-class budgets on
// classified paths. It sets X-RateLimit-* headers on every classified
// response and answers 429 with Retry-After and a JSON body when a budget is
// exhausted.
func Middleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class, ok := Classify(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			result := limiter.Check(ip, class)

			resetSecs := int(math.Ceil(result.ResetIn.Seconds()))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetSecs))

			if result.Limited {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", resetSecs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				json.NewEncoder(w).Encode(models.RateLimitedResponse{
					Error:      "Too many requests",
					Message:    "Please slow down and try again later.",
					RetryAfter: resetSecs,
				})

				slog.Warn("Rate limit exceeded",
					"class", string(class),
					"ip", ip,
					"limit", result.Limit,
					"retry_after", resetSecs,
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
