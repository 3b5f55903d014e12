package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"aboutme/internal/auth"
	"aboutme/internal/models"
	"aboutme/internal/profile"
	"aboutme/internal/ratelimit"
	"aboutme/internal/version"
)

// sessionCookieName carries the session JWT for browser page views. API
// clients use the Authorization header instead.
const sessionCookieName = "aboutme_session"

// Handlers contains HTTP handlers for the About Me API
type Handlers struct {
	service  profile.ServiceInterface
	sessions *auth.SessionManager
	config   *models.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(service profile.ServiceInterface, sessions *auth.SessionManager, config *models.Config) *Handlers {
	return &Handlers{
		service:  service,
		sessions: sessions,
		config:   config,
	}
}

// CheckUsername handles username availability checks
// GET /api/check-username?username=<str>
func (h *Handlers) CheckUsername(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CheckUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadRequest
	}
	h.writeJSONResponse(w, status, resp)
}

// GetProfileJSON handles public profile reads
// GET /api/u/{username}, optional Authorization: Bearer <api_key or session JWT>
func (h *Handlers) GetProfileJSON(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	resp, cacheControl, err := h.service.FetchJSON(r.Context(),
		vars["username"], h.requesterFromRequest(r), accessInfoFromRequest(r))

	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// HealthCheck handles health check requests
// GET /health and GET /api/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = version.Version
	response.AddComponent("api", models.StatusHealthy, "API is operational")
	response.AddComponent("storage", models.StatusHealthy, "Storage is operational")

	h.writeJSONResponse(w, http.StatusOK, response)
}

// requesterFromRequest maps the request's credential to a profile requester.
// Profile API keys are recognized by their aboutme_ prefix; any other bearer
// token is tried as a session JWT. An unparseable token is passed through as
// an API key so it fails with the same 401 as any wrong key.
func (h *Handlers) requesterFromRequest(r *http.Request) profile.Requester {
	token, ok := bearerToken(r)
	if !ok {
		return profile.Anonymous()
	}
	if strings.HasPrefix(token, "aboutme_") {
		return profile.WithAPIKey(token)
	}
	if claims, err := h.sessions.Verify(token); err == nil {
		return profile.AsUser(claims.Subject)
	}
	return profile.WithAPIKey(token)
}

// bearerToken extracts the Bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// accessInfoFromRequest collects request attribution for the access log.
func accessInfoFromRequest(r *http.Request) profile.AccessInfo {
	return profile.AccessInfo{
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
	}
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing to do but log it.
		slog.Error("Error encoding JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(message, errorCode))
}

// writeServiceError maps a service error to its HTTP representation. Internal
// errors keep their generic message on the wire and log the cause.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *profile.ServiceError
	if !errors.As(err, &svcErr) {
		slog.Error("Unexpected handler error", "error", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "internal server error")
		return
	}

	if svcErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("Service error", "code", svcErr.Code, "error", svcErr)
	}
	h.writeErrorResponse(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
}
