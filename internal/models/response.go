// Package models - API response types and error handling.
// All outgoing response structures share a consistent JSON shape: failures
// always carry an "error" key, optional fields use omitempty, timestamps are
// RFC3339.
package models

import (
	"encoding/json"
	"time"
)

// APIVersion is reported in the _meta block of profile API responses.
const APIVersion = "1.0"

// ProfileMetaBlock annotates a JSON profile response with provenance.
type ProfileMetaBlock struct {
	APIVersion string    `json:"api_version"`
	FetchedAt  time.Time `json:"fetched_at"`
	ProfileURL string    `json:"profile_url"`
}

// ProfileResponse is the JSON-API body for GET /api/u/{username}. Data holds
// the projected profile document; IsPublic is included only for API-key
// requests so key holders can see the profile's actual visibility.
type ProfileResponse struct {
	Username string           `json:"username"`
	Data     ProfileData      `json:"-"`
	IsPublic *bool            `json:"is_public,omitempty"`
	Meta     ProfileMetaBlock `json:"_meta"`
}

// MarshalJSON flattens the profile document into the top level of the
// response, matching the public wire format {username, identity, ..., _meta}.
func (r ProfileResponse) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any)

	raw, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}

	flat["username"] = r.Username
	if r.IsPublic != nil {
		flat["is_public"] = *r.IsPublic
	}
	flat["_meta"] = r.Meta
	return json.Marshal(flat)
}

// CheckUsernameResponse answers GET /api/check-username.
type CheckUsernameResponse struct {
	Available bool   `json:"available"`
	Username  string `json:"username,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CreateProfileResponse confirms a builder save.
type CreateProfileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileResponse confirms a profile_data replacement.
type UpdateProfileResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibilityResponse confirms an is_public toggle.
type VisibilityResponse struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"is_public"`
}

// APIKeyResponse returns a freshly generated profile API key. The raw key is
// only ever returned from this response.
type APIKeyResponse struct {
	APIKey  string `json:"api_key,omitempty"`
	Message string `json:"message"`
}

// StatsResponse is the dashboard aggregate for GET /api/profile/stats.
type StatsResponse struct {
	TotalCalls  int               `json:"total_calls"`
	UniqueIPs   int               `json:"unique_ips"`
	RecentCalls []*AccessLogEntry `json:"recent_calls"`
}

// TokenResponse carries a session JWT from the auth endpoints.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse provides structured error information.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// RateLimitedResponse is the 429 body; RetryAfter mirrors the Retry-After
// header in seconds.
type RateLimitedResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// HealthCheckResponse reports liveness.
type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health status constants.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Error codes: upper-case with underscores, machine-readable, mapped to
// standard HTTP status codes.
const (
	ErrorCodeNotFound       = "NOT_FOUND"           // 404: no such username
	ErrorCodeInvalidRequest = "INVALID_REQUEST"     // 400: malformed request
	ErrorCodeValidation     = "VALIDATION_ERROR"    // 400: username/profile validation failed
	ErrorCodeUnauthorized   = "UNAUTHORIZED"        // 401: missing/invalid credential
	ErrorCodeForbidden      = "FORBIDDEN"           // 403: private profile, requires API key
	ErrorCodeConflict       = "CONFLICT"            // 409: username already taken
	ErrorCodeRateLimited    = "RATE_LIMIT_EXCEEDED" // 429: too many requests
	ErrorCodeInternalError  = "INTERNAL_ERROR"      // 500: opaque upstream failure
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

func (h *HealthCheckResponse) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{
		Status:  status,
		Message: message,
	}
}
