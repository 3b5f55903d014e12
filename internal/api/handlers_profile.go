package api

import (
	"encoding/json"
	"net/http"

	"aboutme/internal/models"
)

// Owner-facing dashboard handlers. All of these run behind the session
// middleware; the user ID comes from the verified JWT in the request context.

// CreateProfile handles the builder save step
// POST /api/profile
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := GetSessionUserID(r)

	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.CreateProfile(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, resp)
}

// GetOwnProfile returns the caller's profile, including private sections
// GET /api/profile
func (h *Handlers) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetOwnProfile(r.Context(), GetSessionUserID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, p)
}

// UpdateProfile replaces the caller's profile document
// PUT /api/profile
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.UpdateProfileData(r.Context(), GetSessionUserID(r), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// SetVisibility toggles the caller's profile between public and private
// PATCH /api/profile/visibility
func (h *Handlers) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req models.VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.SetVisibility(r.Context(), GetSessionUserID(r), req.IsPublic)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// RotateAPIKey generates a fresh profile API key
// POST /api/profile/api-key
func (h *Handlers) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.RotateAPIKey(r.Context(), GetSessionUserID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, resp)
}

// RevokeAPIKey disables key-gated access to the caller's profile
// DELETE /api/profile/api-key
func (h *Handlers) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.RevokeAPIKey(r.Context(), GetSessionUserID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// Stats returns the caller's access-log aggregates
// GET /api/profile/stats
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Stats(r.Context(), GetSessionUserID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}
