package api

import (
	"encoding/json"
	"net/http"
	"time"

	"aboutme/internal/models"
)

// Signup creates an account and issues a session token
// POST /api/auth/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, r, resp)
	h.writeJSONResponse(w, http.StatusCreated, resp)
}

// Login exchanges credentials for a session token
// POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, r, resp)
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// setSessionCookie mirrors the token into an HttpOnly cookie so the profile
// page can recognize the owner in a plain browser visit.
func (h *Handlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token *models.TokenResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
