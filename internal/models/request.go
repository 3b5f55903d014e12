// Package models - Incoming API request types.
package models

import (
	"errors"
	"strings"
)

// CreateProfileRequest is the builder save step: claims a username and stores
// the first version of the profile document. Username is validated and
// reserved by the service before the row is written.
type CreateProfileRequest struct {
	Username string      `json:"username"`
	Data     ProfileData `json:"profile_data"`
	IsPublic bool        `json:"is_public"`
}

// Normalize lower-cases and trims the username. Validation happens in the
// username package; this only canonicalizes the input.
func (r *CreateProfileRequest) Normalize() {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
}

// UpdateProfileRequest replaces the profile document. The username is
// immutable and deliberately absent here.
type UpdateProfileRequest struct {
	Data ProfileData `json:"profile_data"`
}

// VisibilityRequest toggles is_public from the dashboard.
type VisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// SignupRequest creates an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignupRequest) Validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest exchanges credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}
