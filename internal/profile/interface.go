package profile

import (
	"context"

	"aboutme/internal/models"
)

// ServiceInterface defines the interface for profile service operations
type ServiceInterface interface {
	// CheckUsername reports whether a username is available
	CheckUsername(ctx context.Context, raw string) (*models.CheckUsernameResponse, error)

	// FetchJSON serves the public JSON API read with visibility rules applied
	FetchJSON(ctx context.Context, rawUsername string, requester Requester, client AccessInfo) (*models.ProfileResponse, string, error)

	// FetchPage serves the HTML profile page view
	FetchPage(ctx context.Context, rawUsername, sessionUserID string, client AccessInfo) (*PageView, error)

	// CreateProfile claims a username and stores the first profile document
	CreateProfile(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.CreateProfileResponse, error)

	// GetOwnProfile returns the account's profile, unprojected
	GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error)

	// UpdateProfileData replaces the profile document
	UpdateProfileData(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UpdateProfileResponse, error)

	// SetVisibility toggles is_public
	SetVisibility(ctx context.Context, userID string, isPublic bool) (*models.VisibilityResponse, error)

	// RotateAPIKey generates a fresh profile API key
	RotateAPIKey(ctx context.Context, userID string) (*models.APIKeyResponse, error)

	// RevokeAPIKey disables key-gated access
	RevokeAPIKey(ctx context.Context, userID string) (*models.APIKeyResponse, error)

	// Stats returns the dashboard aggregates for the account's profile
	Stats(ctx context.Context, userID string) (*models.StatsResponse, error)

	// Signup creates an account and issues a session token
	Signup(ctx context.Context, req *models.SignupRequest) (*models.TokenResponse, error)

	// Login verifies credentials and issues a session token
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
