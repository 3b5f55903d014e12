package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"aboutme/internal/auth"
	"aboutme/internal/models"
	"aboutme/internal/storage"
	"aboutme/internal/username"
)

// recentCallsLimit caps the dashboard's recent-calls list.
const recentCallsLimit = 10

// AccessInfo carries request attribution for the access log.
type AccessInfo struct {
	IP        string
	UserAgent string
	Referer   string
}

// PageView is the renderable result of a profile page fetch.
type PageView struct {
	Username string
	Data     models.ProfileData
	IsPublic bool
	IsOwner  bool
}

// Service implements the profile business logic: public reads through the
// visibility rules, owner CRUD, username availability, account auth, and
// fire-and-forget access logging.
type Service struct {
	storage  storage.Storage
	sessions *auth.SessionManager
	siteURL  string
}

// NewService creates a profile service with the given storage backend,
// session manager, and site base URL used for canonical profile links.
func NewService(storage storage.Storage, sessions *auth.SessionManager, siteURL string) *Service {
	return &Service{
		storage:  storage,
		sessions: sessions,
		siteURL:  siteURL,
	}
}

// CheckUsername reports whether a username is available. Format and policy
// violations are reported in the response body rather than as errors, so the
// handler can return them with a 400 and the public shape {available, error}.
func (s *Service) CheckUsername(ctx context.Context, raw string) (*models.CheckUsernameResponse, error) {
	normalized := username.Normalize(raw)
	if err := username.Validate(raw); err != nil {
		if username.IsValidationError(err) {
			return &models.CheckUsernameResponse{Available: false, Error: err.Error()}, nil
		}
		return nil, NewInternalError("failed to validate username", err)
	}

	exists, err := s.storage.UsernameExists(ctx, normalized)
	if err != nil {
		return nil, NewInternalError("failed to check username availability", err)
	}
	if exists {
		return &models.CheckUsernameResponse{Available: false, Username: normalized}, nil
	}
	return &models.CheckUsernameResponse{Available: true, Username: normalized}, nil
}

// FetchJSON serves the public JSON API read. The returned cache directive
// must be forwarded on the response whether the read was allowed or not.
func (s *Service) FetchJSON(ctx context.Context, rawUsername string, requester Requester, client AccessInfo) (*models.ProfileResponse, string, error) {
	name := username.Normalize(rawUsername)
	p, err := s.storage.GetProfileByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, CacheControlPrivate, NewProfileNotFoundError(name)
		}
		return nil, CacheControlPrivate, NewInternalError("failed to load profile", err)
	}

	decision := Resolve(p, requester)
	if !decision.Allowed {
		return nil, decision.CacheControl, decision.Deny
	}

	s.logAccess(p, "/api/u/"+name, client)

	return &models.ProfileResponse{
		Username: p.Username,
		Data:     decision.Data,
		IsPublic: decision.IsPublic,
		Meta: models.ProfileMetaBlock{
			APIVersion: models.APIVersion,
			FetchedAt:  time.Now().UTC(),
			ProfileURL: fmt.Sprintf("%s/u/%s", s.siteURL, name),
		},
	}, decision.CacheControl, nil
}

// FetchPage serves the HTML profile page. sessionUserID is empty for
// anonymous visitors; the owner sees their profile regardless of visibility.
func (s *Service) FetchPage(ctx context.Context, rawUsername, sessionUserID string, client AccessInfo) (*PageView, error) {
	name := username.Normalize(rawUsername)
	p, err := s.storage.GetProfileByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewProfileNotFoundError(name)
		}
		return nil, NewInternalError("failed to load profile", err)
	}

	requester := Anonymous()
	if sessionUserID != "" {
		requester = AsUser(sessionUserID)
	}
	decision := Resolve(p, requester)
	if !decision.Allowed {
		return nil, decision.Deny
	}

	s.logAccess(p, "/u/"+name, client)

	return &PageView{
		Username: p.Username,
		Data:     decision.Data,
		IsPublic: p.IsPublic,
		IsOwner:  decision.IsOwner,
	}, nil
}

// CreateProfile claims a username and stores the first profile document for
// the account. One profile per account; the username is immutable afterwards.
func (s *Service) CreateProfile(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.CreateProfileResponse, error) {
	req.Normalize()

	if err := username.Validate(req.Username); err != nil {
		if username.IsValidationError(err) {
			return nil, NewValidationError(err.Error(), nil)
		}
		return nil, NewInternalError("failed to validate username", err)
	}
	if err := req.Data.CheckSchemaVersion(); err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	if _, err := s.storage.GetProfileByUserID(ctx, userID); err == nil {
		return nil, NewConflictError("a profile already exists for this account")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, NewInternalError("failed to check existing profile", err)
	}

	p := models.NewProfile(userID, req.Username, req.Data, req.IsPublic)
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, NewConflictError(fmt.Sprintf("username '%s' is already taken", req.Username))
		}
		return nil, NewInternalError("failed to save profile", err)
	}

	return &models.CreateProfileResponse{
		ID:        p.ID,
		Username:  p.Username,
		Message:   "profile created",
		CreatedAt: p.CreatedAt,
	}, nil
}

// GetOwnProfile returns the account's profile, unprojected.
func (s *Service) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.storage.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewNotFoundError("no profile exists for this account")
		}
		return nil, NewInternalError("failed to load profile", err)
	}
	return p, nil
}

// UpdateProfileData replaces the profile document. The username cannot be
// changed through this path.
func (s *Service) UpdateProfileData(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UpdateProfileResponse, error) {
	if err := req.Data.CheckSchemaVersion(); err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	p, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.Data = req.Data
	p.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, NewInternalError("failed to save profile", err)
	}

	return &models.UpdateProfileResponse{
		ID:        p.ID,
		Message:   "profile updated",
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// SetVisibility toggles is_public.
func (s *Service) SetVisibility(ctx context.Context, userID string, isPublic bool) (*models.VisibilityResponse, error) {
	p, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.IsPublic = isPublic
	p.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, NewInternalError("failed to save profile", err)
	}

	return &models.VisibilityResponse{ID: p.ID, IsPublic: p.IsPublic}, nil
}

// RotateAPIKey generates a fresh profile API key, replacing any existing one.
// The raw key is returned once and never readable again.
func (s *Service) RotateAPIKey(ctx context.Context, userID string) (*models.APIKeyResponse, error) {
	p, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := models.GenerateAPIKey()
	if err != nil {
		return nil, NewInternalError("failed to generate API key", err)
	}

	p.APIKey = &key
	p.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, NewInternalError("failed to save profile", err)
	}

	return &models.APIKeyResponse{
		APIKey:  key,
		Message: "API key generated; store it now, it will not be shown again",
	}, nil
}

// RevokeAPIKey disables key-gated access to the profile.
func (s *Service) RevokeAPIKey(ctx context.Context, userID string) (*models.APIKeyResponse, error) {
	p, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.APIKey = nil
	p.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, NewInternalError("failed to save profile", err)
	}

	return &models.APIKeyResponse{Message: "API key revoked"}, nil
}

// Stats returns the dashboard aggregates for the account's profile.
func (s *Service) Stats(ctx context.Context, userID string) (*models.StatsResponse, error) {
	p, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.storage.AccessLogStats(ctx, p.ID)
	if err != nil {
		return nil, NewInternalError("failed to aggregate access logs", err)
	}
	recent, err := s.storage.RecentAccessLogs(ctx, p.ID, recentCallsLimit)
	if err != nil {
		return nil, NewInternalError("failed to load recent access logs", err)
	}

	return &models.StatsResponse{
		TotalCalls:  stats.TotalCalls,
		UniqueIPs:   stats.UniqueIPs,
		RecentCalls: recent,
	}, nil
}

// Signup creates an account and issues a session token.
func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (*models.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		ID:           models.NewUserID(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, NewConflictError("an account with this email already exists")
		}
		return nil, NewInternalError("failed to create account", err)
	}

	return s.issueToken(user)
}

// dummyPasswordHash is compared against on the unknown-account path so login
// timing does not reveal whether an email is registered.
var dummyPasswordHash, _ = auth.HashPassword("aboutme-timing-equalizer")

// Login verifies credentials and issues a session token. A missing account
// and a wrong password produce the same error, and both paths run a hash
// comparison.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	user, err := s.storage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = auth.VerifyPassword(dummyPasswordHash, req.Password)
			return nil, NewUnauthorizedError("invalid email or password")
		}
		return nil, NewInternalError("failed to load account", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}

	return s.issueToken(user)
}

func (s *Service) issueToken(user *models.User) (*models.TokenResponse, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, NewInternalError("failed to issue session token", err)
	}
	return &models.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// logAccess records a profile read without blocking or failing the response.
// The write runs on its own goroutine with a detached context; errors are
// logged at debug and dropped.
func (s *Service) logAccess(p *models.Profile, endpoint string, client AccessInfo) {
	entry := &models.AccessLogEntry{
		ID:        uuid.New().String(),
		ProfileID: p.ID,
		Username:  p.Username,
		Endpoint:  endpoint,
		CallerIP:  client.IP,
		UserAgent: client.UserAgent,
		Referer:   client.Referer,
		CreatedAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.storage.InsertAccessLog(ctx, entry); err != nil {
			slog.Debug("access log write failed", "profile_id", entry.ProfileID, "error", err)
		}
	}()
}
