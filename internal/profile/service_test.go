package profile

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aboutme/internal/auth"
	"aboutme/internal/models"
	"aboutme/internal/storage"
)

const testSiteURL = "https://aboutme.example.com"

func newTestService(t *testing.T) (*Service, *storage.MemoryStorage) {
	t.Helper()
	store, err := storage.NewMemoryStorage(storage.Config{})
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(store, sessions, testSiteURL), store
}

func seedProfile(t *testing.T, store *storage.MemoryStorage, username string, isPublic bool, apiKey string) *models.Profile {
	t.Helper()
	data := models.ProfileData{
		Identity: &models.ProfileIdentity{
			Name: models.ProfileName{First: "Sam", Last: "Woods"},
		},
		Contact: &models.ProfileContact{
			Visibility: models.ContactVisibilityPrivate,
			Emails:     map[string]string{"personal": "sam@example.com"},
		},
	}
	p := models.NewProfile(models.NewUserID(), username, data, isPublic)
	if apiKey != "" {
		p.APIKey = &apiKey
	}
	require.NoError(t, store.SaveProfile(context.Background(), p))
	return p
}

func assertServiceError(t *testing.T, err error, wantStatus int) *ServiceError {
	t.Helper()
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, wantStatus, svcErr.StatusCode)
	return svcErr
}

func TestCheckUsername(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedProfile(t, store, "taken", true, "")

	tests := []struct {
		name          string
		input         string
		wantAvailable bool
		wantError     bool
	}{
		{name: "available", input: "sam", wantAvailable: true},
		{name: "normalized before lookup", input: "  TAKEN  ", wantAvailable: false},
		{name: "too short", input: "ab", wantError: true},
		{name: "reserved", input: "admin", wantError: true},
		{name: "bad charset", input: "sam!", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.CheckUsername(ctx, tt.input)
			require.NoError(t, err)
			if tt.wantError {
				assert.False(t, resp.Available)
				assert.NotEmpty(t, resp.Error)
				return
			}
			assert.Equal(t, tt.wantAvailable, resp.Available)
			assert.Empty(t, resp.Error)
		})
	}
}

func TestFetchJSON_PublicProfile(t *testing.T) {
	svc, store := newTestService(t)
	seedProfile(t, store, "sam", true, "")

	resp, cacheControl, err := svc.FetchJSON(context.Background(), "sam", Anonymous(), AccessInfo{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, CacheControlPublic, cacheControl)
	assert.Equal(t, "sam", resp.Username)
	assert.Nil(t, resp.Data.Contact, "private contact is stripped for anonymous readers")
	assert.Equal(t, models.APIVersion, resp.Meta.APIVersion)
	assert.Equal(t, testSiteURL+"/u/sam", resp.Meta.ProfileURL)
	assert.WithinDuration(t, time.Now(), resp.Meta.FetchedAt, 5*time.Second)
}

func TestFetchJSON_NotFoundOnEveryCredentialPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, requester := range []Requester{Anonymous(), WithAPIKey("aboutme_k1"), AsUser("user-1")} {
		_, _, err := svc.FetchJSON(ctx, "ghost", requester, AccessInfo{})
		assertServiceError(t, err, http.StatusNotFound)
	}
}

func TestFetchJSON_PrivateProfileAccessMatrix(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", false, "aboutme_k1")
	ctx := context.Background()

	_, cacheControl, err := svc.FetchJSON(ctx, "sam", Anonymous(), AccessInfo{})
	assertServiceError(t, err, http.StatusForbidden)
	assert.Equal(t, CacheControlPrivate, cacheControl)

	_, _, err = svc.FetchJSON(ctx, "sam", WithAPIKey("aboutme_wrong"), AccessInfo{})
	assertServiceError(t, err, http.StatusUnauthorized)

	resp, cacheControl, err := svc.FetchJSON(ctx, "sam", WithAPIKey("aboutme_k1"), AccessInfo{})
	require.NoError(t, err)
	assert.Equal(t, CacheControlPrivate, cacheControl)
	require.NotNil(t, resp.IsPublic)
	assert.False(t, *resp.IsPublic)

	resp, _, err = svc.FetchJSON(ctx, "sam", AsUser(p.UserID), AccessInfo{})
	require.NoError(t, err)
	require.NotNil(t, resp.Data.Contact, "owner sees private sections")
}

func TestFetchJSON_WritesAccessLog(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", true, "")

	_, _, err := svc.FetchJSON(context.Background(), "sam", Anonymous(), AccessInfo{
		IP:        "10.0.0.1",
		UserAgent: "curl/8.0",
	})
	require.NoError(t, err)

	// The log write is fire-and-forget on its own goroutine.
	assert.Eventually(t, func() bool {
		stats, err := store.AccessLogStats(context.Background(), p.ID)
		return err == nil && stats.TotalCalls == 1
	}, time.Second, 5*time.Millisecond)

	recent, err := store.RecentAccessLogs(context.Background(), p.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "/api/u/sam", recent[0].Endpoint)
	assert.Equal(t, "10.0.0.1", recent[0].CallerIP)
}

func TestFetchPage(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", false, "")
	ctx := context.Background()

	_, err := svc.FetchPage(ctx, "sam", "", AccessInfo{})
	assertServiceError(t, err, http.StatusForbidden)

	view, err := svc.FetchPage(ctx, "sam", p.UserID, AccessInfo{})
	require.NoError(t, err)
	assert.True(t, view.IsOwner)
	assert.False(t, view.IsPublic)
	require.NotNil(t, view.Data.Contact)
}

func TestCreateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := models.NewUserID()

	resp, err := svc.CreateProfile(ctx, userID, &models.CreateProfileRequest{
		Username: "  Sam-Woods  ",
		IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sam-woods", resp.Username, "username is normalized before the claim")
	assert.NotEmpty(t, resp.ID)

	// One profile per account.
	_, err = svc.CreateProfile(ctx, userID, &models.CreateProfileRequest{Username: "other"})
	assertServiceError(t, err, http.StatusConflict)

	// Username uniqueness across accounts.
	_, err = svc.CreateProfile(ctx, models.NewUserID(), &models.CreateProfileRequest{Username: "sam-woods"})
	assertServiceError(t, err, http.StatusConflict)

	// Policy violations are 400s.
	_, err = svc.CreateProfile(ctx, models.NewUserID(), &models.CreateProfileRequest{Username: "admin"})
	svcErr := assertServiceError(t, err, http.StatusBadRequest)
	assert.Equal(t, models.ErrorCodeValidation, svcErr.Code)
}

func TestCreateProfile_SchemaVersionGate(t *testing.T) {
	svc, _ := newTestService(t)

	data := models.ProfileData{
		Meta: &models.ProfileMeta{SchemaVersion: "2.0"},
	}
	_, err := svc.CreateProfile(context.Background(), models.NewUserID(), &models.CreateProfileRequest{
		Username: "future-sam",
		Data:     data,
	})
	svcErr := assertServiceError(t, err, http.StatusBadRequest)
	assert.Contains(t, svcErr.Message, "newer than supported")
}

func TestUpdateProfileData_UsernameImmutable(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", true, "")
	ctx := context.Background()

	newData := models.ProfileData{
		Identity: &models.ProfileIdentity{Bio: "updated bio"},
	}
	resp, err := svc.UpdateProfileData(ctx, p.UserID, &models.UpdateProfileRequest{Data: newData})
	require.NoError(t, err)
	assert.Equal(t, p.ID, resp.ID)

	got, err := store.GetProfileByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", got.Username)
	assert.Equal(t, "updated bio", got.Data.Identity.Bio)
}

func TestUpdateProfileData_NoProfile(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateProfileData(context.Background(), models.NewUserID(), &models.UpdateProfileRequest{})
	assertServiceError(t, err, http.StatusNotFound)
}

func TestSetVisibility(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", false, "")
	ctx := context.Background()

	resp, err := svc.SetVisibility(ctx, p.UserID, true)
	require.NoError(t, err)
	assert.True(t, resp.IsPublic)

	got, err := store.GetProfileByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
}

func TestAPIKeyLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", false, "")
	ctx := context.Background()

	resp, err := svc.RotateAPIKey(ctx, p.UserID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.APIKey, "aboutme_"))
	assert.Len(t, resp.APIKey, len("aboutme_")+32)

	// The stored key gates reads.
	fetched, _, err := svc.FetchJSON(ctx, "sam", WithAPIKey(resp.APIKey), AccessInfo{})
	require.NoError(t, err)
	assert.Equal(t, "sam", fetched.Username)

	// Rotation invalidates the old key.
	rotated, err := svc.RotateAPIKey(ctx, p.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, resp.APIKey, rotated.APIKey)
	_, _, err = svc.FetchJSON(ctx, "sam", WithAPIKey(resp.APIKey), AccessInfo{})
	assertServiceError(t, err, http.StatusUnauthorized)

	// Revocation disables key access entirely.
	_, err = svc.RevokeAPIKey(ctx, p.UserID)
	require.NoError(t, err)
	got, err := store.GetProfileByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.APIKey)
	_, _, err = svc.FetchJSON(ctx, "sam", WithAPIKey(rotated.APIKey), AccessInfo{})
	assertServiceError(t, err, http.StatusUnauthorized)
}

func TestStats(t *testing.T) {
	svc, store := newTestService(t)
	p := seedProfile(t, store, "sam", true, "")
	ctx := context.Background()

	for range 3 {
		_, _, err := svc.FetchJSON(ctx, "sam", Anonymous(), AccessInfo{IP: "10.0.0.1"})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		stats, err := store.AccessLogStats(ctx, p.ID)
		return err == nil && stats.TotalCalls == 3
	}, time.Second, 5*time.Millisecond)

	resp, err := svc.Stats(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalCalls)
	assert.Equal(t, 1, resp.UniqueIPs)
	assert.Len(t, resp.RecentCalls, 3)
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.Signup(ctx, &models.SignupRequest{
		Email:    "Sam@Example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	// Duplicate email.
	_, err = svc.Signup(ctx, &models.SignupRequest{
		Email:    "sam@example.com",
		Password: "hunter2hunter2",
	})
	assertServiceError(t, err, http.StatusConflict)

	// Weak password.
	_, err = svc.Signup(ctx, &models.SignupRequest{Email: "new@example.com", Password: "short"})
	assertServiceError(t, err, http.StatusBadRequest)

	// Login with normalized email.
	login, err := svc.Login(ctx, &models.LoginRequest{
		Email:    "  SAM@example.com ",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	// Wrong password and unknown account are indistinguishable.
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "sam@example.com", Password: "wrong-password"})
	wrongPass := assertServiceError(t, err, http.StatusUnauthorized)
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	ghost := assertServiceError(t, err, http.StatusUnauthorized)
	assert.Equal(t, wrongPass.Message, ghost.Message)
}

func TestLogin_UnknownAccountBurnsHashComparison(t *testing.T) {
	// The unknown-account branch compares against a real digest so its cost
	// matches the wrong-password branch.
	require.NotEmpty(t, dummyPasswordHash)
	assert.True(t, strings.HasPrefix(dummyPasswordHash, "$2"))
	assert.Error(t, auth.VerifyPassword(dummyPasswordHash, "whatever"))
}
