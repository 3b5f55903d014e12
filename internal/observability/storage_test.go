package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aboutme/internal/models"
	"aboutme/internal/storage"
	"aboutme/internal/version"
)

func setupTestProvider(t *testing.T) *Provider {
	t.Helper()
	metrics := models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}
	obs := models.ObservabilityConfig{
		ServiceName: "test",
		Tracing: models.TracingConfig{
			Enabled:    true,
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
	}
	provider, err := Setup(metrics, obs, version.GetInfo())
	require.NoError(t, err)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })
	return provider
}

func setupMemoryStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewMemoryStorage(storage.Config{Type: "memory"})
	require.NoError(t, err)
	return s
}

func testProfile(t *testing.T) *models.Profile {
	t.Helper()
	data := models.ProfileData{
		Identity: &models.ProfileIdentity{
			Name: models.ProfileName{First: "Test", Last: "User"},
		},
	}
	return models.NewProfile(models.NewUserID(), "test-user", data, true)
}

func TestNewInstrumentedStorage(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)
	assert.NotNil(t, instrumented)
}

func TestInstrumentedStorage_ProfileOperations(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	ctx := context.Background()

	// SaveProfile
	profile := testProfile(t)
	err = instrumented.SaveProfile(ctx, profile)
	assert.NoError(t, err)

	// GetProfileByID
	result, err := instrumented.GetProfileByID(ctx, profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, profile.ID, result.ID)

	// GetProfileByUsername
	result, err = instrumented.GetProfileByUsername(ctx, "test-user")
	assert.NoError(t, err)
	assert.Equal(t, profile.ID, result.ID)

	// GetProfileByUserID
	result, err = instrumented.GetProfileByUserID(ctx, profile.UserID)
	assert.NoError(t, err)
	assert.Equal(t, profile.ID, result.ID)

	// UsernameExists
	exists, err := instrumented.UsernameExists(ctx, "test-user")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestInstrumentedStorage_UserOperations(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	ctx := context.Background()

	user := &models.User{
		ID:           models.NewUserID(),
		Email:        "test@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	err = instrumented.CreateUser(ctx, user)
	assert.NoError(t, err)

	result, err := instrumented.GetUserByEmail(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.ID)
}

func TestInstrumentedStorage_AccessLogOperations(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	ctx := context.Background()

	profile := testProfile(t)
	require.NoError(t, instrumented.SaveProfile(ctx, profile))

	entry := &models.AccessLogEntry{
		ID:        "log-1",
		ProfileID: profile.ID,
		Endpoint:  "/api/u/test-user",
		CallerIP:  "203.0.113.9",
		CreatedAt: time.Now().UTC(),
	}
	err = instrumented.InsertAccessLog(ctx, entry)
	assert.NoError(t, err)

	stats, err := instrumented.AccessLogStats(ctx, profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCalls)

	recent, err := instrumented.RecentAccessLogs(ctx, profile.ID, 10)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestInstrumentedStorage_ErrorRecording(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	ctx := context.Background()

	// Lookup of a non-existent profile should record an error span
	_, err = instrumented.GetProfileByID(ctx, "non-existent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInstrumentedStorage_Close(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	err = instrumented.Close()
	assert.NoError(t, err)
}

func TestInstrumentedStorage_ImplementsInterface(t *testing.T) {
	_ = setupTestProvider(t)
	inner := setupMemoryStorage(t)

	instrumented, err := NewInstrumentedStorage(inner)
	require.NoError(t, err)

	var _ storage.Storage = instrumented
}
