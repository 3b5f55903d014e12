package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileResponse_MarshalJSON(t *testing.T) {
	isPublic := false
	resp := ProfileResponse{
		Username: "sam",
		Data: ProfileData{
			Identity: &ProfileIdentity{Name: ProfileName{First: "Sam", Last: "Woods"}},
			Location: &ProfileLocation{CurrentCity: "Wellington"},
		},
		IsPublic: &isPublic,
		Meta: ProfileMetaBlock{
			APIVersion: APIVersion,
			FetchedAt:  time.Now().UTC(),
			ProfileURL: "https://aboutme.test/u/sam",
		},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))

	// Document sections are flattened to the top level
	assert.Equal(t, "sam", flat["username"])
	assert.Contains(t, flat, "identity")
	assert.Contains(t, flat, "location")
	assert.NotContains(t, flat, "profile_data")

	assert.Equal(t, false, flat["is_public"])

	meta, ok := flat["_meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, APIVersion, meta["api_version"])
	assert.Equal(t, "https://aboutme.test/u/sam", meta["profile_url"])
}

func TestProfileResponse_MarshalJSON_OmitsOptionalFields(t *testing.T) {
	resp := ProfileResponse{
		Username: "ana",
		Data: ProfileData{
			Identity: &ProfileIdentity{Name: ProfileName{First: "Ana"}},
		},
		Meta: ProfileMetaBlock{APIVersion: APIVersion},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))

	// Absent visibility annotation and absent sections stay absent
	assert.NotContains(t, flat, "is_public")
	assert.NotContains(t, flat, "contact")
	assert.NotContains(t, flat, "experience")
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("profile 'ghost' not found", ErrorCodeNotFound)

	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "profile 'ghost' not found", resp.Message)
	assert.Equal(t, ErrorCodeNotFound, resp.Code)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestHealthCheckResponse_AddComponent(t *testing.T) {
	resp := NewHealthCheckResponse(StatusHealthy)
	resp.AddComponent("storage", StatusHealthy, "")
	resp.AddComponent("api", StatusUnhealthy, "degraded")

	assert.Equal(t, StatusHealthy, resp.Status)
	require.Len(t, resp.Components, 2)
	assert.Equal(t, StatusHealthy, resp.Components["storage"].Status)
	assert.Equal(t, "degraded", resp.Components["api"].Message)
}
