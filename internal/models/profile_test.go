package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchemaVersion(t *testing.T) {
	tests := []struct {
		name      string
		meta      *ProfileMeta
		expectErr string
	}{
		{name: "nil meta", meta: nil},
		{name: "empty version", meta: &ProfileMeta{SchemaVersion: ""}},
		{name: "current version", meta: &ProfileMeta{SchemaVersion: "1.0"}},
		{name: "newer minor is readable", meta: &ProfileMeta{SchemaVersion: "1.5"}},
		{name: "newer major rejected", meta: &ProfileMeta{SchemaVersion: "2.0"}, expectErr: "newer than supported"},
		{name: "garbage version", meta: &ProfileMeta{SchemaVersion: "not-a-version"}, expectErr: "invalid schema_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ProfileData{Meta: tt.meta}
			err := data.CheckSchemaVersion()
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name     string
		identity *ProfileIdentity
		want     string
	}{
		{
			name:     "first and last",
			identity: &ProfileIdentity{Name: ProfileName{First: "Sam", Last: "Woods"}},
			want:     "Sam Woods",
		},
		{
			name:     "with middle",
			identity: &ProfileIdentity{Name: ProfileName{First: "Sam", Middle: "Q", Last: "Woods"}},
			want:     "Sam Q Woods",
		},
		{
			name:     "first only",
			identity: &ProfileIdentity{Name: ProfileName{First: "Sam"}},
			want:     "Sam",
		},
		{
			name: "no identity section",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ProfileData{Identity: tt.identity}
			assert.Equal(t, tt.want, data.FullName())
		})
	}
}

func TestNewProfile(t *testing.T) {
	data := ProfileData{
		Identity: &ProfileIdentity{Name: ProfileName{First: "Sam", Last: "Woods"}},
	}

	profile := NewProfile("user-1", "sam", data, true)

	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "sam", profile.Username)
	assert.True(t, profile.IsPublic)
	assert.Nil(t, profile.APIKey)
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
	assert.False(t, profile.CreatedAt.IsZero())

	// IDs are unique per profile
	other := NewProfile("user-2", "ana", data, false)
	assert.NotEqual(t, profile.ID, other.ID)
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "aboutme_"))
	assert.Len(t, key, len("aboutme_")+32)

	// No padding or unsafe characters in the random part
	random := strings.TrimPrefix(key, "aboutme_")
	assert.NotContains(t, random, "=")
	assert.NotContains(t, random, "+")
	assert.NotContains(t, random, "/")

	second, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, second)
}
