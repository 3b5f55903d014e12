package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aboutme/internal/models"
)

func TestFactory_CreateMemory(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Create(models.StorageConfig{Type: models.StorageTypeMemory})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &MemoryStorage{}, store)
}

func TestFactory_CreateSQLite(t *testing.T) {
	factory := NewFactory()
	store, err := factory.Create(models.StorageConfig{
		Type:     models.StorageTypeSQLite,
		Database: models.DatabaseConfig{DSN: t.TempDir() + "/test.db"},
	})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &SQLiteStorage{}, store)
}

func TestFactory_CreateUnsupported(t *testing.T) {
	factory := NewFactory()
	_, err := factory.Create(models.StorageConfig{Type: "cassandra"})
	assert.ErrorContains(t, err, "unsupported storage type")
}

func TestFactory_ValidateConfig(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name    string
		config  models.StorageConfig
		wantErr bool
	}{
		{name: "memory needs nothing", config: models.StorageConfig{Type: models.StorageTypeMemory}},
		{
			name:    "postgres without dsn",
			config:  models.StorageConfig{Type: models.StorageTypePostgres},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			config: models.StorageConfig{
				Type:     models.StorageTypePostgres,
				Database: models.DatabaseConfig{DSN: "postgres://localhost/aboutme"},
			},
		},
		{
			name:    "sqlite without dsn",
			config:  models.StorageConfig{Type: models.StorageTypeSQLite},
			wantErr: true,
		},
		{name: "unknown type", config: models.StorageConfig{Type: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := factory.ValidateConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFactory_GetSupportedProviders(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"memory", "postgres", "sqlite"},
		NewFactory().GetSupportedProviders())
}
