package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aboutme/internal/models"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  port: 8080
  host: "localhost"
  read_timeout: 30s
  write_timeout: 30s
  idle_timeout: 60s
  tls_enabled: false

storage:
  type: "sqlite"
  database:
    dsn: "./data/test.db"
    max_open_conns: 5

security:
  session_secret: "test-secret"
  session_ttl: 12h
  rate_limit:
    enabled: true
    window: 60s
    api_per_window: 100
    username_per_window: 30
    auth_per_window: 10
    general_per_window: 60
    sweep_interval: 300s

logging:
  level: "debug"
  format: "json"
  output: "stdout"

metrics:
  enabled: true
  path: "/metrics"
  port: 9090

site:
  base_url: "https://aboutme.example.com"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := Load(configFile)
	require.NoError(t, err)

	// Verify server config
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, config.Server.IdleTimeout)
	assert.False(t, config.Server.TLSEnabled)

	// Verify storage config
	assert.Equal(t, "sqlite", config.Storage.Type)
	assert.Equal(t, "./data/test.db", config.Storage.Database.DSN)
	assert.Equal(t, 5, config.Storage.Database.MaxOpenConns)

	// Verify security config
	assert.Equal(t, "test-secret", config.Security.SessionSecret)
	assert.Equal(t, 12*time.Hour, config.Security.SessionTTL)

	// Verify rate limiting config
	assert.True(t, config.Security.RateLimit.Enabled)
	assert.Equal(t, 60*time.Second, config.Security.RateLimit.Window)
	assert.Equal(t, 100, config.Security.RateLimit.APIPerWindow)
	assert.Equal(t, 30, config.Security.RateLimit.UsernamePerWindow)
	assert.Equal(t, 10, config.Security.RateLimit.AuthPerWindow)
	assert.Equal(t, 60, config.Security.RateLimit.GeneralPerWindow)
	assert.Equal(t, 300*time.Second, config.Security.RateLimit.SweepInterval)

	// Verify logging config
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)

	// Verify metrics config
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	assert.Equal(t, 9090, config.Metrics.Port)

	// Verify site config
	assert.Equal(t, "https://aboutme.example.com", config.Site.BaseURL)
}

func TestLoad_WithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "minimal_config.yaml")

	// Minimal config file
	configContent := `
server:
  port: 3000
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := Load(configFile)
	require.NoError(t, err)

	// Verify defaults are applied
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)              // Default
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)  // Default
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout) // Default
	assert.Equal(t, 60*time.Second, config.Server.IdleTimeout)  // Default
	assert.False(t, config.Server.TLSEnabled)                   // Default

	// Storage defaults
	assert.Equal(t, models.StorageTypeMemory, config.Storage.Type) // Default

	// Rate limiting defaults
	assert.True(t, config.Security.RateLimit.Enabled)              // Default
	assert.Equal(t, time.Minute, config.Security.RateLimit.Window) // Default
	assert.Equal(t, 100, config.Security.RateLimit.APIPerWindow)   // Default

	// Logging defaults
	assert.Equal(t, "info", config.Logging.Level)    // Default
	assert.Equal(t, "json", config.Logging.Format)   // Default
	assert.Equal(t, "stdout", config.Logging.Output) // Default

	// Metrics defaults
	assert.True(t, config.Metrics.Enabled)           // Default
	assert.Equal(t, "/metrics", config.Metrics.Path) // Default
	assert.Equal(t, 9090, config.Metrics.Port)       // Default

	// Site default
	assert.Equal(t, models.DefaultSiteURL, config.Site.BaseURL) // Default
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("ABOUTME_PORT", "9999")
	t.Setenv("ABOUTME_HOST", "127.0.0.1")
	t.Setenv("ABOUTME_STORAGE_TYPE", "memory")
	t.Setenv("ABOUTME_SESSION_SECRET", "env-secret")
	t.Setenv("ABOUTME_LOG_LEVEL", "warn")
	t.Setenv("ABOUTME_SITE_URL", "https://profiles.example.org")

	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "env_config.yaml")

	// Config file with different values (should be overridden by env vars)
	configContent := `
server:
  port: 8080
  host: "localhost"

storage:
  type: "sqlite"
  database:
    dsn: "./data.db"

security:
  session_secret: "file-secret"

logging:
  level: "info"

site:
  base_url: "https://aboutme.example.com"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := Load(configFile)
	require.NoError(t, err)

	// Environment variables should override config file values
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, "memory", config.Storage.Type)
	assert.Equal(t, "env-secret", config.Security.SessionSecret)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "https://profiles.example.org", config.Site.BaseURL)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/non/existent/path.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "invalid.yaml")

	// Invalid YAML content
	invalidContent := `
server:
  port: 8080
  invalid: [unclosed array
`

	err := os.WriteFile(configFile, []byte(invalidContent), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestLoad_EmptyConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "empty.yaml")

	err := os.WriteFile(configFile, []byte(""), 0644)
	require.NoError(t, err)

	config, err := Load(configFile)
	require.NoError(t, err)

	// Should have all defaults applied
	assert.Equal(t, 8080, config.Server.Port)                      // Default
	assert.Equal(t, "0.0.0.0", config.Server.Host)                 // Default
	assert.Equal(t, models.StorageTypeMemory, config.Storage.Type) // Default
}

func TestLoad_InvalidStorageType(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "bad_storage.yaml")

	configContent := `
storage:
  type: "cassandra"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage type")
}

func TestLoad_DatabaseStorageRequiresDSN(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "no_dsn.yaml")

	configContent := `
storage:
  type: "postgres"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}

func TestLoad_TLSEnabledWithoutCerts(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "tls.yaml")

	configContent := `
server:
  port: 8443
  tls_enabled: true
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TLS cert file is required when TLS is enabled")
}

func TestSaveExample(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "sub", "example.yaml")

	require.NoError(t, SaveExample(configFile))

	config, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, models.StorageTypeSQLite, config.Storage.Type)
	assert.NotEmpty(t, config.Security.SessionSecret)
}
