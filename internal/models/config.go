// Package models - Service configuration and operational settings.
// Hierarchical configuration grouped by component (server, storage, security,
// logging, metrics, observability, site) with environment-friendly defaults
// and validation that catches misconfigurations at startup.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// Config is the root configuration structure containing all service settings.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	Security      SecurityConfig      `yaml:"security" json:"security"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
	Site          SiteConfig          `yaml:"site" json:"site"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
}

type StorageConfig struct {
	Type     string         `yaml:"type" json:"type"`
	Database DatabaseConfig `yaml:"database" json:"database"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

type SecurityConfig struct {
	// SessionSecret signs session JWTs (HS256). Required outside tests.
	SessionSecret string `yaml:"session_secret" json:"session_secret"`
	// SessionTTL bounds how long an issued session token is valid.
	SessionTTL time.Duration   `yaml:"session_ttl" json:"session_ttl"`
	RateLimit  RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig holds the per-class fixed-window budgets. Zero values fall
// back to the documented defaults (api=100, username_check=30, auth=10,
// general=60 per 60-second window).
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	Window            time.Duration `yaml:"window" json:"window"`
	APIPerWindow      int           `yaml:"api_per_window" json:"api_per_window"`
	UsernamePerWindow int           `yaml:"username_per_window" json:"username_per_window"`
	AuthPerWindow     int           `yaml:"auth_per_window" json:"auth_per_window"`
	GeneralPerWindow  int           `yaml:"general_per_window" json:"general_per_window"`
	SweepInterval     time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"` // stdout | otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// SiteConfig holds the public-facing base URL used to compose canonical
// profile and API URLs in responses.
type SiteConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// DefaultSiteURL is the fallback when no base URL is configured.
const DefaultSiteURL = "https://aboutme.knileshh.com"

// NewDefaultConfig creates a configuration with sensible defaults: memory
// storage for zero-dependency startup, rate limiting on, structured JSON
// logging, metrics enabled.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Type: StorageTypeMemory,
			Database: DatabaseConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Security: SecurityConfig{
			SessionTTL: 24 * time.Hour,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				Window:            time.Minute,
				APIPerWindow:      100,
				UsernamePerWindow: 30,
				AuthPerWindow:     10,
				GeneralPerWindow:  60,
				SweepInterval:     5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "aboutme",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
		Site: SiteConfig{
			BaseURL: DefaultSiteURL,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("invalid security config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}
	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}
	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 || sc.IdleTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}
	return nil
}

func (stc *StorageConfig) Validate() error {
	switch stc.Type {
	case StorageTypeMemory:
		return nil
	case StorageTypePostgres, StorageTypeSQLite:
		if stc.Database.DSN == "" {
			return errors.New("database DSN is required for database storage")
		}
		return nil
	default:
		return fmt.Errorf("invalid storage type: %s", stc.Type)
	}
}

func (sec *SecurityConfig) Validate() error {
	if sec.SessionTTL < 0 {
		return errors.New("session TTL cannot be negative")
	}
	rl := sec.RateLimit
	if rl.Window < 0 || rl.SweepInterval < 0 {
		return errors.New("rate limit durations cannot be negative")
	}
	if rl.APIPerWindow < 0 || rl.UsernamePerWindow < 0 || rl.AuthPerWindow < 0 || rl.GeneralPerWindow < 0 {
		return errors.New("rate limit budgets cannot be negative")
	}
	return nil
}

func (lc *LoggingConfig) Validate() error {
	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}
	switch lc.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}
	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when log output is file")
	}
	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}
	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}
	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}
	return nil
}

func (sc *SiteConfig) Validate() error {
	if sc.BaseURL == "" {
		return nil // falls back to DefaultSiteURL
	}
	u, err := url.Parse(sc.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site base URL must be an absolute URL: %s", sc.BaseURL)
	}
	return nil
}
