package storage

import (
	"context"

	"aboutme/internal/models"
)

// Storage defines the persistence contract for profiles, accounts, and the
// append-only access log. It is a clean abstraction over different backends
// (in-memory, PostgreSQL, SQLite).
//
// Lookups are exact-match. Not-found conditions surface as ErrNotFound so
// callers can distinguish absence from upstream failure.
type Storage interface {
	// GetProfileByID retrieves a profile by its primary key.
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)

	// GetProfileByUsername retrieves a profile by its unique username.
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)

	// GetProfileByUserID retrieves the profile owned by the given user.
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)

	// SaveProfile stores or updates a profile (upsert keyed by ID). A save
	// that would claim another profile's username fails with ErrUsernameTaken.
	SaveProfile(ctx context.Context, profile *models.Profile) error

	// UsernameExists reports whether any profile holds the given username.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateUser stores a new account. Fails with ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves an account by its unique email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// InsertAccessLog appends an access-log row.
	InsertAccessLog(ctx context.Context, entry *models.AccessLogEntry) error

	// AccessLogStats aggregates total calls and unique caller IPs for a profile.
	AccessLogStats(ctx context.Context, profileID string) (*models.AccessLogStats, error)

	// RecentAccessLogs returns up to limit rows for a profile, newest first.
	RecentAccessLogs(ctx context.Context, profileID string, limit int) ([]*models.AccessLogEntry, error)

	// Close closes the storage connection and cleans up resources.
	Close() error
}

// Config holds configuration for storage backends.
type Config struct {
	// Type specifies the storage backend type (memory, postgres, sqlite).
	Type string

	// ConnectionString is used for database backends.
	ConnectionString string

	// MaxOpenConns bounds the connection pool for database backends.
	MaxOpenConns int
}
